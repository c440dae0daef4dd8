package models

import "time"

// DefaultProgram is used when a class has no program track set.
const DefaultProgram = "Regular"

// Class represents an academic class or section, carrying the program track
// that selects its hour-to-clock-time mapping.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Grade     string    `db:"grade" json:"grade"`
	Program   *string   `db:"program" json:"program,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProgramOrDefault resolves the program track, falling back to DefaultProgram.
func (c Class) ProgramOrDefault() string {
	if c.Program == nil || *c.Program == "" {
		return DefaultProgram
	}
	return *c.Program
}
