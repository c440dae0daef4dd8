package models

import "time"

// Holiday marks a calendar date as off. A nil HourIndex excludes the whole
// day; a set HourIndex excludes only that teaching period.
type Holiday struct {
	ID          string    `db:"id" json:"id"`
	Date        time.Time `db:"date" json:"date"`
	HourIndex   *int      `db:"hour_index" json:"hour_index,omitempty"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Excludes reports whether this holiday row blocks the given hour index.
func (h Holiday) Excludes(hourIndex int) bool {
	if h.HourIndex == nil {
		return true
	}
	return *h.HourIndex == hourIndex
}
