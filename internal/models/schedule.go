package models

import "time"

// ScheduleAssignment is one version of a recurring weekly teaching slot.
// Several rows may target the same (teacher, day, hour); the resolver picks
// the version whose EffectiveFrom is the latest one not past the target date.
type ScheduleAssignment struct {
	ID            string     `db:"id" json:"id"`
	TeacherID     string     `db:"teacher_id" json:"teacher_id"`
	TeacherName   string     `db:"teacher_name" json:"teacher_name"`
	DayOfWeek     DayOfWeek  `db:"day_of_week" json:"day_of_week"`
	HourIndex     int        `db:"hour_index" json:"hour_index"`
	ClassName     string     `db:"class_name" json:"class_name"`
	SubjectName   string     `db:"subject_name" json:"subject_name"`
	Active        bool       `db:"active" json:"active"`
	EffectiveFrom *time.Time `db:"effective_from" json:"effective_from,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// ScheduleAssignmentFilter narrows assignment listings for the dashboard.
type ScheduleAssignmentFilter struct {
	TeacherID string
	DayOfWeek DayOfWeek
	ClassName string
	Active    *bool
	Page      int
	PageSize  int
}

// AppliesOn reports whether this version may serve the given date.
func (a ScheduleAssignment) AppliesOn(date time.Time) bool {
	if !a.Active {
		return false
	}
	return a.EffectiveFrom == nil || !a.EffectiveFrom.After(date)
}
