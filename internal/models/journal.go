package models

import "time"

// JournalCategory is the attendance category recorded on a journal row.
type JournalCategory string

const (
	CategoryOnSchedule  JournalCategory = "On-schedule"
	CategoryLate        JournalCategory = "Late"
	CategorySubstituted JournalCategory = "Substituted"
	CategoryAbsent      JournalCategory = "Absent"
)

// Valid returns true when the category is a supported value.
func (c JournalCategory) Valid() bool {
	switch c {
	case CategoryOnSchedule, CategoryLate, CategorySubstituted, CategoryAbsent:
		return true
	default:
		return false
	}
}

// JournalEntry is one teaching-journal row: a teacher in a class for one
// period of one calendar day. HourLabel is the rendered clock range when the
// time-slot table covers the period, otherwise the raw hour index as text.
type JournalEntry struct {
	ID                string          `db:"id" json:"id"`
	TeacherID         string          `db:"teacher_id" json:"teacher_id"`
	TeacherName       string          `db:"teacher_name" json:"teacher_name"`
	DayOfWeek         DayOfWeek       `db:"day_of_week" json:"day_of_week"`
	Date              time.Time       `db:"date" json:"date"`
	HourLabel         string          `db:"hour_label" json:"hour_label"`
	HourIndex         int             `db:"hour_index" json:"hour_index"`
	ClassName         string          `db:"class_name" json:"class_name"`
	SubjectName       string          `db:"subject_name" json:"subject_name"`
	Category          JournalCategory `db:"category" json:"category"`
	Material          *string         `db:"material" json:"material,omitempty"`
	Reflection        *string         `db:"reflection" json:"reflection,omitempty"`
	SubstituteTeacher *string         `db:"substitute_teacher" json:"substitute_teacher,omitempty"`
	SubstituteStatus  *string         `db:"substitute_status" json:"substitute_status,omitempty"`
	LatenessReason    *string         `db:"lateness_reason" json:"lateness_reason,omitempty"`
	Note              *string         `db:"note" json:"note,omitempty"`
	DutyTeacher       *string         `db:"duty_teacher" json:"duty_teacher,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// JournalFilter scopes journal listing queries.
type JournalFilter struct {
	TeacherID string
	ClassName string
	DateFrom  *time.Time
	DateTo    *time.Time
	HourIndex *int
	Page      int
	PageSize  int
}
