package models

import (
	"fmt"
	"time"
)

// TimeSlot maps a teaching period to clock times for one program track.
// Distinct programs may bound the same hour index differently.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	Program   string    `db:"program" json:"program"`
	DayOfWeek DayOfWeek `db:"day_of_week" json:"day_of_week"`
	HourIndex int       `db:"hour_index" json:"hour_index"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Label renders the slot as a clock range, e.g. "07:00-07:45".
func (t TimeSlot) Label() string {
	return fmt.Sprintf("%s-%s", t.StartTime, t.EndTime)
}
