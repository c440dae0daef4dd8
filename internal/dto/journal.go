package dto

import "github.com/noah-isme/sma-journal-api/internal/models"

// GenerateJournalRequest asks the engine to synthesize journal rows for every
// scheduled slot in the inclusive date range. Hours optionally restricts the
// run to a subset of hour indices.
type GenerateJournalRequest struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Hours     []int  `json:"hours" validate:"omitempty,dive,min=1,max=16"`
}

// GenerateJournalResponse summarises a best-effort generation run.
type GenerateJournalResponse struct {
	Generated      int      `json:"generated"`
	SkippedHoliday int      `json:"skippedHoliday"`
	Errors         []string `json:"errors"`
}

// DeleteJournalRangeRequest bulk-removes journal rows in a date range,
// optionally restricted to a set of hour indices.
type DeleteJournalRangeRequest struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Hours     []int  `json:"hours" validate:"omitempty,dive,min=1,max=16"`
}

// DeleteJournalRangeResponse reports how many rows were removed.
type DeleteJournalRangeResponse struct {
	DeletedCount int `json:"deletedCount"`
}

// JournalQuery scopes grouped journal listings.
type JournalQuery struct {
	TeacherID string `form:"teacherId"`
	ClassName string `form:"class"`
	StartDate string `form:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate" validate:"omitempty,datetime=2006-01-02"`
	HourIndex *int   `form:"hour" validate:"omitempty,min=1,max=16"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// GroupedJournalEntry is one display row covering every per-hour journal row
// that shares its full teaching context. HourLabel carries the compacted
// hour-index ranges, e.g. "1-3, 5"; MemberHourIndices re-expands losslessly
// to the absorbed rows.
type GroupedJournalEntry struct {
	models.JournalEntry
	HourLabel         string   `json:"hour_label"`
	MemberIDs         []string `json:"member_ids"`
	MemberHourIndices []int    `json:"member_hour_indices"`
}
