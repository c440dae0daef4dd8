package models

import "time"

// ExportFormat enumerates supported journal export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// Valid returns true for supported formats.
func (f ExportFormat) Valid() bool {
	return f == ExportFormatCSV || f == ExportFormatPDF
}

// ExportStatus captures export job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob tracks one queued journal export run.
type ExportJob struct {
	ID           string        `json:"id"`
	Format       ExportFormat  `json:"format"`
	Filter       JournalFilter `json:"-"`
	Status       ExportStatus  `json:"status"`
	ResultURL    *string       `json:"result_url,omitempty"`
	CreatedBy    string        `json:"created_by"`
	CreatedAt    time.Time     `json:"created_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
}
