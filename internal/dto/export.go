package dto

import "github.com/noah-isme/sma-journal-api/internal/models"

// CreateExportRequest queues a journal export run.
type CreateExportRequest struct {
	Format    models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	TeacherID string              `json:"teacherId"`
	ClassName string              `json:"class"`
	StartDate string              `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string              `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// ExportJobResponse mirrors the tracked job state for polling clients.
type ExportJobResponse struct {
	ID           string              `json:"id"`
	Format       models.ExportFormat `json:"format"`
	Status       models.ExportStatus `json:"status"`
	ResultURL    *string             `json:"result_url,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
}
