package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-journal-api/internal/dto"
	"github.com/noah-isme/sma-journal-api/internal/models"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
	"github.com/noah-isme/sma-journal-api/pkg/export"
	"github.com/noah-isme/sma-journal-api/pkg/jobs"
	"github.com/noah-isme/sma-journal-api/pkg/storage"
)

var exportHeaders = []string{"Date", "Day", "Teacher", "Hours", "Time", "Class", "Subject", "Category", "Material", "Reflection", "Substitute", "Note"}

type exportFileStorage interface {
	Save(filename string, data []byte) (string, error)
}

type exportCSVRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type exportPDFRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix         string
	WorkerConcurrency int
	WorkerRetries     int
}

// JournalExportService renders grouped journal rows into downloadable CSV or
// PDF files. Rendering happens on a background worker queue; jobs are
// tracked in memory and polled by id.
type JournalExportService struct {
	journals  journalLister
	grouper   journalGrouper
	storage   exportFileStorage
	csv       exportCSVRenderer
	pdf       exportPDFRenderer
	signer    *storage.DownloadSigner
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewJournalExportService constructs the export service and its worker queue.
func NewJournalExportService(
	journals journalLister,
	grouper journalGrouper,
	fileStorage exportFileStorage,
	signer *storage.DownloadSigner,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ExportConfig,
) *JournalExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if grouper == nil {
		grouper = NewJournalGroupService()
	}
	s := &JournalExportService{
		journals:  journals,
		grouper:   grouper,
		storage:   fileStorage,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		jobs:      make(map[string]*models.ExportJob),
	}
	s.queue = jobs.NewQueue("journal-exports", s.processJob, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *JournalExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *JournalExportService) Stop() {
	s.queue.Stop()
}

// Create validates the request and queues an export run.
func (s *JournalExportService) Create(ctx context.Context, req dto.CreateExportRequest, createdBy string) (*dto.ExportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	filter, err := buildJournalFilter(dto.JournalQuery{
		TeacherID: req.TeacherID,
		ClassName: req.ClassName,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		PageSize:  500,
	})
	if err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		Format:    req.Format,
		Filter:    filter,
		Status:    models.ExportStatusQueued,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(req.Format)}); err != nil {
		s.failJob(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return s.toResponse(job), nil
}

// Get returns the tracked state of an export job.
func (s *JournalExportService) Get(id string) (*dto.ExportJobResponse, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return s.toResponse(job), nil
}

// ResolveDownload validates a signed token and returns the stored file path.
func (s *JournalExportService) ResolveDownload(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	return relPath, nil
}

func (s *JournalExportService) processJob(ctx context.Context, queued jobs.Job) error {
	s.mu.Lock()
	job, ok := s.jobs[queued.ID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	job.Status = models.ExportStatusProcessing
	filter := job.Filter
	format := job.Format
	s.mu.Unlock()

	entries, _, err := s.journals.List(ctx, filter)
	if err != nil {
		s.failJob(queued.ID, err)
		return fmt.Errorf("load journal rows: %w", err)
	}
	dataset := buildExportDataset(s.grouper.GroupForDisplay(entries))

	var payload []byte
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Teaching Journal")
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		s.failJob(queued.ID, err)
		return fmt.Errorf("render export: %w", err)
	}

	filename := fmt.Sprintf("journal-%s-%s.%s", time.Now().UTC().Format("20060102-150405"), queued.ID[:8], format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.failJob(queued.ID, err)
		return fmt.Errorf("store export: %w", err)
	}

	token, _, err := s.signer.Generate(queued.ID, relPath)
	if err != nil {
		s.failJob(queued.ID, err)
		return fmt.Errorf("sign export url: %w", err)
	}
	url := fmt.Sprintf("%s/journal/exports/download?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)

	now := time.Now().UTC()
	s.mu.Lock()
	job.Status = models.ExportStatusFinished
	job.ResultURL = &url
	job.FinishedAt = &now
	s.mu.Unlock()

	s.logger.Info("journal export finished", zap.String("job_id", queued.ID), zap.String("file", relPath))
	return nil
}

func (s *JournalExportService) failJob(id string, cause error) {
	now := time.Now().UTC()
	message := cause.Error()
	s.mu.Lock()
	if job, ok := s.jobs[id]; ok {
		job.Status = models.ExportStatusFailed
		job.ErrorMessage = &message
		job.FinishedAt = &now
	}
	s.mu.Unlock()
}

func (s *JournalExportService) toResponse(job *models.ExportJob) *dto.ExportJobResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &dto.ExportJobResponse{
		ID:           job.ID,
		Format:       job.Format,
		Status:       job.Status,
		ResultURL:    job.ResultURL,
		ErrorMessage: job.ErrorMessage,
	}
}

// buildExportDataset flattens grouped rows into the tabular export contract
// shared by the CSV and PDF renderers.
func buildExportDataset(groups []dto.GroupedJournalEntry) export.Dataset {
	rows := make([]map[string]string, 0, len(groups))
	for _, group := range groups {
		rows = append(rows, map[string]string{
			"Date":       group.Date.Format("2006-01-02"),
			"Day":        string(group.DayOfWeek),
			"Teacher":    group.TeacherName,
			"Hours":      group.HourLabel,
			"Time":       group.JournalEntry.HourLabel,
			"Class":      group.ClassName,
			"Subject":    group.SubjectName,
			"Category":   string(group.Category),
			"Material":   optionalString(group.Material),
			"Reflection": optionalString(group.Reflection),
			"Substitute": optionalString(group.SubstituteTeacher),
			"Note":       optionalString(group.Note),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func optionalString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
