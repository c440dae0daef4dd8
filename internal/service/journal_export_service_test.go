package service

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-journal-api/internal/dto"
	"github.com/noah-isme/sma-journal-api/internal/models"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
	"github.com/noah-isme/sma-journal-api/pkg/storage"
)

func newExportFixture(t *testing.T, lister journalLister) (*JournalExportService, *storage.ArtifactStore) {
	t.Helper()
	files, err := storage.NewArtifactStore(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewDownloadSigner("test_secret", time.Hour)
	svc := NewJournalExportService(lister, nil, files, signer, validator.New(), zap.NewNop(), ExportConfig{
		APIPrefix:         "/api/v1",
		WorkerConcurrency: 1,
		WorkerRetries:     1,
	})
	return svc, files
}

func waitForJob(t *testing.T, svc *JournalExportService, id string) *dto.ExportJobResponse {
	t.Helper()
	var job *dto.ExportJobResponse
	require.Eventually(t, func() bool {
		res, err := svc.Get(id)
		if err != nil {
			return false
		}
		job = res
		return res.Status == models.ExportStatusFinished || res.Status == models.ExportStatusFailed
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestJournalExportServiceCSV(t *testing.T) {
	lister := &stubJournalLister{
		entries: []models.JournalEntry{groupEntry("j1", 1), groupEntry("j2", 2)},
		total:   2,
	}
	svc, files := newExportFixture(t, lister)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	created, err := svc.Create(ctx, dto.CreateExportRequest{Format: models.ExportFormatCSV, TeacherID: "t1"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, created.Status)

	job := waitForJob(t, svc, created.ID)
	require.Equal(t, models.ExportStatusFinished, job.Status)
	require.NotNil(t, job.ResultURL)
	assert.True(t, strings.HasPrefix(*job.ResultURL, "/api/v1/journal/exports/download?token="))

	parsed, err := url.Parse(*job.ResultURL)
	require.NoError(t, err)
	relPath, err := svc.ResolveDownload(parsed.Query().Get("token"))
	require.NoError(t, err)

	payload, err := os.ReadFile(files.Path(relPath))
	require.NoError(t, err)
	content := string(payload)
	assert.Contains(t, content, "Budi")
	assert.Contains(t, content, "1-2")
	assert.True(t, strings.HasSuffix(filepath.Ext(relPath), "csv"))
}

func TestJournalExportServicePDF(t *testing.T) {
	lister := &stubJournalLister{entries: []models.JournalEntry{groupEntry("j1", 1)}, total: 1}
	svc, _ := newExportFixture(t, lister)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	created, err := svc.Create(ctx, dto.CreateExportRequest{Format: models.ExportFormatPDF}, "u1")
	require.NoError(t, err)

	job := waitForJob(t, svc, created.ID)
	require.Equal(t, models.ExportStatusFinished, job.Status)
	require.NotNil(t, job.ResultURL)
}

func TestJournalExportServiceListFailure(t *testing.T) {
	lister := &stubJournalLister{err: errors.New("db down")}
	svc, _ := newExportFixture(t, lister)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	created, err := svc.Create(ctx, dto.CreateExportRequest{Format: models.ExportFormatCSV}, "u1")
	require.NoError(t, err)

	job := waitForJob(t, svc, created.ID)
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "db down")
}

func TestJournalExportServiceValidation(t *testing.T) {
	svc, _ := newExportFixture(t, &stubJournalLister{})

	_, err := svc.Create(context.Background(), dto.CreateExportRequest{Format: "xlsx"}, "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestJournalExportServiceGetUnknown(t *testing.T) {
	svc, _ := newExportFixture(t, &stubJournalLister{})

	_, err := svc.Get("missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestJournalExportServiceResolveDownloadBadToken(t *testing.T) {
	svc, _ := newExportFixture(t, &stubJournalLister{})

	_, err := svc.ResolveDownload("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
