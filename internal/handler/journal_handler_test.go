package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-journal-api/internal/dto"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
)

type journalGeneratorMock struct {
	generateResp *dto.GenerateJournalResponse
	generateErr  error
	deleteResp   *dto.DeleteJournalRangeResponse
	deleteErr    error
	lastGenerate dto.GenerateJournalRequest
}

func (m *journalGeneratorMock) Generate(ctx context.Context, req dto.GenerateJournalRequest) (*dto.GenerateJournalResponse, error) {
	m.lastGenerate = req
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return m.generateResp, nil
}

func (m *journalGeneratorMock) DeleteRange(ctx context.Context, req dto.DeleteJournalRangeRequest) (*dto.DeleteJournalRangeResponse, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	return m.deleteResp, nil
}

type journalReaderMock struct {
	groups        []dto.GroupedJournalEntry
	total         int
	listErr       error
	invalidations int
	lastQuery     dto.JournalQuery
}

func (m *journalReaderMock) ListGrouped(ctx context.Context, query dto.JournalQuery) ([]dto.GroupedJournalEntry, int, bool, error) {
	m.lastQuery = query
	if m.listErr != nil {
		return nil, 0, false, m.listErr
	}
	return m.groups, m.total, false, nil
}

func (m *journalReaderMock) InvalidateCache(ctx context.Context) {
	m.invalidations++
}

func TestJournalHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	generator := &journalGeneratorMock{generateResp: &dto.GenerateJournalResponse{Generated: 12, SkippedHoliday: 3, Errors: []string{}}}
	reader := &journalReaderMock{}
	h := NewJournalHandler(generator, reader)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.GenerateJournalRequest{StartDate: "2025-01-06", EndDate: "2025-01-10"})
	req, _ := http.NewRequest(http.MethodPost, "/journal/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Generate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-01-06", generator.lastGenerate.StartDate)
	assert.Equal(t, 1, reader.invalidations, "generation invalidates cached pages")

	var envelope struct {
		Data dto.GenerateJournalResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 12, envelope.Data.Generated)
	assert.Equal(t, 3, envelope.Data.SkippedHoliday)
}

func TestJournalHandlerGenerateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &journalReaderMock{}
	h := NewJournalHandler(&journalGeneratorMock{}, reader)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/journal/generate", bytes.NewReader([]byte("not json")))
	c.Request = req

	h.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, reader.invalidations)
}

func TestJournalHandlerGenerateServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	generator := &journalGeneratorMock{generateErr: appErrors.Clone(appErrors.ErrInvalidRange, "endDate precedes startDate")}
	reader := &journalReaderMock{}
	h := NewJournalHandler(generator, reader)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.GenerateJournalRequest{StartDate: "2025-01-10", EndDate: "2025-01-06"})
	req, _ := http.NewRequest(http.MethodPost, "/journal/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, reader.invalidations)
}

func TestJournalHandlerDeleteRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	generator := &journalGeneratorMock{deleteResp: &dto.DeleteJournalRangeResponse{DeletedCount: 9}}
	reader := &journalReaderMock{}
	h := NewJournalHandler(generator, reader)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.DeleteJournalRangeRequest{StartDate: "2025-01-06", EndDate: "2025-01-10", Hours: []int{1, 2}})
	req, _ := http.NewRequest(http.MethodDelete, "/journal/range", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.DeleteRange(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, reader.invalidations)

	var envelope struct {
		Data dto.DeleteJournalRangeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 9, envelope.Data.DeletedCount)
}

func TestJournalHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &journalReaderMock{
		groups: []dto.GroupedJournalEntry{{HourLabel: "1-3, 5"}},
		total:  4,
	}
	h := NewJournalHandler(&journalGeneratorMock{}, reader)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/journal?teacherId=t1&hour=2&page=1&pageSize=20", nil)
	c.Request = req

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t1", reader.lastQuery.TeacherID)
	require.NotNil(t, reader.lastQuery.HourIndex)
	assert.Equal(t, 2, *reader.lastQuery.HourIndex)

	var envelope struct {
		Data       []dto.GroupedJournalEntry `json:"data"`
		Pagination struct {
			TotalItems int `json:"total_items"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "1-3, 5", envelope.Data[0].HourLabel)
	assert.Equal(t, 4, envelope.Pagination.TotalItems)
}

func TestJournalHandlerListServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &journalReaderMock{listErr: errors.New("boom")}
	h := NewJournalHandler(&journalGeneratorMock{}, reader)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/journal", nil)
	c.Request = req

	h.List(c)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
