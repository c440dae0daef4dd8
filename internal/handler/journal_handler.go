package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-journal-api/internal/dto"
	"github.com/noah-isme/sma-journal-api/internal/middleware"
	"github.com/noah-isme/sma-journal-api/internal/models"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
	"github.com/noah-isme/sma-journal-api/pkg/response"
)

type journalGenerator interface {
	Generate(ctx context.Context, req dto.GenerateJournalRequest) (*dto.GenerateJournalResponse, error)
	DeleteRange(ctx context.Context, req dto.DeleteJournalRangeRequest) (*dto.DeleteJournalRangeResponse, error)
}

type journalReader interface {
	ListGrouped(ctx context.Context, query dto.JournalQuery) ([]dto.GroupedJournalEntry, int, bool, error)
	InvalidateCache(ctx context.Context)
}

// JournalHandler wires the journal engines to HTTP routes.
type JournalHandler struct {
	generator journalGenerator
	journals  journalReader
}

// NewJournalHandler constructs a new JournalHandler.
func NewJournalHandler(generator journalGenerator, journals journalReader) *JournalHandler {
	return &JournalHandler{generator: generator, journals: journals}
}

// Generate godoc
// @Summary Generate journal rows from the weekly schedule
// @Description Walks the date range and inserts a row for every scheduled slot without one, skipping holidays. Best-effort: per-slot errors are returned, not thrown.
// @Tags Journal
// @Accept json
// @Produce json
// @Param payload body dto.GenerateJournalRequest true "Generation range and optional hour filter"
// @Success 200 {object} response.Envelope
// @Router /journal/generate [post]
func (h *JournalHandler) Generate(c *gin.Context) {
	var req dto.GenerateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}
	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.journals.InvalidateCache(c.Request.Context())
	response.JSON(c, http.StatusOK, result, nil)
}

// DeleteRange godoc
// @Summary Bulk-delete journal rows in a date range
// @Description Destructive and irreversible. When hours is set only rows with those hour indices are removed.
// @Tags Journal
// @Accept json
// @Produce json
// @Param payload body dto.DeleteJournalRangeRequest true "Deletion range and optional hour filter"
// @Success 200 {object} response.Envelope
// @Router /journal/range [delete]
func (h *JournalHandler) DeleteRange(c *gin.Context) {
	var req dto.DeleteJournalRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid deletion payload"))
		return
	}
	result, err := h.generator.DeleteRange(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.journals.InvalidateCache(c.Request.Context())
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List journal rows grouped into display entries
// @Description Per-hour rows sharing their full teaching context are collapsed into one entry with a compacted hour range label.
// @Tags Journal
// @Produce json
// @Param teacherId query string false "Filter by teacher"
// @Param class query string false "Filter by class name"
// @Param startDate query string false "Range start (YYYY-MM-DD)"
// @Param endDate query string false "Range end (YYYY-MM-DD)"
// @Param hour query int false "Filter by hour index"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /journal [get]
func (h *JournalHandler) List(c *gin.Context) {
	query := dto.JournalQuery{
		TeacherID: c.Query("teacherId"),
		ClassName: c.Query("class"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
	if raw := c.Query("hour"); raw != "" {
		hour, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "hour must be an integer"))
			return
		}
		query.HourIndex = &hour
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("pageSize", "100")); err == nil {
		query.PageSize = size
	}

	groups, total, fromCache, err := h.journals.ListGrouped(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, fromCache)

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	pagination := &models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: (total + size - 1) / size,
	}
	response.JSON(c, http.StatusOK, groups, pagination)
}
