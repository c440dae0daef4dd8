package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-journal-api/internal/dto"
	"github.com/noah-isme/sma-journal-api/internal/models"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
)

const journalCachePrefix = "journal:grouped:"

type journalLister interface {
	List(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, int, error)
}

type journalGrouper interface {
	GroupForDisplay(entries []models.JournalEntry) []dto.GroupedJournalEntry
}

// JournalService serves grouped journal listings, caching grouped pages in
// Redis keyed by the normalized filter.
type JournalService struct {
	journals  journalLister
	grouper   journalGrouper
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewJournalService constructs the listing service.
func NewJournalService(journals journalLister, grouper journalGrouper, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *JournalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if grouper == nil {
		grouper = NewJournalGroupService()
	}
	return &JournalService{journals: journals, grouper: grouper, cache: cache, validator: validate, logger: logger}
}

type groupedJournalPage struct {
	Groups []dto.GroupedJournalEntry `json:"groups"`
	Total  int                       `json:"total"`
}

// ListGrouped fetches matching journal rows and collapses them into display
// groups. Total counts underlying rows, not groups. The bool reports whether
// the page was served from cache so handlers can expose it in response meta.
func (s *JournalService) ListGrouped(ctx context.Context, query dto.JournalQuery) ([]dto.GroupedJournalEntry, int, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, 0, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid journal query")
	}
	filter, err := buildJournalFilter(query)
	if err != nil {
		return nil, 0, false, err
	}

	key := journalCacheKey(filter)
	if s.cache.Enabled() {
		var cached groupedJournalPage
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached.Groups, cached.Total, true, nil
		}
	}

	entries, total, err := s.journals.List(ctx, filter)
	if err != nil {
		return nil, 0, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list journal entries")
	}
	groups := s.grouper.GroupForDisplay(entries)

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, groupedJournalPage{Groups: groups, Total: total}, 0); err != nil {
			s.logger.Warn("failed to cache grouped journal page", zap.Error(err))
		}
	}
	return groups, total, false, nil
}

// InvalidateCache drops every cached grouped page. Called after generation
// and bulk deletion runs mutate the underlying rows.
func (s *JournalService) InvalidateCache(ctx context.Context) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, journalCachePrefix+"*"); err != nil {
		s.logger.Warn("failed to invalidate journal cache", zap.Error(err))
	}
}

func buildJournalFilter(query dto.JournalQuery) (models.JournalFilter, error) {
	filter := models.JournalFilter{
		TeacherID: query.TeacherID,
		ClassName: query.ClassName,
		HourIndex: query.HourIndex,
		Page:      query.Page,
		PageSize:  query.PageSize,
	}
	if query.StartDate != "" {
		from, err := time.ParseInLocation(journalDateLayout, query.StartDate, time.UTC)
		if err != nil {
			return models.JournalFilter{}, appErrors.Clone(appErrors.ErrValidation, "startDate must be formatted YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}
	if query.EndDate != "" {
		to, err := time.ParseInLocation(journalDateLayout, query.EndDate, time.UTC)
		if err != nil {
			return models.JournalFilter{}, appErrors.Clone(appErrors.ErrValidation, "endDate must be formatted YYYY-MM-DD")
		}
		filter.DateTo = &to
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return models.JournalFilter{}, appErrors.Clone(appErrors.ErrInvalidRange, "endDate precedes startDate")
	}
	return filter, nil
}

func journalCacheKey(filter models.JournalFilter) string {
	from, to := "", ""
	if filter.DateFrom != nil {
		from = filter.DateFrom.Format(journalDateLayout)
	}
	if filter.DateTo != nil {
		to = filter.DateTo.Format(journalDateLayout)
	}
	hour := ""
	if filter.HourIndex != nil {
		hour = fmt.Sprintf("%d", *filter.HourIndex)
	}
	return fmt.Sprintf("%s%s:%s:%s:%s:%s:%d:%d", journalCachePrefix, filter.TeacherID, filter.ClassName, from, to, hour, filter.Page, filter.PageSize)
}
