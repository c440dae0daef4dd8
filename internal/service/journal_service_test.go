package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-journal-api/internal/dto"
	"github.com/noah-isme/sma-journal-api/internal/models"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
)

type stubJournalLister struct {
	entries []models.JournalEntry
	total   int
	err     error
	calls   int
	filter  models.JournalFilter
}

func (m *stubJournalLister) List(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, int, error) {
	m.calls++
	m.filter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.entries, m.total, nil
}

type memoryCacheRepo struct {
	data     map[string][]byte
	patterns []string
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	m.data = map[string][]byte{}
	return nil
}

func TestJournalServiceListGrouped(t *testing.T) {
	repo := &stubJournalLister{
		entries: []models.JournalEntry{
			groupEntry("j1", 1),
			groupEntry("j2", 2),
		},
		total: 2,
	}
	svc := NewJournalService(repo, nil, nil, validator.New(), zap.NewNop())

	groups, total, fromCache, err := svc.ListGrouped(context.Background(), dto.JournalQuery{TeacherID: "t1", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 2, total)
	require.Len(t, groups, 1)
	assert.Equal(t, "1-2", groups[0].HourLabel)
	assert.Equal(t, "t1", repo.filter.TeacherID)
}

func TestJournalServiceListGroupedParsesDates(t *testing.T) {
	repo := &stubJournalLister{}
	svc := NewJournalService(repo, nil, nil, validator.New(), zap.NewNop())

	_, _, _, err := svc.ListGrouped(context.Background(), dto.JournalQuery{StartDate: "2025-01-06", EndDate: "2025-01-10"})
	require.NoError(t, err)
	require.NotNil(t, repo.filter.DateFrom)
	require.NotNil(t, repo.filter.DateTo)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), *repo.filter.DateFrom)
}

func TestJournalServiceListGroupedInvalidRange(t *testing.T) {
	svc := NewJournalService(&stubJournalLister{}, nil, nil, validator.New(), zap.NewNop())

	_, _, _, err := svc.ListGrouped(context.Background(), dto.JournalQuery{StartDate: "2025-01-10", EndDate: "2025-01-06"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidRange.Code, appErrors.FromError(err).Code)
}

func TestJournalServiceListGroupedCaches(t *testing.T) {
	repo := &stubJournalLister{
		entries: []models.JournalEntry{groupEntry("j1", 1)},
		total:   1,
	}
	cacheRepo := &memoryCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewJournalService(repo, nil, cache, validator.New(), zap.NewNop())

	query := dto.JournalQuery{TeacherID: "t1", Page: 1, PageSize: 20}
	_, _, fromCache, err := svc.ListGrouped(context.Background(), query)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 1, repo.calls)

	groups, total, fromCache, err := svc.ListGrouped(context.Background(), query)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, 1, repo.calls, "second read should be served from cache")
	assert.Equal(t, 1, total)
	require.Len(t, groups, 1)
	assert.Equal(t, "1", groups[0].HourLabel)
}

func TestJournalServiceInvalidateCache(t *testing.T) {
	cacheRepo := &memoryCacheRepo{data: map[string][]byte{"journal:grouped:x": []byte("{}")}}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewJournalService(&stubJournalLister{}, nil, cache, validator.New(), zap.NewNop())

	svc.InvalidateCache(context.Background())
	require.Len(t, cacheRepo.patterns, 1)
	assert.Equal(t, "journal:grouped:*", cacheRepo.patterns[0])
}

func TestJournalServiceListGroupedRepoFailure(t *testing.T) {
	repo := &stubJournalLister{err: errors.New("db down")}
	svc := NewJournalService(repo, nil, nil, validator.New(), zap.NewNop())

	_, _, _, err := svc.ListGrouped(context.Background(), dto.JournalQuery{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
