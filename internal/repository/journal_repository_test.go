package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-journal-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func journalRowColumns() []string {
	return []string{"id", "teacher_id", "teacher_name", "day_of_week", "date", "hour_label", "hour_index", "class_name", "subject_name", "category", "material", "reflection", "substitute_teacher", "substitute_status", "lateness_reason", "note", "duty_teacher", "created_at", "updated_at"}
}

func TestJournalFindBySlot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJournalRepository(db)

	date := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows(journalRowColumns()).
		AddRow("j1", "t1", "Budi", "MONDAY", date, "07:00-07:45", 1, "X-1", "Matematika", "On-schedule", nil, nil, nil, nil, nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE teacher_id = $1 AND date = $2 AND class_name = $3 AND hour_index = $4 LIMIT 1")).
		WithArgs("t1", date, "X-1", 1).
		WillReturnRows(rows)

	entry, err := repo.FindBySlot(context.Background(), "t1", date, "X-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "j1", entry.ID)
	assert.Equal(t, models.DayMonday, entry.DayOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalFindBySlotMiss(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJournalRepository(db)

	date := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .* FROM journal_entries").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindBySlot(context.Background(), "t1", date, "X-1", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestJournalInsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJournalRepository(db)

	mock.ExpectExec("INSERT INTO journal_entries").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.JournalEntry{
		TeacherID:   "t1",
		TeacherName: "Budi",
		DayOfWeek:   models.DayMonday,
		Date:        time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		HourLabel:   "07:00-07:45",
		HourIndex:   1,
		ClassName:   "X-1",
		SubjectName: "Matematika",
		Category:    models.CategoryOnSchedule,
	}
	err := repo.Insert(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID, "insert assigns an id")
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalDeleteRange(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJournalRepository(db)

	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM journal_entries WHERE date >= $1 AND date <= $2")).
		WithArgs(start, end).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := repo.DeleteRange(context.Background(), start, end, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalDeleteRangeWithHours(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJournalRepository(db)

	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM journal_entries WHERE date >= $1 AND date <= $2 AND hour_index IN ($3, $4)")).
		WithArgs(start, end, 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteRange(context.Background(), start, end, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJournalRepository(db)

	date := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows(journalRowColumns()).
		AddRow("j1", "t1", "Budi", "MONDAY", date, "07:00-07:45", 1, "X-1", "Matematika", "On-schedule", nil, nil, nil, nil, nil, nil, nil, now, now).
		AddRow("j2", "t1", "Budi", "MONDAY", date, "07:45-08:30", 2, "X-1", "Matematika", "On-schedule", nil, nil, nil, nil, nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND teacher_id = $1 ORDER BY date DESC, teacher_name ASC, class_name ASC, hour_index ASC")).
		WithArgs("t1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM journal_entries WHERE 1=1 AND teacher_id = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	entries, total, err := repo.List(context.Background(), models.JournalFilter{TeacherID: "t1", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 2, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
