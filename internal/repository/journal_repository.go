package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-journal-api/internal/models"
)

// JournalRepository provides persistence for teaching journal rows.
type JournalRepository struct {
	db *sqlx.DB
}

// NewJournalRepository creates a new journal repository.
func NewJournalRepository(db *sqlx.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

const journalColumns = "id, teacher_id, teacher_name, day_of_week, date, hour_label, hour_index, class_name, subject_name, category, material, reflection, substitute_teacher, substitute_status, lateness_reason, note, duty_teacher, created_at, updated_at"

// FindBySlot returns the journal row for a (teacher, date, class, hour) tuple.
// sql.ErrNoRows when the slot has no row yet.
func (r *JournalRepository) FindBySlot(ctx context.Context, teacherID string, date time.Time, className string, hourIndex int) (*models.JournalEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM journal_entries WHERE teacher_id = $1 AND date = $2 AND class_name = $3 AND hour_index = $4 LIMIT 1`, journalColumns)
	var entry models.JournalEntry
	if err := r.db.GetContext(ctx, &entry, query, teacherID, date, className, hourIndex); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Insert stores a new journal row.
func (r *JournalRepository) Insert(ctx context.Context, entry *models.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const query = `INSERT INTO journal_entries (id, teacher_id, teacher_name, day_of_week, date, hour_label, hour_index, class_name, subject_name, category, material, reflection, substitute_teacher, substitute_status, lateness_reason, note, duty_teacher, created_at, updated_at) VALUES (:id, :teacher_id, :teacher_name, :day_of_week, :date, :hour_label, :hour_index, :class_name, :subject_name, :category, :material, :reflection, :substitute_teacher, :substitute_status, :lateness_reason, :note, :duty_teacher, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// DeleteRange removes journal rows dated within [start, end]. When hours is
// non-empty only rows with a matching hour index are removed. Returns the
// number of deleted rows.
func (r *JournalRepository) DeleteRange(ctx context.Context, start, end time.Time, hours []int) (int, error) {
	query := `DELETE FROM journal_entries WHERE date >= $1 AND date <= $2`
	args := []interface{}{start, end}

	if len(hours) > 0 {
		placeholders := make([]string, 0, len(hours))
		for _, hour := range hours {
			args = append(args, hour)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		query += fmt.Sprintf(" AND hour_index IN (%s)", strings.Join(placeholders, ", "))
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete journal range: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted journal rows: %w", err)
	}
	return int(affected), nil
}

// List returns journal rows matching the filter, ordered for grouping:
// date descending, then teacher name, class and hour index ascending.
func (r *JournalRepository) List(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, int, error) {
	base := "FROM journal_entries WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.ClassName != "" {
		conditions = append(conditions, fmt.Sprintf("class_name = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	if filter.HourIndex != nil {
		conditions = append(conditions, fmt.Sprintf("hour_index = $%d", len(args)+1))
		args = append(args, *filter.HourIndex)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY date DESC, teacher_name ASC, class_name ASC, hour_index ASC LIMIT %d OFFSET %d", journalColumns, base, size, offset)
	var entries []models.JournalEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list journal entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count journal entries: %w", err)
	}

	return entries, total, nil
}
