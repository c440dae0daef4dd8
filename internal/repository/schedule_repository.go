package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-journal-api/internal/models"
)

// ScheduleRepository provides read access to recurring weekly assignments.
// Assignments are master data maintained elsewhere; this engine only reads.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = "id, teacher_id, teacher_name, day_of_week, hour_index, class_name, subject_name, active, effective_from, created_at, updated_at"

// ListActiveByDay returns every active assignment version targeting the day.
// All versions are returned; the generator's resolver picks the applicable
// one per (teacher, hour).
func (r *ScheduleRepository) ListActiveByDay(ctx context.Context, day models.DayOfWeek) ([]models.ScheduleAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_assignments WHERE day_of_week = $1 AND active = TRUE ORDER BY teacher_id ASC, hour_index ASC, created_at ASC`, scheduleColumns)
	var assignments []models.ScheduleAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, day); err != nil {
		return nil, fmt.Errorf("list active schedule by day: %w", err)
	}
	return assignments, nil
}

// List returns assignments with optional filtering and pagination for the
// dashboard's read-only master-data view.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleAssignmentFilter) ([]models.ScheduleAssignment, int, error) {
	base := "FROM schedule_assignments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}
	if filter.ClassName != "" {
		conditions = append(conditions, fmt.Sprintf("class_name = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY day_of_week ASC, teacher_name ASC, hour_index ASC LIMIT %d OFFSET %d", scheduleColumns, base, size, offset)
	var assignments []models.ScheduleAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule assignments: %w", err)
	}

	return assignments, total, nil
}
