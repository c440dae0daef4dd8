package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-journal-api/internal/models"
)

// HolidayRepository provides read access to holiday master data.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository creates a new holiday repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

const holidayColumns = "id, date, hour_index, description, created_at"

// ListByDate returns every holiday row for the calendar date. An empty slice
// means the date is a regular school day.
func (r *HolidayRepository) ListByDate(ctx context.Context, date time.Time) ([]models.Holiday, error) {
	query := fmt.Sprintf(`SELECT %s FROM holidays WHERE date = $1 ORDER BY hour_index ASC NULLS FIRST`, holidayColumns)
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, date); err != nil {
		return nil, fmt.Errorf("list holidays by date: %w", err)
	}
	return holidays, nil
}

// ListRange returns holiday rows with dates inside [start, end] for the
// dashboard calendar view.
func (r *HolidayRepository) ListRange(ctx context.Context, start, end time.Time) ([]models.Holiday, error) {
	query := fmt.Sprintf(`SELECT %s FROM holidays WHERE date >= $1 AND date <= $2 ORDER BY date ASC, hour_index ASC NULLS FIRST`, holidayColumns)
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, start, end); err != nil {
		return nil, fmt.Errorf("list holidays in range: %w", err)
	}
	return holidays, nil
}
