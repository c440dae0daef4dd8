package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-journal-api/internal/models"
)

// TimeSlotRepository maps teaching periods to clock times per program track.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time-slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

const timeSlotColumns = "id, program, day_of_week, hour_index, start_time, end_time, created_at"

// Find returns the slot for (program, day, hour). sql.ErrNoRows when the
// program has no mapping for that period; callers fall back to the raw index.
func (r *TimeSlotRepository) Find(ctx context.Context, program string, day models.DayOfWeek, hourIndex int) (*models.TimeSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_slots WHERE program = $1 AND day_of_week = $2 AND hour_index = $3 LIMIT 1`, timeSlotColumns)
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, program, day, hourIndex); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListByProgram returns every slot of a program ordered by day and hour.
func (r *TimeSlotRepository) ListByProgram(ctx context.Context, program string) ([]models.TimeSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_slots WHERE program = $1 ORDER BY day_of_week ASC, hour_index ASC`, timeSlotColumns)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, program); err != nil {
		return nil, fmt.Errorf("list time slots by program: %w", err)
	}
	return slots, nil
}
