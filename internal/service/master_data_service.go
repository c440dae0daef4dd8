package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-journal-api/internal/models"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
)

type scheduleAssignmentLister interface {
	List(ctx context.Context, filter models.ScheduleAssignmentFilter) ([]models.ScheduleAssignment, int, error)
}

type holidayRangeReader interface {
	ListRange(ctx context.Context, start, end time.Time) ([]models.Holiday, error)
}

type timeSlotProgramReader interface {
	ListByProgram(ctx context.Context, program string) ([]models.TimeSlot, error)
}

// MasterDataService exposes the read-only master-data views backing the
// dashboard. Mutation of schedule, holiday and time-slot data lives in the
// upstream administration system.
type MasterDataService struct {
	schedules scheduleAssignmentLister
	holidays  holidayRangeReader
	slots     timeSlotProgramReader
	logger    *zap.Logger
}

// NewMasterDataService wires the read-only repositories.
func NewMasterDataService(schedules scheduleAssignmentLister, holidays holidayRangeReader, slots timeSlotProgramReader, logger *zap.Logger) *MasterDataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MasterDataService{schedules: schedules, holidays: holidays, slots: slots, logger: logger}
}

// ListScheduleAssignments returns assignment versions matching the filter.
func (s *MasterDataService) ListScheduleAssignments(ctx context.Context, filter models.ScheduleAssignmentFilter) ([]models.ScheduleAssignment, int, error) {
	if filter.DayOfWeek != "" && !filter.DayOfWeek.Valid() {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, "day must be one of MONDAY..SUNDAY")
	}
	list, total, err := s.schedules.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule assignments")
	}
	return list, total, nil
}

// ListHolidays returns holiday rows inside [start, end].
func (s *MasterDataService) ListHolidays(ctx context.Context, start, end time.Time) ([]models.Holiday, error) {
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "endDate precedes startDate")
	}
	list, err := s.holidays.ListRange(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list holidays")
	}
	return list, nil
}

// ListTimeSlots returns the hour-to-clock-time mapping of one program track.
func (s *MasterDataService) ListTimeSlots(ctx context.Context, program string) ([]models.TimeSlot, error) {
	if program == "" {
		program = models.DefaultProgram
	}
	list, err := s.slots.ListByProgram(ctx, program)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	return list, nil
}
