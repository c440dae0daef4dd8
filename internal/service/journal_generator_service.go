package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-journal-api/internal/dto"
	"github.com/noah-isme/sma-journal-api/internal/models"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
)

type scheduleAssignmentReader interface {
	ListActiveByDay(ctx context.Context, day models.DayOfWeek) ([]models.ScheduleAssignment, error)
}

type holidayReader interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.Holiday, error)
}

type classProgramReader interface {
	GetProgram(ctx context.Context, className string) (string, error)
}

type timeSlotReader interface {
	Find(ctx context.Context, program string, day models.DayOfWeek, hourIndex int) (*models.TimeSlot, error)
}

type journalStore interface {
	FindBySlot(ctx context.Context, teacherID string, date time.Time, className string, hourIndex int) (*models.JournalEntry, error)
	Insert(ctx context.Context, entry *models.JournalEntry) error
	DeleteRange(ctx context.Context, start, end time.Time, hours []int) (int, error)
}

type journalMetricsRecorder interface {
	RecordJournalGeneration(generated, skippedHoliday, failed int)
	RecordJournalDeletion(deleted int)
}

// JournalGeneratorConfig tunes generation behaviour.
type JournalGeneratorConfig struct {
	MaxRangeDays int
}

// JournalGeneratorService synthesizes journal rows from the weekly schedule
// and bulk-removes them. Runs are best-effort batch jobs: per-slot failures
// are collected, never fatal.
type JournalGeneratorService struct {
	schedules scheduleAssignmentReader
	holidays  holidayReader
	classes   classProgramReader
	slots     timeSlotReader
	journals  journalStore
	metrics   journalMetricsRecorder
	validator *validator.Validate
	logger    *zap.Logger
	cfg       JournalGeneratorConfig
}

// NewJournalGeneratorService wires generator dependencies.
func NewJournalGeneratorService(
	schedules scheduleAssignmentReader,
	holidays holidayReader,
	classes classProgramReader,
	slots timeSlotReader,
	journals journalStore,
	metrics journalMetricsRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg JournalGeneratorConfig,
) *JournalGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 366
	}
	return &JournalGeneratorService{
		schedules: schedules,
		holidays:  holidays,
		classes:   classes,
		slots:     slots,
		journals:  journals,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// journalDateLayout is the wire format for journal date ranges.
const journalDateLayout = "2006-01-02"

// Generate walks the date range day by day and inserts a journal row for
// every applicable schedule slot that has none yet. Re-running over the same
// range is a no-op for covered slots and fills any gaps.
func (s *JournalGeneratorService) Generate(ctx context.Context, req dto.GenerateJournalRequest) (*dto.GenerateJournalResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid journal generation payload")
	}
	start, end, err := s.parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	run := newGenerationRun(s, req.Hours)
	resp := &dto.GenerateJournalResponse{Errors: []string{}}

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if err := run.processDate(ctx, date, resp); err != nil {
			// Day-level failures (e.g. schedule fetch) are recorded and the
			// run moves on to the next date.
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", date.Format(journalDateLayout), err))
		}
	}

	if s.metrics != nil {
		s.metrics.RecordJournalGeneration(resp.Generated, resp.SkippedHoliday, len(resp.Errors))
	}
	s.logger.Info("journal generation finished",
		zap.String("start", req.StartDate),
		zap.String("end", req.EndDate),
		zap.Int("generated", resp.Generated),
		zap.Int("skipped_holiday", resp.SkippedHoliday),
		zap.Int("errors", len(resp.Errors)),
	)
	return resp, nil
}

// DeleteRange bulk-removes journal rows in [start, end], optionally limited
// to the requested hour indices. Zero matches is a valid outcome.
func (s *JournalGeneratorService) DeleteRange(ctx context.Context, req dto.DeleteJournalRangeRequest) (*dto.DeleteJournalRangeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid journal deletion payload")
	}
	start, end, err := s.parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	deleted, err := s.journals.DeleteRange(ctx, start, end, req.Hours)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete journal rows")
	}

	if s.metrics != nil {
		s.metrics.RecordJournalDeletion(deleted)
	}
	s.logger.Info("journal range deleted",
		zap.String("start", req.StartDate),
		zap.String("end", req.EndDate),
		zap.Ints("hours", req.Hours),
		zap.Int("deleted", deleted),
	)
	return &dto.DeleteJournalRangeResponse{DeletedCount: deleted}, nil
}

func (s *JournalGeneratorService) parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(journalDateLayout, startRaw, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "startDate must be formatted YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(journalDateLayout, endRaw, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "endDate must be formatted YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrInvalidRange, "endDate precedes startDate")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > s.cfg.MaxRangeDays {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date range exceeds %d days", s.cfg.MaxRangeDays))
	}
	return start, end, nil
}

// generationRun holds per-run state: the hour filter and memoized program and
// time-slot lookups. Memoization never outlives a run.
type generationRun struct {
	svc        *JournalGeneratorService
	hourFilter map[int]bool
	programs   map[string]string
	slotCache  map[slotLookupKey]*models.TimeSlot
}

type slotLookupKey struct {
	Program   string
	Day       models.DayOfWeek
	HourIndex int
}

func newGenerationRun(svc *JournalGeneratorService, hours []int) *generationRun {
	var filter map[int]bool
	if len(hours) > 0 {
		filter = make(map[int]bool, len(hours))
		for _, hour := range hours {
			filter[hour] = true
		}
	}
	return &generationRun{
		svc:        svc,
		hourFilter: filter,
		programs:   make(map[string]string),
		slotCache:  make(map[slotLookupKey]*models.TimeSlot),
	}
}

func (r *generationRun) processDate(ctx context.Context, date time.Time, resp *dto.GenerateJournalResponse) error {
	day := models.DayOfWeekOf(date)

	assignments, err := r.svc.schedules.ListActiveByDay(ctx, day)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	applicable := resolveAssignments(assignments, date)

	holidays, err := r.svc.holidays.ListByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("load holidays: %w", err)
	}

	for _, assignment := range applicable {
		if r.hourFilter != nil && !r.hourFilter[assignment.HourIndex] {
			continue
		}
		// Defensive re-check; resolveAssignments already filtered on this.
		if !assignment.AppliesOn(date) {
			continue
		}
		if holidayExcluded(holidays, assignment.HourIndex) {
			resp.SkippedHoliday++
			continue
		}
		if err := r.generateSlot(ctx, date, day, assignment, resp); err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s teacher %s hour %d: %v",
				date.Format(journalDateLayout), assignment.TeacherID, assignment.HourIndex, err))
		}
	}
	return nil
}

func (r *generationRun) generateSlot(ctx context.Context, date time.Time, day models.DayOfWeek, assignment models.ScheduleAssignment, resp *dto.GenerateJournalResponse) error {
	existing, err := r.svc.journals.FindBySlot(ctx, assignment.TeacherID, date, assignment.ClassName, assignment.HourIndex)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check existing row: %w", err)
	}
	if existing != nil {
		return nil
	}

	entry := &models.JournalEntry{
		TeacherID:   assignment.TeacherID,
		TeacherName: assignment.TeacherName,
		DayOfWeek:   day,
		Date:        date,
		HourLabel:   r.hourLabel(ctx, day, assignment),
		HourIndex:   assignment.HourIndex,
		ClassName:   assignment.ClassName,
		SubjectName: assignment.SubjectName,
		Category:    models.CategoryOnSchedule,
	}
	if err := r.svc.journals.Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert row: %w", err)
	}
	resp.Generated++
	return nil
}

// hourLabel renders the clock range for the slot, falling back to the raw
// hour index when the class program has no mapping. Lookup misses are not
// errors.
func (r *generationRun) hourLabel(ctx context.Context, day models.DayOfWeek, assignment models.ScheduleAssignment) string {
	program := r.resolveProgram(ctx, assignment.ClassName)
	slot := r.lookupSlot(ctx, program, day, assignment.HourIndex)
	if slot == nil {
		return strconv.Itoa(assignment.HourIndex)
	}
	return slot.Label()
}

func (r *generationRun) resolveProgram(ctx context.Context, className string) string {
	if program, ok := r.programs[className]; ok {
		return program
	}
	program, err := r.svc.classes.GetProgram(ctx, className)
	if err != nil || program == "" {
		r.svc.logger.Debug("class program lookup failed", zap.String("class", className), zap.Error(err))
		program = models.DefaultProgram
	}
	r.programs[className] = program
	return program
}

func (r *generationRun) lookupSlot(ctx context.Context, program string, day models.DayOfWeek, hourIndex int) *models.TimeSlot {
	key := slotLookupKey{Program: program, Day: day, HourIndex: hourIndex}
	if slot, ok := r.slotCache[key]; ok {
		return slot
	}
	slot, err := r.svc.slots.Find(ctx, program, day, hourIndex)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.svc.logger.Debug("time slot lookup failed",
				zap.String("program", program), zap.String("day", string(day)),
				zap.Int("hour", hourIndex), zap.Error(err))
		}
		slot = nil
	}
	// Negative results are cached too so one run hits the store at most once
	// per (program, day, hour).
	r.slotCache[key] = slot
	return slot
}

// resolveAssignments keeps the applicable version per (teacher, hour) slot:
// active rows whose effective-from is absent or not past the date, preferring
// the latest effective-from; ties keep the first encountered.
func resolveAssignments(assignments []models.ScheduleAssignment, date time.Time) []models.ScheduleAssignment {
	type versionKey struct {
		TeacherID string
		HourIndex int
	}
	winners := make(map[versionKey]int)
	order := make([]versionKey, 0, len(assignments))

	for i, assignment := range assignments {
		if !assignment.AppliesOn(date) {
			continue
		}
		key := versionKey{TeacherID: assignment.TeacherID, HourIndex: assignment.HourIndex}
		current, ok := winners[key]
		if !ok {
			winners[key] = i
			order = append(order, key)
			continue
		}
		if supersedes(assignments[i], assignments[current]) {
			winners[key] = i
		}
	}

	result := make([]models.ScheduleAssignment, 0, len(order))
	for _, key := range order {
		result = append(result, assignments[winners[key]])
	}
	return result
}

// supersedes reports whether candidate should replace current for the same
// slot. A dated version beats an undated one; between dated versions the
// later effective-from wins; equal dates keep current.
func supersedes(candidate, current models.ScheduleAssignment) bool {
	if candidate.EffectiveFrom == nil {
		return false
	}
	if current.EffectiveFrom == nil {
		return true
	}
	return candidate.EffectiveFrom.After(*current.EffectiveFrom)
}

// holidayExcluded reports whether the date's holiday rows block the hour.
// Any whole-day row excludes every hour; otherwise only exact matches do.
func holidayExcluded(holidays []models.Holiday, hourIndex int) bool {
	for _, holiday := range holidays {
		if holiday.HourIndex == nil {
			return true
		}
	}
	for _, holiday := range holidays {
		if holiday.Excludes(hourIndex) {
			return true
		}
	}
	return false
}
