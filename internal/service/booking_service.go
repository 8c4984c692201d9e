package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/teaching-load-api/internal/dto"
	"github.com/noah-isme/teaching-load-api/internal/models"
	appErrors "github.com/noah-isme/teaching-load-api/pkg/errors"
)

// ScheduleStore persists bookings. RunInBookingTx must execute fn inside one transaction that is
// serialised against other transactions sharing any of lockKeys, and must discard every write
// made through exec when fn fails.
type ScheduleStore interface {
	OverlapFinder
	RunInBookingTx(ctx context.Context, lockKeys []string, fn func(exec sqlx.ExtContext) error) error
	CreateHeader(ctx context.Context, exec sqlx.ExtContext, schedule *models.ProgramSchedule) error
	CreateEntries(ctx context.Context, exec sqlx.ExtContext, entries []models.ScheduleEntry) error
	FindByID(ctx context.Context, id string) (*models.ProgramSchedule, error)
}

// BookingService validates, checks and atomically commits bookings.
type BookingService struct {
	store    ScheduleStore
	builder  *BookingBuilder
	detector *ConflictDetector
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(store ScheduleStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		store:    store,
		builder:  NewBookingBuilder(),
		detector: NewConflictDetector(store),
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// Commit validates req and stores the header with all of its entries, or nothing at all.
// Conflicts are re-checked inside the write transaction, after the axis locks are held.
func (s *BookingService) Commit(ctx context.Context, req dto.CreateBookingRequest) (*models.ProgramSchedule, error) {
	start := time.Now()

	booking, err := s.builder.Build(req)
	if err != nil {
		s.metrics.RecordBookingCommit(BookingOutcomeInvalid, time.Since(start))
		return nil, validationError(err)
	}

	var created *models.ProgramSchedule
	err = s.store.RunInBookingTx(ctx, booking.LockKeys(), func(exec sqlx.ExtContext) error {
		report, err := s.detector.Check(ctx, exec, booking)
		if err != nil {
			return err
		}
		if report.HasConflicts() {
			return &models.ScheduleConflictError{Message: conflictMessage(report), Report: *report}
		}

		header := models.NewProgramSchedule(booking)
		if err := s.store.CreateHeader(ctx, exec, header); err != nil {
			return err
		}
		entries := make([]models.ScheduleEntry, len(booking.Intervals))
		for i, interval := range booking.Intervals {
			entries[i] = models.ScheduleEntry{ProgramScheduleID: header.ID, TimeInterval: interval}
		}
		if err := s.store.CreateEntries(ctx, exec, entries); err != nil {
			return err
		}
		header.Entries = entries
		created = header
		return nil
	})

	if err != nil {
		var conflict *models.ScheduleConflictError
		if errors.As(err, &conflict) {
			s.metrics.RecordBookingCommit(BookingOutcomeConflict, time.Since(start))
			s.metrics.RecordBookingConflicts(&conflict.Report)
			s.logger.Info("booking rejected",
				zap.String("instructor", booking.InstructorName),
				zap.String("course_code", booking.CourseCode),
				zap.Int("conflicts", len(conflict.Report.Conflicts)),
				zap.Any("axes", conflict.Report.Axes()),
			)
			return nil, conflictError(conflict)
		}
		s.metrics.RecordBookingCommit(BookingOutcomeError, time.Since(start))
		s.logger.Error("booking commit failed",
			zap.String("instructor", booking.InstructorName),
			zap.String("course_code", booking.CourseCode),
			zap.Error(err),
		)
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to save booking")
	}

	s.metrics.RecordBookingCommit(BookingOutcomeCommitted, time.Since(start))
	if err := s.cache.Invalidate(ctx, cacheNamespaceTimetable+":*"); err != nil {
		s.logger.Warn("timetable cache not invalidated", zap.Error(err))
	}
	s.logger.Info("booking committed",
		zap.String("schedule_id", created.ID),
		zap.String("instructor", created.InstructorName),
		zap.String("course_code", created.CourseCode),
		zap.Int("entries", len(created.Entries)),
	)
	return created, nil
}

// Check validates req and reports conflicts without writing anything. The result may be stale by
// the time a later Commit runs.
func (s *BookingService) Check(ctx context.Context, req dto.CreateBookingRequest) (*models.ConflictReport, error) {
	booking, err := s.builder.Build(req)
	if err != nil {
		return nil, validationError(err)
	}
	report, err := s.detector.Check(ctx, nil, booking)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to check conflicts")
	}
	return report, nil
}

// Get returns a committed booking with its entries.
func (s *BookingService) Get(ctx context.Context, id string) (*models.ProgramSchedule, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	schedule, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load booking")
	}
	return schedule, nil
}

func conflictMessage(report *models.ConflictReport) string {
	axes := report.Axes()
	if len(axes) == 1 {
		return axes[0].Message()
	}
	return "Schedule conflicts with existing bookings."
}

func conflictError(conflict *models.ScheduleConflictError) error {
	appErr := appErrors.Wrap(conflict, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflict.Message)
	return appErr.WithDetails(map[string]interface{}{"conflicts": conflict.Report.Conflicts})
}

func validationError(err error) error {
	var fieldErr *models.FieldError
	if !errors.As(err, &fieldErr) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	base := appErrors.ErrValidation
	switch {
	case errors.Is(err, models.ErrMissingField):
		base = appErrors.ErrMissingField
	case errors.Is(err, models.ErrInvalidCreditHours):
		base = appErrors.ErrInvalidCreditHours
	case errors.Is(err, models.ErrInvalidTimeFormat):
		base = appErrors.ErrInvalidTimeFormat
	case errors.Is(err, models.ErrInvalidTimeRange):
		base = appErrors.ErrInvalidTimeRange
	case errors.Is(err, models.ErrInvalidDay):
		base = appErrors.ErrInvalidDay
	case errors.Is(err, models.ErrEmptySchedule):
		base = appErrors.ErrEmptySchedule
	case errors.Is(err, models.ErrOverlappingIntervals):
		base = appErrors.ErrOverlappingIntervals
	}

	details := map[string]interface{}{"field": fieldErr.Field}
	if fieldErr.Value != "" {
		details["value"] = fieldErr.Value
	}
	return appErrors.Wrap(err, base.Code, base.Status, fieldErr.Error()).WithDetails(details)
}
