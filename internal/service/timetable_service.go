package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teaching-load-api/internal/dto"
	"github.com/noah-isme/teaching-load-api/internal/models"
	appErrors "github.com/noah-isme/teaching-load-api/pkg/errors"
)

type timetableStore interface {
	ListTimetable(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableRow, error)
	ListSemesters(ctx context.Context) ([]string, error)
}

type roomNumberLister interface {
	ListNumbers(ctx context.Context) ([]string, error)
}

// TimetableService serves read-only views over committed bookings.
type TimetableService struct {
	store   timetableStore
	rooms   roomNumberLister
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(store timetableStore, rooms roomNumberLister, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{store: store, rooms: rooms, cache: cache, metrics: metrics, logger: logger}
}

// Options lists the room numbers and semesters offered by timetable pickers.
func (s *TimetableService) Options(ctx context.Context) (*models.TimetableOptions, bool, error) {
	key := makeCacheKey(cacheNamespaceTimetable, "options")
	var cached models.TimetableOptions
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	rooms, err := s.rooms.ListNumbers(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list rooms")
	}
	semesters, err := s.store.ListSemesters(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list semesters")
	}

	options := &models.TimetableOptions{Rooms: nonNilStrings(rooms), Semesters: nonNilStrings(semesters)}
	if err := s.cache.Set(ctx, key, options, 0); err != nil {
		s.logger.Warn("timetable options not cached", zap.Error(err))
	}
	return options, false, nil
}

// RoomTimetable lists every slot booked in room, optionally limited to one semester.
func (s *TimetableService) RoomTimetable(ctx context.Context, room, semester string) (*dto.RoomTimetableResponse, bool, error) {
	if room == "" {
		return nil, false, missingQueryParam("room")
	}

	key := makeCacheKey(cacheNamespaceTimetable, "room", room, semester)
	var cached dto.RoomTimetableResponse
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	rows, err := s.list(ctx, models.TimetableFilter{RoomNumber: room, Semester: semester}, "room_timetable")
	if err != nil {
		return nil, false, err
	}
	resp := &dto.RoomTimetableResponse{RoomNumber: room, Semester: semester, Rows: rows}
	if err := s.cache.Set(ctx, key, resp, 0); err != nil {
		s.logger.Warn("room timetable not cached", zap.String("room", room), zap.Error(err))
	}
	return resp, false, nil
}

// InstructorLoad lists the slots an instructor teaches and totals their weekly contact hours.
func (s *TimetableService) InstructorLoad(ctx context.Context, name, semester string) (*dto.InstructorLoadResponse, error) {
	if name == "" {
		return nil, missingQueryParam("name")
	}

	rows, err := s.list(ctx, models.TimetableFilter{InstructorName: name, Semester: semester}, "instructor_load")
	if err != nil {
		return nil, err
	}

	minutes := 0
	for _, row := range rows {
		minutes += int(row.End - row.Start)
	}
	return &dto.InstructorLoadResponse{
		InstructorName: name,
		Semester:       semester,
		TotalHours:     float64(minutes) / 60,
		Rows:           rows,
	}, nil
}

func (s *TimetableService) list(ctx context.Context, filter models.TimetableFilter, label string) ([]models.TimetableRow, error) {
	start := time.Now()
	rows, err := s.store.ListTimetable(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load timetable")
	}
	s.metrics.ObserveDBQuery(label, time.Since(start))
	if rows == nil {
		rows = []models.TimetableRow{}
	}
	return rows, nil
}

func missingQueryParam(name string) error {
	return appErrors.Clone(appErrors.ErrMissingField, name+" is required").
		WithDetails(map[string]interface{}{"field": name})
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
