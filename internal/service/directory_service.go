package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/teaching-load-api/internal/models"
	appErrors "github.com/noah-isme/teaching-load-api/pkg/errors"
)

type instructorDirectory interface {
	Search(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error)
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
}

type courseDirectory interface {
	Search(ctx context.Context, query string) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type programDirectory interface {
	Search(ctx context.Context, query string) ([]models.Program, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

type roomDirectory interface {
	Search(ctx context.Context, filter models.RoomFilter) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ListNumbers(ctx context.Context) ([]string, error)
}

// DirectoryRepositories groups the reference data readers.
type DirectoryRepositories struct {
	Instructors instructorDirectory
	Courses     courseDirectory
	Programs    programDirectory
	Rooms       roomDirectory
}

// DirectoryService serves instructor, course, program and room lookups. Search results are
// cached; the boolean returned by searches reports a cache hit.
type DirectoryService struct {
	repos   DirectoryRepositories
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(repos DirectoryRepositories, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{repos: repos, cache: cache, metrics: metrics, logger: logger}
}

// ParseEmploymentFilter maps ALL, REGULAR and COS (any case) to a filter value. ALL or an empty
// string matches every instructor.
func ParseEmploymentFilter(raw string) (models.EmploymentType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "ALL":
		return "", nil
	case string(models.EmploymentRegular):
		return models.EmploymentRegular, nil
	case string(models.EmploymentCOS):
		return models.EmploymentCOS, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "filter must be one of ALL, REGULAR, COS").
			WithDetails(map[string]interface{}{"field": "filter", "value": raw})
	}
}

// SearchInstructors returns instructors matching every filter and any query token.
func (s *DirectoryService) SearchInstructors(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, bool, error) {
	key := makeCacheKey(cacheNamespaceLookup, "instructors", string(filter.EmploymentType), filter.Query)
	return cachedLookup(ctx, s, key, "search_instructors", func() ([]models.Instructor, error) {
		return s.repos.Instructors.Search(ctx, filter)
	})
}

// GetInstructor returns one instructor.
func (s *DirectoryService) GetInstructor(ctx context.Context, id string) (*models.Instructor, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	instructor, err := s.repos.Instructors.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "instructor")
	}
	return instructor, nil
}

// SearchCourses returns courses whose code or name contains any query token.
func (s *DirectoryService) SearchCourses(ctx context.Context, query string) ([]models.Course, bool, error) {
	key := makeCacheKey(cacheNamespaceLookup, "courses", query)
	return cachedLookup(ctx, s, key, "search_courses", func() ([]models.Course, error) {
		return s.repos.Courses.Search(ctx, query)
	})
}

// GetCourse returns one course.
func (s *DirectoryService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	course, err := s.repos.Courses.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course")
	}
	return course, nil
}

// SearchPrograms returns programs whose name contains query.
func (s *DirectoryService) SearchPrograms(ctx context.Context, query string) ([]models.Program, bool, error) {
	key := makeCacheKey(cacheNamespaceLookup, "programs", query)
	return cachedLookup(ctx, s, key, "search_programs", func() ([]models.Program, error) {
		return s.repos.Programs.Search(ctx, query)
	})
}

// GetProgram returns one program.
func (s *DirectoryService) GetProgram(ctx context.Context, id string) (*models.Program, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	program, err := s.repos.Programs.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "program")
	}
	return program, nil
}

// SearchRooms returns at most ten rooms matching number, building and campus.
func (s *DirectoryService) SearchRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, bool, error) {
	key := makeCacheKey(cacheNamespaceLookup, "rooms", filter.Query, filter.Building, filter.Campus)
	return cachedLookup(ctx, s, key, "search_rooms", func() ([]models.Room, error) {
		return s.repos.Rooms.Search(ctx, filter)
	})
}

// GetRoom returns one room with its building and campus.
func (s *DirectoryService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	room, err := s.repos.Rooms.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "room")
	}
	return room, nil
}

func cachedLookup[T any](ctx context.Context, s *DirectoryService, key, label string, load func() ([]T, error)) ([]T, bool, error) {
	var cached []T
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn("lookup cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return cached, true, nil
	}

	start := time.Now()
	items, err := load()
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, fmt.Sprintf("failed to %s", strings.ReplaceAll(label, "_", " ")))
	}
	s.metrics.ObserveDBQuery(label, time.Since(start))
	if items == nil {
		items = []T{}
	}

	if err := s.cache.Set(ctx, key, items, 0); err != nil {
		s.logger.Warn("lookup cache write failed", zap.String("key", key), zap.Error(err))
	}
	return items, false, nil
}

// validateID rejects ids that are not UUIDs before they reach a uuid column.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid id format").
			WithDetails(map[string]interface{}{"field": "id", "value": id})
	}
	return nil
}

func lookupError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load "+entity)
}
