package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/teaching-load-api/api/swagger"
	"github.com/noah-isme/teaching-load-api/internal/handler"
	"github.com/noah-isme/teaching-load-api/internal/middleware"
	"github.com/noah-isme/teaching-load-api/internal/repository"
	"github.com/noah-isme/teaching-load-api/internal/service"
	"github.com/noah-isme/teaching-load-api/pkg/cache"
	"github.com/noah-isme/teaching-load-api/pkg/config"
	"github.com/noah-isme/teaching-load-api/pkg/export"
	"github.com/noah-isme/teaching-load-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/teaching-load-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/teaching-load-api/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Bookings   *handler.BookingHandler
	Directory  *handler.DirectoryHandler
	Timetables *handler.TimetableHandler
	Metrics    *handler.MetricsHandler
}

// Server owns the HTTP listener and the resources opened for it.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	logger *zap.Logger
	redis  *repository.CacheRepository
}

// New wires repositories, services and handlers on top of an open database.
func New(cfg *config.Config, db *sqlx.DB, logr *zap.Logger) (*Server, error) {
	if logr == nil {
		logr = zap.NewNop()
	}
	metrics := service.NewMetricsService()

	cacheRepo, redisRepo, err := newCacheRepository(cfg, logr)
	if err != nil {
		return nil, err
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Lookup.CacheTTL, logr, cacheRepo != nil)

	schedules := repository.NewProgramScheduleRepository(db).WithObserver(metrics)
	rooms := repository.NewRoomRepository(db)

	bookings := service.NewBookingService(schedules, cacheSvc, metrics, logr)
	directory := service.NewDirectoryService(service.DirectoryRepositories{
		Instructors: repository.NewInstructorRepository(db),
		Courses:     repository.NewCourseRepository(db),
		Programs:    repository.NewProgramRepository(db),
		Rooms:       rooms,
	}, cacheSvc, metrics, logr)
	timetables := service.NewTimetableService(schedules, rooms, cacheSvc, metrics, logr)
	exports := service.NewExportService(timetables, logr, export.NewCSVExporter(), export.NewPDFExporter())

	handlers := Handlers{
		Bookings:   handler.NewBookingHandler(bookings),
		Directory:  handler.NewDirectoryHandler(directory),
		Timetables: handler.NewTimetableHandler(timetables, exports),
		Metrics:    handler.NewMetricsHandler(metrics, db),
	}

	engine := NewRouter(cfg, logr, metrics, handlers)
	return &Server{cfg: cfg, engine: engine, logger: logr, redis: redisRepo}, nil
}

func newCacheRepository(cfg *config.Config, logr *zap.Logger) (service.CacheRepository, *repository.CacheRepository, error) {
	switch cfg.Lookup.CacheDriver {
	case config.CacheDriverNone:
		logr.Info("lookup cache disabled")
		return nil, nil, nil
	case config.CacheDriverRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		logr.Info("lookup cache backed by redis", zap.String("host", cfg.Redis.Host))
		repo := repository.NewCacheRepository(client, logr)
		return repo, repo, nil
	default:
		logr.Info("lookup cache in memory", zap.Duration("ttl", cfg.Lookup.CacheTTL))
		return repository.NewMemoryCacheRepository(cache.NewMemory(cfg.Lookup.CacheTTL)), nil, nil
	}
}

// NewRouter mounts every route under the configured API prefix.
func NewRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limiter := middleware.NewRateLimiter(cfg.Booking.RateLimit, cfg.Booking.RateBurst)

	api := r.Group(cfg.APIPrefix)
	{
		bookings := api.Group("/bookings")
		bookings.POST("", limiter.Middleware(), h.Bookings.Create)
		bookings.POST("/check", h.Bookings.Check)
		bookings.GET("/:id", h.Bookings.Get)

		api.GET("/instructors", h.Directory.SearchInstructors)
		api.GET("/instructors/load", h.Timetables.InstructorLoad)
		api.GET("/instructors/:id", h.Directory.GetInstructor)
		api.GET("/courses", h.Directory.SearchCourses)
		api.GET("/courses/:id", h.Directory.GetCourse)
		api.GET("/programs", h.Directory.SearchPrograms)
		api.GET("/programs/:id", h.Directory.GetProgram)
		api.GET("/rooms", h.Directory.SearchRooms)
		api.GET("/rooms/:id", h.Directory.GetRoom)

		api.GET("/timetables/options", h.Timetables.Options)
		api.GET("/timetables/rooms", h.Timetables.Room)
		api.GET("/timetables/rooms/export", h.Timetables.ExportRoom)
	}

	return r
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", s.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.close()
	return err
}

func (s *Server) close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("close redis", zap.Error(err))
		}
	}
}
