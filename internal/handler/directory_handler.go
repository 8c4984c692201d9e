package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teaching-load-api/internal/middleware"
	"github.com/noah-isme/teaching-load-api/internal/models"
	"github.com/noah-isme/teaching-load-api/internal/service"
	"github.com/noah-isme/teaching-load-api/pkg/response"
)

type directoryService interface {
	SearchInstructors(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, bool, error)
	GetInstructor(ctx context.Context, id string) (*models.Instructor, error)
	SearchCourses(ctx context.Context, query string) ([]models.Course, bool, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	SearchPrograms(ctx context.Context, query string) ([]models.Program, bool, error)
	GetProgram(ctx context.Context, id string) (*models.Program, error)
	SearchRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, bool, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
}

// DirectoryHandler exposes reference data lookups.
type DirectoryHandler struct {
	service directoryService
}

// NewDirectoryHandler constructs the directory handler.
func NewDirectoryHandler(svc directoryService) *DirectoryHandler {
	return &DirectoryHandler{service: svc}
}

// SearchInstructors godoc
// @Summary Search instructors
// @Tags Directory
// @Produce json
// @Param q query string false "Name tokens"
// @Param filter query string false "ALL, REGULAR or COS"
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *DirectoryHandler) SearchInstructors(c *gin.Context) {
	employment, err := service.ParseEmploymentFilter(c.Query("filter"))
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	items, hit, err := h.service.SearchInstructors(c.Request.Context(), models.InstructorFilter{Query: c.Query("q"), EmploymentType: employment})
	respondLookup(c, start, items, hit, err)
}

// GetInstructor godoc
// @Summary Instructor details
// @Tags Directory
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id} [get]
func (h *DirectoryHandler) GetInstructor(c *gin.Context) {
	instructor, err := h.service.GetInstructor(c.Request.Context(), c.Param("id"))
	respondDetail(c, instructor, err)
}

// SearchCourses godoc
// @Summary Search courses
// @Tags Directory
// @Produce json
// @Param q query string false "Code or name tokens"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *DirectoryHandler) SearchCourses(c *gin.Context) {
	start := time.Now()
	items, hit, err := h.service.SearchCourses(c.Request.Context(), c.Query("q"))
	respondLookup(c, start, items, hit, err)
}

// GetCourse godoc
// @Summary Course details
// @Tags Directory
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *DirectoryHandler) GetCourse(c *gin.Context) {
	course, err := h.service.GetCourse(c.Request.Context(), c.Param("id"))
	respondDetail(c, course, err)
}

// SearchPrograms godoc
// @Summary Search programs
// @Tags Directory
// @Produce json
// @Param q query string false "Program name"
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *DirectoryHandler) SearchPrograms(c *gin.Context) {
	start := time.Now()
	items, hit, err := h.service.SearchPrograms(c.Request.Context(), c.Query("q"))
	respondLookup(c, start, items, hit, err)
}

// GetProgram godoc
// @Summary Program details
// @Tags Directory
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id} [get]
func (h *DirectoryHandler) GetProgram(c *gin.Context) {
	program, err := h.service.GetProgram(c.Request.Context(), c.Param("id"))
	respondDetail(c, program, err)
}

// SearchRooms godoc
// @Summary Search rooms
// @Description Returns at most ten rooms.
// @Tags Directory
// @Produce json
// @Param q query string false "Room number"
// @Param building query string false "Building name"
// @Param campus query string false "Campus name"
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *DirectoryHandler) SearchRooms(c *gin.Context) {
	filter := models.RoomFilter{
		Query:    c.Query("q"),
		Building: c.Query("building"),
		Campus:   c.Query("campus"),
	}
	start := time.Now()
	items, hit, err := h.service.SearchRooms(c.Request.Context(), filter)
	respondLookup(c, start, items, hit, err)
}

// GetRoom godoc
// @Summary Room details
// @Tags Directory
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *DirectoryHandler) GetRoom(c *gin.Context) {
	room, err := h.service.GetRoom(c.Request.Context(), c.Param("id"))
	respondDetail(c, room, err)
}

func respondLookup(c *gin.Context, start time.Time, data interface{}, cacheHit bool, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, middleware.LookupMeta(c, start, cacheHit))
}

func respondDetail(c *gin.Context, data interface{}, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data)
}
