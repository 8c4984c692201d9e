package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teaching-load-api/internal/dto"
	"github.com/noah-isme/teaching-load-api/internal/models"
	"github.com/noah-isme/teaching-load-api/internal/service"
	"github.com/noah-isme/teaching-load-api/pkg/response"
)

type timetableService interface {
	Options(ctx context.Context) (*models.TimetableOptions, bool, error)
	RoomTimetable(ctx context.Context, room, semester string) (*dto.RoomTimetableResponse, bool, error)
	InstructorLoad(ctx context.Context, name, semester string) (*dto.InstructorLoadResponse, error)
}

type timetableExporter interface {
	ExportRoomTimetable(ctx context.Context, room, semester, format string) (*service.ExportFile, error)
}

// TimetableHandler exposes timetable views and downloads.
type TimetableHandler struct {
	timetables timetableService
	exports    timetableExporter
}

// NewTimetableHandler constructs the timetable handler.
func NewTimetableHandler(timetables timetableService, exports timetableExporter) *TimetableHandler {
	return &TimetableHandler{timetables: timetables, exports: exports}
}

// Options godoc
// @Summary Timetable picker options
// @Tags Timetables
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetables/options [get]
func (h *TimetableHandler) Options(c *gin.Context) {
	start := time.Now()
	options, hit, err := h.timetables.Options(c.Request.Context())
	respondLookup(c, start, options, hit, err)
}

// Room godoc
// @Summary Room timetable
// @Tags Timetables
// @Produce json
// @Param room query string true "Room number"
// @Param semester query string false "Semester"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetables/rooms [get]
func (h *TimetableHandler) Room(c *gin.Context) {
	start := time.Now()
	timetable, hit, err := h.timetables.RoomTimetable(c.Request.Context(), c.Query("room"), c.Query("semester"))
	respondLookup(c, start, timetable, hit, err)
}

// ExportRoom godoc
// @Summary Download a room timetable
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param room query string true "Room number"
// @Param semester query string false "Semester"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /timetables/rooms/export [get]
func (h *TimetableHandler) ExportRoom(c *gin.Context) {
	file, err := h.exports.ExportRoomTimetable(c.Request.Context(), c.Query("room"), c.Query("semester"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// InstructorLoad godoc
// @Summary Instructor teaching load
// @Tags Timetables
// @Produce json
// @Param name query string true "Instructor name"
// @Param semester query string false "Semester"
// @Success 200 {object} response.Envelope
// @Router /instructors/load [get]
func (h *TimetableHandler) InstructorLoad(c *gin.Context) {
	load, err := h.timetables.InstructorLoad(c.Request.Context(), c.Query("name"), c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, load)
}
