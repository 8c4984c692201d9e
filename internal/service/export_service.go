package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/teaching-load-api/pkg/errors"
	"github.com/noah-isme/teaching-load-api/pkg/export"
)

// Supported export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

var timetableColumns = []export.Column{
	{Key: "day", Title: "Day", Width: 1.2},
	{Key: "time", Title: "Time", Width: 1.3},
	{Key: "course_code", Title: "Course Code", Width: 1.1},
	{Key: "course_name", Title: "Course Name", Width: 2.4},
	{Key: "instructor", Title: "Instructor", Width: 2},
	{Key: "program", Title: "Program", Width: 1.6},
	{Key: "year_section", Title: "Year / Section", Width: 1.2},
	{Key: "shift", Title: "Shift", Width: 0.8},
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportService renders timetables to downloadable files.
type ExportService struct {
	timetables *TimetableService
	renderers  map[string]datasetRenderer
	logger     *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(timetables *TimetableService, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		timetables: timetables,
		renderers:  map[string]datasetRenderer{ExportFormatCSV: csv, ExportFormatPDF: pdf},
		logger:     logger,
	}
}

// ExportRoomTimetable renders the timetable of room in the requested format.
func (s *ExportService) ExportRoomTimetable(ctx context.Context, room, semester, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf").
			WithDetails(map[string]interface{}{"field": "format", "value": format})
	}

	timetable, _, err := s.timetables.RoomTimetable(ctx, room, semester)
	if err != nil {
		return nil, err
	}

	title := "Room " + room + " Timetable"
	if semester != "" {
		title += " (" + semester + ")"
	}
	data := export.Dataset{Title: title, Columns: timetableColumns}
	for _, row := range timetable.Rows {
		data.Rows = append(data.Rows, map[string]string{
			"day":          string(row.Day),
			"time":         row.Start.String() + "-" + row.End.String(),
			"course_code":  row.CourseCode,
			"course_name":  row.CourseName,
			"instructor":   row.InstructorName,
			"program":      row.ProgramName,
			"year_section": strings.Trim(row.YearLevel+" / "+row.Section, " /"),
			"shift":        row.Shift,
		})
	}

	body, err := renderer.Render(data)
	if err != nil {
		s.logger.Error("render timetable export", zap.String("room", room), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	name := "room-" + room
	if semester != "" {
		name += "-" + semester
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s.%s", unsafeFilenameChars.ReplaceAllString(name, "_"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}
