package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/teaching-load-api/internal/dto"
	"github.com/noah-isme/teaching-load-api/internal/models"
)

// BookingBuilder turns a raw booking form into a validated models.BookingRequest.
type BookingBuilder struct {
	validator *validator.Validate
}

// NewBookingBuilder constructs a builder with its own validator, which names fields by their
// JSON tag.
func NewBookingBuilder() *BookingBuilder {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	return &BookingBuilder{validator: validate}
}

// Build validates req and returns the first failure as a *models.FieldError.
// Checks run in a fixed order: instructor_name, course_code, credit_hours, year_level, then
// the schedules list and each of its entries.
func (b *BookingBuilder) Build(req dto.CreateBookingRequest) (models.BookingRequest, error) {
	req = trimBookingRequest(req)

	missing := map[string]bool{}
	if err := b.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return models.BookingRequest{}, err
		}
		for _, fe := range verrs {
			missing[fe.Field()] = true
		}
	}

	var creditHours int
	for _, field := range []string{"instructor_name", "course_code", "credit_hours", "year_level"} {
		if field == "credit_hours" {
			hours, err := parseCreditHours(req.CreditHours)
			if err != nil {
				return models.BookingRequest{}, err
			}
			creditHours = hours
			continue
		}
		if missing[field] {
			return models.BookingRequest{}, &models.FieldError{Field: field, Err: models.ErrMissingField}
		}
	}

	if len(req.Schedules) == 0 {
		return models.BookingRequest{}, &models.FieldError{Field: "schedules", Err: models.ErrEmptySchedule}
	}

	intervals := make([]models.TimeInterval, 0, len(req.Schedules))
	for i, slot := range req.Schedules {
		interval, err := buildInterval(i, slot)
		if err != nil {
			return models.BookingRequest{}, err
		}
		for j, previous := range intervals {
			if models.Overlaps(previous, interval) {
				return models.BookingRequest{}, &models.FieldError{
					Field: fmt.Sprintf("schedules[%d]", i),
					Value: fmt.Sprintf("%s overlaps schedules[%d] %s", interval, j, previous),
					Err:   models.ErrOverlappingIntervals,
				}
			}
		}
		intervals = append(intervals, interval)
	}

	courseName := req.CourseName
	if courseName == "" {
		courseName = models.DefaultCourseName
	}

	return models.BookingRequest{
		InstructorName: req.InstructorName,
		RoomNumber:     req.RoomNumber,
		ProgramName:    req.ProgramName,
		ProgramCode:    req.ProgramCode,
		Section:        req.Section,
		YearLevel:      req.YearLevel,
		Shift:          req.Shift,
		CourseCode:     req.CourseCode,
		CourseName:     courseName,
		CreditHours:    creditHours,
		Semester:       req.Semester,
		RoomType:       req.RoomType,
		BuildingName:   req.BuildingName,
		CampusName:     req.CampusName,
		BachelorDegree: req.BachelorDegree,
		MasterDegree:   req.MasterDegree,
		Intervals:      intervals,
	}, nil
}

func buildInterval(index int, slot dto.IntervalPayload) (models.TimeInterval, error) {
	field := func(name string) string { return fmt.Sprintf("schedules[%d].%s", index, name) }

	day, err := models.ParseWeekday(slot.Day)
	if err != nil {
		return models.TimeInterval{}, &models.FieldError{Field: field("day"), Value: slot.Day, Err: err}
	}
	start, err := models.ParseClock(slot.StartTime)
	if err != nil {
		return models.TimeInterval{}, &models.FieldError{Field: field("start_time"), Value: slot.StartTime, Err: err}
	}
	end, err := models.ParseClock(slot.EndTime)
	if err != nil {
		return models.TimeInterval{}, &models.FieldError{Field: field("end_time"), Value: slot.EndTime, Err: err}
	}

	interval := models.TimeInterval{Day: day, Start: start, End: end}
	if err := interval.Validate(); err != nil {
		return models.TimeInterval{}, &models.FieldError{
			Field: fmt.Sprintf("schedules[%d]", index),
			Value: slot.StartTime + "-" + slot.EndTime,
			Err:   err,
		}
	}
	return interval, nil
}

func parseCreditHours(raw interface{}) (int, error) {
	invalid := func() (int, error) {
		value := ""
		if raw != nil {
			value = fmt.Sprint(raw)
		}
		return 0, &models.FieldError{Field: "credit_hours", Value: value, Err: models.ErrInvalidCreditHours}
	}

	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case int:
		value = float64(v)
	case json.Number:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return invalid()
		}
		value = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return invalid()
		}
		value = f
	default:
		return invalid()
	}
	// NaN fails every comparison, so it lands in the invalid branch too.
	if !(value >= 0 && value <= math.MaxInt32) || value != math.Trunc(value) {
		return invalid()
	}
	return int(value), nil
}

func trimBookingRequest(req dto.CreateBookingRequest) dto.CreateBookingRequest {
	for _, s := range []*string{
		&req.InstructorName, &req.CourseCode, &req.YearLevel, &req.CourseName, &req.Semester,
		&req.ProgramName, &req.ProgramCode, &req.Section, &req.Shift, &req.RoomNumber,
		&req.RoomType, &req.BuildingName, &req.CampusName, &req.BachelorDegree, &req.MasterDegree,
	} {
		*s = strings.TrimSpace(*s)
	}
	schedules := make([]dto.IntervalPayload, len(req.Schedules))
	for i, slot := range req.Schedules {
		schedules[i] = dto.IntervalPayload{
			Day:       strings.TrimSpace(slot.Day),
			StartTime: strings.TrimSpace(slot.StartTime),
			EndTime:   strings.TrimSpace(slot.EndTime),
		}
	}
	req.Schedules = schedules
	return req
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
