package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultCourseName is used when a booking omits the course name.
const DefaultCourseName = "Untitled Course"

// Booking validation failures. Each is reported through a FieldError naming the offending field.
var (
	ErrMissingField         = errors.New("required field is missing")
	ErrInvalidCreditHours   = errors.New("credit hours must be a non-negative integer")
	ErrInvalidTimeFormat    = errors.New("invalid time format, use HH:MM")
	ErrInvalidTimeRange     = errors.New("start time must be before end time")
	ErrInvalidDay           = errors.New("invalid day, must be one of Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday")
	ErrEmptySchedule        = errors.New("at least one schedule is required")
	ErrOverlappingIntervals = errors.New("schedules within the same booking overlap")
)

// FieldError ties a validation failure to the request field that caused it.
type FieldError struct {
	Field string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Value != "" {
		return fmt.Sprintf("%s: %v (got %q)", e.Field, e.Err, e.Value)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BookingRequest is a validated, not yet persisted, weekly class meeting.
type BookingRequest struct {
	InstructorName string
	RoomNumber     string
	ProgramName    string
	ProgramCode    string
	Section        string
	YearLevel      string
	Shift          string

	CourseCode     string
	CourseName     string
	CreditHours    int
	Semester       string
	RoomType       string
	BuildingName   string
	CampusName     string
	BachelorDegree string
	MasterDegree   string

	Intervals []TimeInterval
}

// HasRoom reports whether the booking participates in the room axis.
func (b BookingRequest) HasRoom() bool {
	return b.RoomNumber != ""
}

// HasProgramTuple reports whether the booking participates in the program/section/year/shift axis.
func (b BookingRequest) HasProgramTuple() bool {
	return b.ProgramName != "" && b.Section != "" && b.YearLevel != "" && b.Shift != ""
}

// LockKeys returns one sorted key per identity axis the booking participates in.
func (b BookingRequest) LockKeys() []string {
	keys := []string{"instructor:" + b.InstructorName}
	if b.HasRoom() {
		keys = append(keys, "room:"+b.RoomNumber)
	}
	if b.HasProgramTuple() {
		keys = append(keys, "program:"+strings.Join([]string{b.ProgramName, b.Section, b.YearLevel, b.Shift}, "|"))
	}
	sort.Strings(keys)
	return keys
}

// ProgramSchedule is the committed header of a booking.
type ProgramSchedule struct {
	ID             string    `db:"id" json:"id"`
	InstructorName string    `db:"instructor_name" json:"instructor_name"`
	CourseCode     string    `db:"course_code" json:"course_code"`
	CourseName     string    `db:"course_name" json:"course_name"`
	CreditHours    int       `db:"credit_hours" json:"credit_hours"`
	Semester       string    `db:"semester" json:"semester"`
	ProgramName    string    `db:"program_name" json:"program_name"`
	ProgramCode    string    `db:"program_code" json:"program_code"`
	RoomNumber     string    `db:"room_number" json:"room_number"`
	RoomType       string    `db:"room_type" json:"room_type"`
	BuildingName   string    `db:"building_name" json:"building_name"`
	CampusName     string    `db:"campus_name" json:"campus_name"`
	YearLevel      string    `db:"year_level" json:"year_level"`
	Section        string    `db:"section" json:"section"`
	Shift          string    `db:"shift" json:"shift"`
	BachelorDegree string    `db:"bachelor_degree" json:"bachelor_degree"`
	MasterDegree   string    `db:"master_degree" json:"master_degree"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	Entries []ScheduleEntry `db:"-" json:"schedules"`
}

// ScheduleEntry is one weekly interval owned by a ProgramSchedule.
type ScheduleEntry struct {
	ID                string `db:"id" json:"id"`
	ProgramScheduleID string `db:"program_schedule_id" json:"program_schedule_id"`
	TimeInterval
}

// NewProgramSchedule copies the identity and metadata of a booking into an unsaved header.
func NewProgramSchedule(b BookingRequest) *ProgramSchedule {
	return &ProgramSchedule{
		InstructorName: b.InstructorName,
		CourseCode:     b.CourseCode,
		CourseName:     b.CourseName,
		CreditHours:    b.CreditHours,
		Semester:       b.Semester,
		ProgramName:    b.ProgramName,
		ProgramCode:    b.ProgramCode,
		RoomNumber:     b.RoomNumber,
		RoomType:       b.RoomType,
		BuildingName:   b.BuildingName,
		CampusName:     b.CampusName,
		YearLevel:      b.YearLevel,
		Section:        b.Section,
		Shift:          b.Shift,
		BachelorDegree: b.BachelorDegree,
		MasterDegree:   b.MasterDegree,
	}
}

// TimetableRow is a flattened header + entry pair used by timetable views and exports.
type TimetableRow struct {
	ScheduleID     string `db:"schedule_id" json:"schedule_id"`
	CourseCode     string `db:"course_code" json:"course_code"`
	CourseName     string `db:"course_name" json:"course_name"`
	InstructorName string `db:"instructor_name" json:"instructor_name"`
	RoomNumber     string `db:"room_number" json:"room_number"`
	Semester       string `db:"semester" json:"semester"`
	ProgramName    string `db:"program_name" json:"program_name"`
	YearLevel      string `db:"year_level" json:"year_level"`
	Section        string `db:"section" json:"section"`
	Shift          string `db:"shift" json:"shift"`
	TimeInterval
}

// TimetableFilter narrows timetable listings.
type TimetableFilter struct {
	RoomNumber     string
	InstructorName string
	Semester       string
}

// TimetableOptions lists the values offered by the timetable pickers.
type TimetableOptions struct {
	Rooms     []string `json:"rooms"`
	Semesters []string `json:"semesters"`
}
