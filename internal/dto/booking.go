package dto

import "github.com/noah-isme/teaching-load-api/internal/models"

// IntervalPayload is one weekly slot as submitted by clients.
type IntervalPayload struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// CreateBookingRequest is the raw booking form. CreditHours accepts a JSON number or a numeric
// string such as "3" or "3.0", as long as the value is a whole, non-negative number. Anything
// else is reported as invalid credit hours.
type CreateBookingRequest struct {
	InstructorName string      `json:"instructor_name" validate:"required"`
	CourseCode     string      `json:"course_code" validate:"required"`
	CreditHours    interface{} `json:"credit_hours" swaggertype:"integer"`
	YearLevel      string      `json:"year_level" validate:"required"`

	CourseName     string `json:"course_name"`
	Semester       string `json:"semester"`
	ProgramName    string `json:"program_name"`
	ProgramCode    string `json:"program_code"`
	Section        string `json:"section"`
	Shift          string `json:"shift"`
	RoomNumber     string `json:"room_number"`
	RoomType       string `json:"room_type"`
	BuildingName   string `json:"building_name"`
	CampusName     string `json:"campus_name"`
	BachelorDegree string `json:"bachelor_degree"`
	MasterDegree   string `json:"master_degree"`

	Schedules []IntervalPayload `json:"schedules"`
}

// ConflictCheckResponse is returned by the booking preview.
type ConflictCheckResponse struct {
	HasConflicts bool                      `json:"has_conflicts"`
	Conflicts    []models.ScheduleConflict `json:"conflicts"`
}

// InstructorLoadResponse lists the weekly slots carried by an instructor.
type InstructorLoadResponse struct {
	InstructorName string                `json:"instructor_name"`
	Semester       string                `json:"semester,omitempty"`
	TotalHours     float64               `json:"total_hours"`
	Rows           []models.TimetableRow `json:"rows"`
}

// RoomTimetableResponse lists the slots booked in a room.
type RoomTimetableResponse struct {
	RoomNumber string                `json:"room_number"`
	Semester   string                `json:"semester,omitempty"`
	Rows       []models.TimetableRow `json:"rows"`
}
