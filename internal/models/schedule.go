package models

// ConflictAxis names the identity dimension on which two bookings collide.
type ConflictAxis string

const (
	AxisInstructor     ConflictAxis = "instructor_name"
	AxisRoom           ConflictAxis = "room_number"
	AxisProgramSection ConflictAxis = "program_section_year_shift"
)

// Message returns the human readable explanation for the axis.
func (a ConflictAxis) Message() string {
	switch a {
	case AxisInstructor:
		return "Instructor's schedule is already booked."
	case AxisRoom:
		return "Room schedule is already booked."
	case AxisProgramSection:
		return "Program, section, year level, and shift schedule is already booked."
	default:
		return "Schedule is already booked."
	}
}

// ScheduleOccupancy is a committed entry joined with the identity fields of its header.
type ScheduleOccupancy struct {
	ScheduleID     string `db:"schedule_id"`
	EntryID        string `db:"entry_id"`
	InstructorName string `db:"instructor_name"`
	CourseCode     string `db:"course_code"`
	RoomNumber     string `db:"room_number"`
	ProgramName    string `db:"program_name"`
	Section        string `db:"section"`
	YearLevel      string `db:"year_level"`
	Shift          string `db:"shift"`
	TimeInterval
}

// OverlapQuery describes one proposed interval and the identity axes to match against.
type OverlapQuery struct {
	Interval       TimeInterval
	InstructorName string
	RoomNumber     string
	ProgramName    string
	Section        string
	YearLevel      string
	Shift          string
}

// ScheduleConflict describes an existing entry that collides with a proposed interval.
type ScheduleConflict struct {
	ScheduleID      string       `json:"schedule_id"`
	EntryID         string       `json:"entry_id"`
	InstructorName  string       `json:"instructor_name"`
	CourseCode      string       `json:"course_code"`
	RoomNumber      string       `json:"room_number"`
	ProgramName     string       `json:"program_name"`
	Section         string       `json:"section"`
	YearLevel       string       `json:"year_level"`
	Shift           string       `json:"shift"`
	Day             Weekday      `json:"day"`
	StartTime       ClockTime    `json:"start_time"`
	EndTime         ClockTime    `json:"end_time"`
	ConflictField   ConflictAxis `json:"conflict_field"`
	ConflictMessage string       `json:"conflict_message"`
	Proposed        TimeInterval `json:"proposed"`
}

// ConflictReport aggregates every collision found for a booking.
type ConflictReport struct {
	Conflicts []ScheduleConflict `json:"conflicts"`
}

// HasConflicts reports whether any collision was found.
func (r *ConflictReport) HasConflicts() bool {
	return r != nil && len(r.Conflicts) > 0
}

// Axes returns the distinct axes present in the report, in report order.
func (r *ConflictReport) Axes() []ConflictAxis {
	if r == nil {
		return nil
	}
	seen := make(map[ConflictAxis]bool)
	var axes []ConflictAxis
	for _, c := range r.Conflicts {
		if !seen[c.ConflictField] {
			seen[c.ConflictField] = true
			axes = append(axes, c.ConflictField)
		}
	}
	return axes
}

// ScheduleConflictError is returned when a booking collides with committed schedules.
type ScheduleConflictError struct {
	Message string         `json:"message"`
	Report  ConflictReport `json:"report"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
