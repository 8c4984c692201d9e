package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Weekday is the canonical English name of a day of the week.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the accepted day names in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid reports whether d is one of the seven canonical names.
func (d Weekday) Valid() bool {
	for _, day := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Index returns the calendar position of the day, Monday being 0. Unknown days sort last.
func (d Weekday) Index() int {
	for i, day := range Weekdays {
		if d == day {
			return i
		}
	}
	return len(Weekdays)
}

// ParseWeekday accepts exactly one of the canonical names (case-sensitive).
func ParseWeekday(raw string) (Weekday, error) {
	day := Weekday(raw)
	if !day.Valid() {
		return "", ErrInvalidDay
	}
	return day, nil
}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ClockTime is a time of day with minute precision, stored as minutes since midnight.
type ClockTime int

// NewClockTime builds a ClockTime from hour and minute components.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClock parses a strict 24-hour HH:MM string.
func ParseClock(raw string) (ClockTime, error) {
	m := clockPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, ErrInvalidTimeFormat
	}
	hour := int(m[1][0]-'0')*10 + int(m[1][1]-'0')
	minute := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	return NewClockTime(hour, minute), nil
}

// Hour returns the hour component.
func (c ClockTime) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c ClockTime) Minute() int { return int(c) % 60 }

// String renders the time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalJSON encodes the time as an "HH:MM" string.
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes an "HH:MM" string.
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidTimeFormat
	}
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer for TIME columns.
func (c ClockTime) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan implements sql.Scanner. Postgres TIME values arrive as time.Time from lib/pq
// and as text from other drivers.
func (c *ClockTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*c = NewClockTime(v.Hour(), v.Minute())
		return nil
	case string:
		return c.scanText(v)
	case []byte:
		return c.scanText(string(v))
	case nil:
		return errors.New("clock time: NULL value")
	default:
		return fmt.Errorf("clock time: unsupported source type %T", src)
	}
}

func (c *ClockTime) scanText(raw string) error {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			*c = NewClockTime(t.Hour(), t.Minute())
			return nil
		}
	}
	return fmt.Errorf("clock time: cannot parse %q", raw)
}

// TimeInterval is a recurring weekly slot: a day plus a half-open [Start, End) range.
type TimeInterval struct {
	Day   Weekday   `db:"day" json:"day"`
	Start ClockTime `db:"start_time" json:"start_time"`
	End   ClockTime `db:"end_time" json:"end_time"`
}

// NewTimeInterval parses and validates a (day, start, end) triple.
func NewTimeInterval(day, start, end string) (TimeInterval, error) {
	d, err := ParseWeekday(day)
	if err != nil {
		return TimeInterval{}, err
	}
	s, err := ParseClock(start)
	if err != nil {
		return TimeInterval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeInterval{}, err
	}
	interval := TimeInterval{Day: d, Start: s, End: e}
	if err := interval.Validate(); err != nil {
		return TimeInterval{}, err
	}
	return interval, nil
}

// Validate checks the day name and that Start is strictly before End.
func (i TimeInterval) Validate() error {
	if !i.Day.Valid() {
		return ErrInvalidDay
	}
	if i.Start >= i.End {
		return ErrInvalidTimeRange
	}
	return nil
}

// String renders the interval as "Monday 08:00-09:00".
func (i TimeInterval) String() string {
	return fmt.Sprintf("%s %s-%s", i.Day, i.Start, i.End)
}

// Overlaps reports whether two intervals share any instant. Touching intervals do not overlap.
func Overlaps(a, b TimeInterval) bool {
	return a.Day == b.Day && a.Start < b.End && b.Start < a.End
}
