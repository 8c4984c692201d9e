package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teaching-load-api/internal/models"
)

// OverlapFinder returns committed entries that may collide with one proposed interval.
type OverlapFinder interface {
	FindOverlapping(ctx context.Context, exec sqlx.ExtContext, q models.OverlapQuery) ([]models.ScheduleOccupancy, error)
}

// ConflictDetector compares a booking against committed schedules. It never writes.
type ConflictDetector struct {
	finder OverlapFinder
}

// NewConflictDetector constructs a detector backed by finder.
func NewConflictDetector(finder OverlapFinder) *ConflictDetector {
	return &ConflictDetector{finder: finder}
}

// Check collects every conflict across all proposed intervals. Each committed entry is reported
// at most once, against the first proposed interval it overlaps. A nil exec reads outside any
// transaction.
func (d *ConflictDetector) Check(ctx context.Context, exec sqlx.ExtContext, booking models.BookingRequest) (*models.ConflictReport, error) {
	report := &models.ConflictReport{Conflicts: []models.ScheduleConflict{}}
	seen := make(map[string]struct{})

	for _, proposed := range booking.Intervals {
		candidates, err := d.finder.FindOverlapping(ctx, exec, overlapQuery(booking, proposed))
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", proposed, err)
		}
		for _, existing := range candidates {
			if _, dup := seen[existing.EntryID]; dup {
				continue
			}
			axis, ok := ClassifyConflict(booking, proposed, existing)
			if !ok {
				continue
			}
			seen[existing.EntryID] = struct{}{}
			report.Conflicts = append(report.Conflicts, newScheduleConflict(existing, proposed, axis))
		}
	}
	return report, nil
}

// ClassifyConflict decides whether existing collides with the proposed interval and on which axis.
// Axes are tried in order instructor, room, program/section/year/shift; the first match wins.
func ClassifyConflict(booking models.BookingRequest, proposed models.TimeInterval, existing models.ScheduleOccupancy) (models.ConflictAxis, bool) {
	if !models.Overlaps(proposed, existing.TimeInterval) {
		return "", false
	}
	if existing.InstructorName == booking.InstructorName {
		return models.AxisInstructor, true
	}
	if booking.HasRoom() && existing.RoomNumber != "" && existing.RoomNumber == booking.RoomNumber {
		return models.AxisRoom, true
	}
	if booking.HasProgramTuple() &&
		existing.ProgramName == booking.ProgramName &&
		existing.Section == booking.Section &&
		existing.YearLevel == booking.YearLevel &&
		existing.Shift == booking.Shift {
		return models.AxisProgramSection, true
	}
	return "", false
}

func overlapQuery(booking models.BookingRequest, proposed models.TimeInterval) models.OverlapQuery {
	q := models.OverlapQuery{Interval: proposed, InstructorName: booking.InstructorName}
	if booking.HasRoom() {
		q.RoomNumber = booking.RoomNumber
	}
	if booking.HasProgramTuple() {
		q.ProgramName = booking.ProgramName
		q.Section = booking.Section
		q.YearLevel = booking.YearLevel
		q.Shift = booking.Shift
	}
	return q
}

func newScheduleConflict(existing models.ScheduleOccupancy, proposed models.TimeInterval, axis models.ConflictAxis) models.ScheduleConflict {
	return models.ScheduleConflict{
		ScheduleID:      existing.ScheduleID,
		EntryID:         existing.EntryID,
		InstructorName:  existing.InstructorName,
		CourseCode:      existing.CourseCode,
		RoomNumber:      existing.RoomNumber,
		ProgramName:     existing.ProgramName,
		Section:         existing.Section,
		YearLevel:       existing.YearLevel,
		Shift:           existing.Shift,
		Day:             existing.Day,
		StartTime:       existing.Start,
		EndTime:         existing.End,
		ConflictField:   axis,
		ConflictMessage: axis.Message(),
		Proposed:        proposed,
	}
}
