package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/teaching-load-api/internal/dto"
	"github.com/noah-isme/teaching-load-api/internal/models"
	appErrors "github.com/noah-isme/teaching-load-api/pkg/errors"
)

func newTestBookingService(store *memoryScheduleStore) (*BookingService, *MetricsService) {
	metrics := NewMetricsService()
	return NewBookingService(store, nil, metrics, zap.NewNop()), metrics
}

func bookingFor(instructor, room, section, day, start, end string) dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		InstructorName: instructor,
		RoomNumber:     room,
		ProgramName:    "BSCS",
		Section:        section,
		YearLevel:      "1",
		Shift:          "AM",
		CourseCode:     "CS101",
		CreditHours:    float64(3),
		Schedules:      []dto.IntervalPayload{{Day: day, StartTime: start, EndTime: end}},
	}
}

func requireConflict(t *testing.T, err error) *models.ScheduleConflictError {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	var conflict *models.ScheduleConflictError
	require.ErrorAs(t, err, &conflict)
	return conflict
}

func TestBookingServiceExampleScenario(t *testing.T) {
	store := newMemoryScheduleStore()
	svc, metrics := newTestBookingService(store)
	ctx := context.Background()

	a, err := svc.Commit(ctx, bookingFor("J. Cruz", "201", "1A", "Monday", "08:00", "09:00"))
	require.NoError(t, err)
	require.Len(t, a.Entries, 1)
	assert.Equal(t, a.ID, a.Entries[0].ProgramScheduleID)

	_, err = svc.Commit(ctx, bookingFor("M. Reyes", "305", "1B", "Monday", "08:00", "09:00"))
	require.NoError(t, err)

	_, err = svc.Commit(ctx, bookingFor("J. Cruz", "201", "1A", "Monday", "08:30", "09:30"))
	conflict := requireConflict(t, err)
	require.Len(t, conflict.Report.Conflicts, 1)
	c := conflict.Report.Conflicts[0]
	assert.Equal(t, models.AxisInstructor, c.ConflictField)
	assert.Equal(t, "Instructor's schedule is already booked.", c.ConflictMessage)
	assert.Equal(t, a.ID, c.ScheduleID)
	assert.Equal(t, models.Monday, c.Day)
	assert.Equal(t, models.NewClockTime(8, 0), c.StartTime)
	assert.Equal(t, models.NewClockTime(9, 0), c.EndTime)

	headers, entries := store.counts()
	assert.Equal(t, 2, headers)
	assert.Equal(t, 2, entries)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.bookingCommits.WithLabelValues(BookingOutcomeCommitted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.bookingCommits.WithLabelValues(BookingOutcomeConflict)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.bookingConflict.WithLabelValues(string(models.AxisInstructor))))
}

func TestBookingServiceSharedProgramTupleConflicts(t *testing.T) {
	store := newMemoryScheduleStore()
	svc, _ := newTestBookingService(store)
	ctx := context.Background()

	_, err := svc.Commit(ctx, bookingFor("J. Cruz", "201", "1A", "Monday", "08:00", "09:00"))
	require.NoError(t, err)

	_, err = svc.Commit(ctx, bookingFor("M. Reyes", "305", "1A", "Monday", "08:00", "09:00"))
	conflict := requireConflict(t, err)
	require.Len(t, conflict.Report.Conflicts, 1)
	assert.Equal(t, models.AxisProgramSection, conflict.Report.Conflicts[0].ConflictField)
}

func TestBookingServiceProgramAxisNeedsExactTuple(t *testing.T) {
	mutations := map[string]func(*dto.CreateBookingRequest){
		"program":    func(r *dto.CreateBookingRequest) { r.ProgramName = "BSIT" },
		"section":    func(r *dto.CreateBookingRequest) { r.Section = "1B" },
		"year level": func(r *dto.CreateBookingRequest) { r.YearLevel = "2" },
		"shift":      func(r *dto.CreateBookingRequest) { r.Shift = "PM" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			store := newMemoryScheduleStore()
			svc, _ := newTestBookingService(store)
			ctx := context.Background()

			_, err := svc.Commit(ctx, bookingFor("J. Cruz", "201", "1A", "Tuesday", "10:00", "11:00"))
			require.NoError(t, err)

			req := bookingFor("M. Reyes", "305", "1A", "Tuesday", "10:00", "11:00")
			mutate(&req)
			_, err = svc.Commit(ctx, req)
			assert.NoError(t, err)
		})
	}
}

func TestBookingServiceTouchingIntervalsNeverConflict(t *testing.T) {
	store := newMemoryScheduleStore()
	svc, _ := newTestBookingService(store)
	ctx := context.Background()

	_, err := svc.Commit(ctx, bookingFor("J. Cruz", "201", "1A", "Monday", "08:00", "09:00"))
	require.NoError(t, err)
	_, err = svc.Commit(ctx, bookingFor("J. Cruz", "201", "1A", "Monday", "09:00", "10:00"))
	require.NoError(t, err)
	_, err = svc.Commit(ctx, bookingFor("J. Cruz", "201", "1A", "Monday", "07:00", "08:00"))
	require.NoError(t, err)
}

func TestBookingServiceUnsetRoomNeverRoomBusy(t *testing.T) {
	store := newMemoryScheduleStore()
	svc, _ := newTestBookingService(store)
	ctx := context.Background()

	_, err := svc.Commit(ctx, bookingFor("J. Cruz", "201", "1A", "Friday", "13:00", "15:00"))
	require.NoError(t, err)
	_, err = svc.Commit(ctx, bookingFor("A. Santos", "", "2C", "Friday", "13:00", "15:00"))
	require.NoError(t, err)

	// An existing booking without a room does not block a roomed booking either.
	_, err = svc.Commit(ctx, bookingFor("L. Bautista", "", "3D", "Friday", "14:00", "16:00"))
	require.NoError(t, err)
	_, err = svc.Commit(ctx, bookingFor("R. Garcia", "410", "4E", "Friday", "14:00", "16:00"))
	require.NoError(t, err)
}

func TestBookingServiceRoomConflict(t *testing.T) {
	store := newMemoryScheduleStore()
	svc, _ := newTestBookingService(store)
	ctx := context.Background()

	_, err := svc.Commit(ctx, bookingFor("J. Cruz", "201", "1A", "Thursday", "13:00", "15:00"))
	require.NoError(t, err)
	_, err = svc.Commit(ctx, bookingFor("M. Reyes", "201", "2B", "Thursday", "14:00", "16:00"))
	conflict := requireConflict(t, err)
	require.Len(t, conflict.Report.Conflicts, 1)
	assert.Equal(t, models.AxisRoom, conflict.Report.Conflicts[0].ConflictField)
	assert.Equal(t, "Room schedule is already booked.", conflict.Message)
}

func TestBookingServiceCollectsConflictsAcrossIntervals(t *testing.T) {
	store := newMemoryScheduleStore()
	svc, _ := newTestBookingService(store)
	ctx := context.Background()

	_, err := svc.Commit(ctx, bookingFor("J. Cruz", "201", "1A", "Monday", "08:00", "09:00"))
	require.NoError(t, err)
	_, err = svc.Commit(ctx, bookingFor("M. Reyes", "305", "2B", "Wednesday", "08:00", "09:00"))
	require.NoError(t, err)

	req := bookingFor("J. Cruz", "305", "3C", "Monday", "08:30", "09:30")
	req.Schedules = append(req.Schedules, dto.IntervalPayload{Day: "Wednesday", StartTime: "08:30", EndTime: "09:30"})
	_, err = svc.Commit(ctx, req)
	conflict := requireConflict(t, err)
	require.Len(t, conflict.Report.Conflicts, 2)
	assert.Equal(t, models.AxisInstructor, conflict.Report.Conflicts[0].ConflictField)
	assert.Equal(t, models.AxisRoom, conflict.Report.Conflicts[1].ConflictField)
	assert.Equal(t, "Schedule conflicts with existing bookings.", conflict.Message)

	appErr := appErrors.FromError(err)
	details, ok := appErr.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, details["conflicts"], 2)
}

func TestBookingServiceDisjointBookingsAlwaysCommit(t *testing.T) {
	store := newMemoryScheduleStore()
	svc, _ := newTestBookingService(store)
	ctx := context.Background()

	instructors := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, day := range models.Weekdays {
		req := bookingFor(instructors[i], "R"+instructors[i], "S"+instructors[i], string(day), "08:00", "17:00")
		_, err := svc.Commit(ctx, req)
		require.NoError(t, err, day)
	}
	headers, entries := store.counts()
	assert.Equal(t, 7, headers)
	assert.Equal(t, 7, entries)
}

func TestBookingServiceRollsBackWhenEntryInsertFails(t *testing.T) {
	store := newMemoryScheduleStore()
	store.failEntryInsert = 2
	svc, metrics := newTestBookingService(store)

	req := bookingFor("J. Cruz", "201", "1A", "Monday", "08:00", "09:00")
	req.Schedules = append(req.Schedules,
		dto.IntervalPayload{Day: "Wednesday", StartTime: "08:00", EndTime: "09:00"},
		dto.IntervalPayload{Day: "Friday", StartTime: "08:00", EndTime: "09:00"},
	)

	_, err := svc.Commit(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStorage.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)

	headers, entries := store.counts()
	assert.Zero(t, headers)
	assert.Zero(t, entries)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.bookingCommits.WithLabelValues(BookingOutcomeError)))
}

func TestBookingServiceValidationHappensBeforeStorage(t *testing.T) {
	store := newMemoryScheduleStore()
	svc, _ := newTestBookingService(store)

	req := bookingFor("J. Cruz", "201", "1A", "Someday", "08:00", "09:00")
	_, err := svc.Commit(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidDay.Code, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, map[string]interface{}{"field": "schedules[0].day", "value": "Someday"}, appErr.Details)
	assert.Empty(t, store.lockKeys)
}

func TestBookingServiceLocksEveryParticipatingAxis(t *testing.T) {
	store := newMemoryScheduleStore()
	svc, _ := newTestBookingService(store)

	_, err := svc.Commit(context.Background(), bookingFor("J. Cruz", "201", "1A", "Monday", "08:00", "09:00"))
	require.NoError(t, err)
	require.Len(t, store.lockKeys, 1)
	assert.Equal(t, []string{"instructor:J. Cruz", "program:BSCS|1A|1|AM", "room:201"}, store.lockKeys[0])
}

func TestBookingServiceConcurrentCommitsForSameRoom(t *testing.T) {
	store := newMemoryScheduleStore()
	svc, _ := newTestBookingService(store)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]error, callers)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			req := bookingFor(string(rune('A'+i))+". Staff", "201", string(rune('A'+i))+"X", "Monday", "10:00", "11:00")
			_, results[i] = svc.Commit(context.Background(), req)
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var conflict *models.ScheduleConflictError
		require.True(t, errors.As(err, &conflict), "unexpected error: %v", err)
		assert.Equal(t, models.AxisRoom, conflict.Report.Conflicts[0].ConflictField)
	}
	assert.Equal(t, 1, succeeded)
	headers, _ := store.counts()
	assert.Equal(t, 1, headers)
}

func TestBookingServiceCheckDoesNotWrite(t *testing.T) {
	store := newMemoryScheduleStore()
	svc, _ := newTestBookingService(store)
	ctx := context.Background()

	_, err := svc.Commit(ctx, bookingFor("J. Cruz", "201", "1A", "Monday", "08:00", "09:00"))
	require.NoError(t, err)

	report, err := svc.Check(ctx, bookingFor("J. Cruz", "305", "2B", "Monday", "08:30", "10:00"))
	require.NoError(t, err)
	assert.True(t, report.HasConflicts())

	report, err = svc.Check(ctx, bookingFor("J. Cruz", "305", "2B", "Tuesday", "08:30", "10:00"))
	require.NoError(t, err)
	assert.False(t, report.HasConflicts())
	assert.NotNil(t, report.Conflicts)

	headers, _ := store.counts()
	assert.Equal(t, 1, headers)
	assert.Len(t, store.lockKeys, 1)
}

func TestBookingServiceCheckStorageError(t *testing.T) {
	store := newMemoryScheduleStore()
	store.findErr = errors.New("connection refused")
	svc, _ := newTestBookingService(store)

	_, err := svc.Check(context.Background(), bookingFor("J. Cruz", "201", "1A", "Monday", "08:00", "09:00"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStorage.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceGet(t *testing.T) {
	store := newMemoryScheduleStore()
	svc, _ := newTestBookingService(store)
	ctx := context.Background()

	created, err := svc.Commit(ctx, bookingFor("J. Cruz", "201", "1A", "Monday", "08:00", "09:00"))
	require.NoError(t, err)

	loaded, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "CS101", loaded.CourseCode)
	assert.Equal(t, models.DefaultCourseName, loaded.CourseName)
	assert.Len(t, loaded.Entries, 1)

	_, err = svc.Get(ctx, "9d2f6c1a-4b3e-4a5d-9c8b-7a6f5e4d3c2b")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestBookingServiceGetRejectsMalformedID(t *testing.T) {
	svc, _ := newTestBookingService(newMemoryScheduleStore())

	_, err := svc.Get(context.Background(), "abc")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, map[string]interface{}{"field": "id", "value": "abc"}, appErr.Details)
}
