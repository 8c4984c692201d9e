package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teaching-load-api/internal/models"
)

func newProgramScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func mustInterval(t *testing.T, day, start, end string) models.TimeInterval {
	t.Helper()
	interval, err := models.NewTimeInterval(day, start, end)
	require.NoError(t, err)
	return interval
}

func TestProgramScheduleRepositoryRunInBookingTxCommits(t *testing.T) {
	db, mock, cleanup := newProgramScheduleRepoMock(t)
	defer cleanup()
	repo := NewProgramScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(axisLockQuery)).WithArgs("instructor:J. Cruz").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(axisLockQuery)).WithArgs("room:201").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	calls := 0
	err := repo.RunInBookingTx(context.Background(), []string{"room:201", "instructor:J. Cruz", "room:201"}, func(exec sqlx.ExtContext) error {
		calls++
		assert.NotNil(t, exec)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramScheduleRepositoryRunInBookingTxRollsBackOnCallbackError(t *testing.T) {
	db, mock, cleanup := newProgramScheduleRepoMock(t)
	defer cleanup()
	repo := NewProgramScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(axisLockQuery)).WithArgs("instructor:J. Cruz").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	sentinel := errors.New("conflict found")
	err := repo.RunInBookingTx(context.Background(), []string{"instructor:J. Cruz"}, func(exec sqlx.ExtContext) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramScheduleRepositoryRunInBookingTxLockFailure(t *testing.T) {
	db, mock, cleanup := newProgramScheduleRepoMock(t)
	defer cleanup()
	repo := NewProgramScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(axisLockQuery)).WithArgs("instructor:J. Cruz").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	called := false
	err := repo.RunInBookingTx(context.Background(), []string{"instructor:J. Cruz"}, func(exec sqlx.ExtContext) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failure on the second of three entries must leave neither the header nor any entry behind.
func TestProgramScheduleRepositoryEntryFailureRollsBackWholeBooking(t *testing.T) {
	db, mock, cleanup := newProgramScheduleRepoMock(t)
	defer cleanup()
	repo := NewProgramScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(axisLockQuery)).WithArgs("instructor:J. Cruz").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO program_schedules").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	header := &models.ProgramSchedule{InstructorName: "J. Cruz", CourseCode: "CS101", YearLevel: "1"}
	err := repo.RunInBookingTx(context.Background(), []string{"instructor:J. Cruz"}, func(exec sqlx.ExtContext) error {
		if err := repo.CreateHeader(context.Background(), exec, header); err != nil {
			return err
		}
		entries := []models.ScheduleEntry{
			{ProgramScheduleID: header.ID, TimeInterval: mustInterval(t, "Monday", "08:00", "09:00")},
			{ProgramScheduleID: header.ID, TimeInterval: mustInterval(t, "Wednesday", "08:00", "09:00")},
			{ProgramScheduleID: header.ID, TimeInterval: mustInterval(t, "Friday", "08:00", "09:00")},
		}
		return repo.CreateEntries(context.Background(), exec, entries)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create schedule entry 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramScheduleRepositoryFindOverlappingAllAxes(t *testing.T) {
	db, mock, cleanup := newProgramScheduleRepoMock(t)
	defer cleanup()
	repo := NewProgramScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"entry_id", "day", "start_time", "end_time", "schedule_id", "instructor_name", "course_code", "room_number", "program_name", "section", "year_level", "shift"}).
		AddRow("e-1", "Monday", "08:00:00", "09:00:00", "s-1", "J. Cruz", "CS101", "201", "BSCS", "1A", "1", "AM")

	expected := `WHERE (e.day = $1 AND e.start_time < $2 AND e.end_time > $3 AND (p.instructor_name = $4 OR p.room_number = $5 OR (p.program_name = $6 AND p.section = $7 AND p.year_level = $8 AND p.shift = $9))) ORDER BY`
	mock.ExpectQuery(regexp.QuoteMeta(expected)).
		WithArgs("Monday", "09:30", "08:30", "J. Cruz", "201", "BSCS", "1A", "1", "AM").
		WillReturnRows(rows)

	result, err := repo.FindOverlapping(context.Background(), nil, models.OverlapQuery{
		Interval:       mustInterval(t, "Monday", "08:30", "09:30"),
		InstructorName: "J. Cruz",
		RoomNumber:     "201",
		ProgramName:    "BSCS",
		Section:        "1A",
		YearLevel:      "1",
		Shift:          "AM",
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "s-1", result[0].ScheduleID)
	assert.Equal(t, models.Monday, result[0].Day)
	assert.Equal(t, models.NewClockTime(8, 0), result[0].Start)
	assert.Equal(t, models.NewClockTime(9, 0), result[0].End)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramScheduleRepositoryFindOverlappingInstructorOnly(t *testing.T) {
	db, mock, cleanup := newProgramScheduleRepoMock(t)
	defer cleanup()
	repo := NewProgramScheduleRepository(db)

	expected := `WHERE (e.day = $1 AND e.start_time < $2 AND e.end_time > $3 AND p.instructor_name = $4) ORDER BY`
	mock.ExpectQuery(regexp.QuoteMeta(expected)).
		WithArgs("Tuesday", "11:00", "10:00", "M. Reyes").
		WillReturnRows(sqlmock.NewRows([]string{"entry_id"}))

	result, err := repo.FindOverlapping(context.Background(), nil, models.OverlapQuery{
		Interval:       mustInterval(t, "Tuesday", "10:00", "11:00"),
		InstructorName: "M. Reyes",
		ProgramName:    "BSCS",
		YearLevel:      "2",
	})
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramScheduleRepositoryFindByIDSortsEntries(t *testing.T) {
	db, mock, cleanup := newProgramScheduleRepoMock(t)
	defer cleanup()
	repo := NewProgramScheduleRepository(db)

	header := sqlmock.NewRows([]string{"id", "instructor_name", "course_code", "course_name", "credit_hours", "semester", "program_name", "program_code", "room_number", "room_type", "building_name", "campus_name", "year_level", "section", "shift", "bachelor_degree", "master_degree", "created_at"}).
		AddRow("s-1", "J. Cruz", "CS101", "Intro", 3, "1st", "BSCS", "CS", "201", "Lecture", "Main", "North", "1", "1A", "AM", "", "", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM program_schedules WHERE id = $1")).WithArgs("s-1").WillReturnRows(header)

	entries := sqlmock.NewRows([]string{"id", "program_schedule_id", "day", "start_time", "end_time"}).
		AddRow("e-2", "s-1", "Wednesday", "08:00:00", "09:00:00").
		AddRow("e-3", "s-1", "Monday", "13:00:00", "14:00:00").
		AddRow("e-1", "s-1", "Monday", "08:00:00", "09:00:00")
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_entries WHERE program_schedule_id = $1")).WithArgs("s-1").WillReturnRows(entries)

	schedule, err := repo.FindByID(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, schedule.Entries, 3)
	assert.Equal(t, []string{"e-1", "e-3", "e-2"}, []string{schedule.Entries[0].ID, schedule.Entries[1].ID, schedule.Entries[2].ID})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramScheduleRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newProgramScheduleRepoMock(t)
	defer cleanup()
	repo := NewProgramScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM program_schedules WHERE id = $1")).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramScheduleRepositoryListTimetableByRoomAndSemester(t *testing.T) {
	db, mock, cleanup := newProgramScheduleRepoMock(t)
	defer cleanup()
	repo := NewProgramScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"schedule_id", "course_code", "course_name", "instructor_name", "room_number", "semester", "program_name", "year_level", "section", "shift", "day", "start_time", "end_time"}).
		AddRow("s-2", "CS102", "Data", "M. Reyes", "201", "1st", "BSCS", "1", "1B", "PM", "Tuesday", "13:00:00", "14:00:00").
		AddRow("s-1", "CS101", "Intro", "J. Cruz", "201", "1st", "BSCS", "1", "1A", "AM", "Monday", "08:00:00", "09:00:00")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE (p.room_number = $1 AND p.semester = $2)")).
		WithArgs("201", "1st").
		WillReturnRows(rows)

	result, err := repo.ListTimetable(context.Background(), models.TimetableFilter{RoomNumber: "201", Semester: "1st"})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "CS101", result[0].CourseCode)
	assert.Equal(t, models.Tuesday, result[1].Day)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramScheduleRepositoryListSemesters(t *testing.T) {
	db, mock, cleanup := newProgramScheduleRepoMock(t)
	defer cleanup()
	repo := NewProgramScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT semester FROM program_schedules")).
		WillReturnRows(sqlmock.NewRows([]string{"semester"}).AddRow("1st").AddRow("2nd"))

	semesters, err := repo.ListSemesters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1st", "2nd"}, semesters)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEntriesRequiresHeaderID(t *testing.T) {
	db, mock, cleanup := newProgramScheduleRepoMock(t)
	defer cleanup()
	repo := NewProgramScheduleRepository(db)

	err := repo.CreateEntries(context.Background(), nil, []models.ScheduleEntry{{TimeInterval: mustInterval(t, "Monday", "08:00", "09:00")}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
