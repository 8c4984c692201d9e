package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teaching-load-api/internal/models"
)

const (
	programScheduleColumns = `id, instructor_name, course_code, course_name, credit_hours, semester, program_name, program_code, room_number, room_type, building_name, campus_name, year_level, section, shift, bachelor_degree, master_degree, created_at`

	occupancySelect = `SELECT e.id AS entry_id, e.day, e.start_time, e.end_time, p.id AS schedule_id, p.instructor_name, p.course_code, p.room_number, p.program_name, p.section, p.year_level, p.shift
FROM schedule_entries e JOIN program_schedules p ON p.id = e.program_schedule_id`

	timetableSelect = `SELECT p.id AS schedule_id, p.course_code, p.course_name, p.instructor_name, p.room_number, p.semester, p.program_name, p.year_level, p.section, p.shift, e.day, e.start_time, e.end_time
FROM schedule_entries e JOIN program_schedules p ON p.id = e.program_schedule_id`

	// hashtext collisions only make unrelated bookings wait for each other.
	axisLockQuery = `SELECT pg_advisory_xact_lock(hashtext($1))`
)

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// ProgramScheduleRepository persists committed bookings and their weekly entries.
type ProgramScheduleRepository struct {
	db       *sqlx.DB
	observer queryObserver
}

// NewProgramScheduleRepository creates a new program schedule repository.
func NewProgramScheduleRepository(db *sqlx.DB) *ProgramScheduleRepository {
	return &ProgramScheduleRepository{db: db}
}

// WithObserver records query timings on the provided observer.
func (r *ProgramScheduleRepository) WithObserver(o queryObserver) *ProgramScheduleRepository {
	r.observer = o
	return r
}

func (r *ProgramScheduleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *ProgramScheduleRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

// RunInBookingTx runs fn inside one transaction after taking a transaction-scoped advisory
// lock per identity-axis key. Keys are locked in sorted order so concurrent bookings cannot
// deadlock. The transaction commits only when fn returns nil.
func (r *ProgramScheduleRepository) RunInBookingTx(ctx context.Context, lockKeys []string, fn func(exec sqlx.ExtContext) error) (err error) {
	defer r.observe("booking_tx", time.Now())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, key := range uniqueSorted(lockKeys) {
		if _, err = tx.ExecContext(ctx, axisLockQuery, key); err != nil {
			return fmt.Errorf("lock booking axis %q: %w", key, err)
		}
	}

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

// FindOverlapping returns committed entries on the same day whose time range overlaps the
// proposed interval and whose header shares at least one identity axis with the query.
func (r *ProgramScheduleRepository) FindOverlapping(ctx context.Context, exec sqlx.ExtContext, q models.OverlapQuery) ([]models.ScheduleOccupancy, error) {
	defer r.observe("find_overlapping", time.Now())

	axes := []Predicate{Eq("p.instructor_name", q.InstructorName)}
	if q.RoomNumber != "" {
		axes = append(axes, Eq("p.room_number", q.RoomNumber))
	}
	if q.ProgramName != "" && q.Section != "" && q.YearLevel != "" && q.Shift != "" {
		axes = append(axes, And(
			Eq("p.program_name", q.ProgramName),
			Eq("p.section", q.Section),
			Eq("p.year_level", q.YearLevel),
			Eq("p.shift", q.Shift),
		))
	}

	where, args := Build(And(
		Eq("e.day", q.Interval.Day),
		Lt("e.start_time", q.Interval.End),
		Gt("e.end_time", q.Interval.Start),
		Or(axes...),
	), 0)

	query := occupancySelect + " WHERE " + where + " ORDER BY e.start_time ASC, p.created_at ASC"
	var rows []models.ScheduleOccupancy
	if err := sqlx.SelectContext(ctx, r.exec(exec), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find overlapping schedules: %w", err)
	}
	return rows, nil
}

// CreateHeader inserts a program schedule header.
func (r *ProgramScheduleRepository) CreateHeader(ctx context.Context, exec sqlx.ExtContext, schedule *models.ProgramSchedule) error {
	if schedule == nil {
		return fmt.Errorf("program schedule payload is nil")
	}
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO program_schedules (` + programScheduleColumns + `) VALUES (:id, :instructor_name, :course_code, :course_name, :credit_hours, :semester, :program_name, :program_code, :room_number, :room_type, :building_name, :campus_name, :year_level, :section, :shift, :bachelor_degree, :master_degree, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, schedule); err != nil {
		return fmt.Errorf("create program schedule: %w", err)
	}
	return nil
}

// CreateEntries inserts the weekly entries of a header one by one, stopping at the first failure.
func (r *ProgramScheduleRepository) CreateEntries(ctx context.Context, exec sqlx.ExtContext, entries []models.ScheduleEntry) error {
	const query = `INSERT INTO schedule_entries (id, program_schedule_id, day, start_time, end_time) VALUES (:id, :program_schedule_id, :day, :start_time, :end_time)`
	target := r.exec(exec)
	for i := range entries {
		entry := entries[i]
		if entry.ProgramScheduleID == "" {
			return fmt.Errorf("schedule entry %d has no program schedule id", i)
		}
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, &entry); err != nil {
			return fmt.Errorf("create schedule entry %d (%s): %w", i, entry.TimeInterval, err)
		}
		entries[i] = entry
	}
	return nil
}

// FindByID loads a header together with its entries.
func (r *ProgramScheduleRepository) FindByID(ctx context.Context, id string) (*models.ProgramSchedule, error) {
	query := `SELECT ` + programScheduleColumns + ` FROM program_schedules WHERE id = $1`
	var schedule models.ProgramSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	entries, err := r.ListEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	schedule.Entries = entries
	return &schedule, nil
}

// ListEntries returns the entries of a header in weekday then start time order.
func (r *ProgramScheduleRepository) ListEntries(ctx context.Context, scheduleID string) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, program_schedule_id, day, start_time, end_time FROM schedule_entries WHERE program_schedule_id = $1`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return intervalLess(entries[i].TimeInterval, entries[j].TimeInterval)
	})
	return entries, nil
}

// ListTimetable returns flattened rows filtered by room, instructor and semester.
func (r *ProgramScheduleRepository) ListTimetable(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableRow, error) {
	defer r.observe("list_timetable", time.Now())

	var conditions []Predicate
	if filter.RoomNumber != "" {
		conditions = append(conditions, Eq("p.room_number", filter.RoomNumber))
	}
	if filter.InstructorName != "" {
		conditions = append(conditions, Eq("p.instructor_name", filter.InstructorName))
	}
	if filter.Semester != "" {
		conditions = append(conditions, Eq("p.semester", filter.Semester))
	}
	where, args := Build(And(conditions...), 0)

	var rows []models.TimetableRow
	if err := r.db.SelectContext(ctx, &rows, timetableSelect+" WHERE "+where, args...); err != nil {
		return nil, fmt.Errorf("list timetable: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return intervalLess(rows[i].TimeInterval, rows[j].TimeInterval)
	})
	return rows, nil
}

// ListSemesters returns the distinct non-empty semesters that have bookings.
func (r *ProgramScheduleRepository) ListSemesters(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT semester FROM program_schedules WHERE semester <> '' ORDER BY semester ASC`
	var semesters []string
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

func intervalLess(a, b models.TimeInterval) bool {
	if a.Day != b.Day {
		return a.Day.Index() < b.Day.Index()
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.End < b.End
}

func uniqueSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
