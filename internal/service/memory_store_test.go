package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teaching-load-api/internal/models"
)

// memoryScheduleStore mimics ProgramScheduleRepository: one booking transaction at a time,
// writes staged per transaction and applied only when the callback succeeds.
type memoryScheduleStore struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	headers map[string]models.ProgramSchedule
	entries []models.ScheduleEntry
	seq     int

	failEntryInsert int
	findErr         error
	lockKeys        [][]string
}

type memoryTx struct {
	sqlx.ExtContext
	headers []models.ProgramSchedule
	entries []models.ScheduleEntry
	inserts int
}

func newMemoryScheduleStore() *memoryScheduleStore {
	return &memoryScheduleStore{headers: make(map[string]models.ProgramSchedule)}
}

func (m *memoryScheduleStore) RunInBookingTx(ctx context.Context, lockKeys []string, fn func(exec sqlx.ExtContext) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	m.lockKeys = append(m.lockKeys, lockKeys)
	m.mu.Unlock()

	tx := &memoryTx{}
	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range tx.headers {
		m.headers[h.ID] = h
	}
	m.entries = append(m.entries, tx.entries...)
	return nil
}

func (m *memoryScheduleStore) FindOverlapping(ctx context.Context, exec sqlx.ExtContext, q models.OverlapQuery) ([]models.ScheduleOccupancy, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}

	m.mu.RLock()
	headers := make(map[string]models.ProgramSchedule, len(m.headers))
	for id, h := range m.headers {
		headers[id] = h
	}
	entries := append([]models.ScheduleEntry(nil), m.entries...)
	m.mu.RUnlock()

	if tx, ok := exec.(*memoryTx); ok {
		for _, h := range tx.headers {
			headers[h.ID] = h
		}
		entries = append(entries, tx.entries...)
	}

	var out []models.ScheduleOccupancy
	for _, e := range entries {
		if e.Day != q.Interval.Day || !(e.Start < q.Interval.End && e.End > q.Interval.Start) {
			continue
		}
		h := headers[e.ProgramScheduleID]
		sameProgram := q.ProgramName != "" && h.ProgramName == q.ProgramName && h.Section == q.Section &&
			h.YearLevel == q.YearLevel && h.Shift == q.Shift
		if h.InstructorName != q.InstructorName && (q.RoomNumber == "" || h.RoomNumber != q.RoomNumber) && !sameProgram {
			continue
		}
		out = append(out, models.ScheduleOccupancy{
			ScheduleID:     h.ID,
			EntryID:        e.ID,
			InstructorName: h.InstructorName,
			CourseCode:     h.CourseCode,
			RoomNumber:     h.RoomNumber,
			ProgramName:    h.ProgramName,
			Section:        h.Section,
			YearLevel:      h.YearLevel,
			Shift:          h.Shift,
			TimeInterval:   e.TimeInterval,
		})
	}
	return out, nil
}

func (m *memoryScheduleStore) CreateHeader(ctx context.Context, exec sqlx.ExtContext, schedule *models.ProgramSchedule) error {
	tx, ok := exec.(*memoryTx)
	if !ok {
		return errors.New("header written outside a booking transaction")
	}
	schedule.ID = uuid.NewString()
	tx.headers = append(tx.headers, *schedule)
	return nil
}

func (m *memoryScheduleStore) CreateEntries(ctx context.Context, exec sqlx.ExtContext, entries []models.ScheduleEntry) error {
	tx, ok := exec.(*memoryTx)
	if !ok {
		return errors.New("entries written outside a booking transaction")
	}
	for i := range entries {
		tx.inserts++
		if m.failEntryInsert == tx.inserts {
			return fmt.Errorf("create schedule entry %d: %w", i, sql.ErrConnDone)
		}
		m.mu.Lock()
		m.seq++
		entries[i].ID = fmt.Sprintf("entry-%d", m.seq)
		m.mu.Unlock()
		tx.entries = append(tx.entries, entries[i])
	}
	return nil
}

func (m *memoryScheduleStore) FindByID(ctx context.Context, id string) (*models.ProgramSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.headers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for _, e := range m.entries {
		if e.ProgramScheduleID == id {
			h.Entries = append(h.Entries, e)
		}
	}
	return &h, nil
}

func (m *memoryScheduleStore) counts() (headers, entries int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.headers), len(m.entries)
}
