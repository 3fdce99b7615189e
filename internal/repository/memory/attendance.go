package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/manas-swain-001/cms/internal/domain/attendance"
)

// attendanceRepository is a mutex-guarded in-memory store keyed by
// (user, day). Mirrors the PostgreSQL repository's semantics so the
// services behave identically on either.
type attendanceRepository struct {
	mu      sync.RWMutex
	records map[string]attendance.Record // key: userID|date
}

// NewAttendanceRepository creates an empty in-memory attendance store.
func NewAttendanceRepository() attendance.Repository {
	return &attendanceRepository{
		records: make(map[string]attendance.Record),
	}
}

func recordKey(userID, date string) string {
	return userID + "|" + date
}

func cloneRecord(r attendance.Record) attendance.Record {
	out := r
	out.Sessions = make([]attendance.Session, len(r.Sessions))
	copy(out.Sessions, r.Sessions)
	out.Breaks = make([]attendance.Break, len(r.Breaks))
	copy(out.Breaks, r.Breaks)
	return out
}

// Create implements attendance.Repository.
func (m *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	m.records[recordKey(record.UserID, record.Date)] = cloneRecord(record)
	return record, nil
}

// GetByUserAndDate implements attendance.Repository.
func (m *attendanceRepository) GetByUserAndDate(ctx context.Context, userID, date string) (attendance.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[recordKey(userID, date)]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return cloneRecord(rec), nil
}

// Update implements attendance.Repository.
func (m *attendanceRepository) Update(ctx context.Context, record attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recordKey(record.UserID, record.Date)
	if _, ok := m.records[key]; !ok {
		return attendance.ErrRecordNotFound
	}
	m.records[key] = cloneRecord(record)
	return nil
}

// ListByUser implements attendance.Repository.
func (m *attendanceRepository) ListByUser(ctx context.Context, userID string, filter attendance.HistoryFilter) ([]attendance.Record, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []attendance.Record
	for _, rec := range m.records {
		if rec.UserID != userID {
			continue
		}
		if filter.StartDate != nil && *filter.StartDate != "" && rec.Date < *filter.StartDate {
			continue
		}
		if filter.EndDate != nil && *filter.EndDate != "" && rec.Date > *filter.EndDate {
			continue
		}
		all = append(all, cloneRecord(rec))
	}

	// Newest day first.
	sort.Slice(all, func(i, j int) bool { return all[i].Date > all[j].Date })

	total := int64(len(all))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(all) {
		return []attendance.Record{}, total, nil
	}
	end := start + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

// ListByDate implements attendance.Repository.
func (m *attendanceRepository) ListByDate(ctx context.Context, date string) ([]attendance.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []attendance.Record
	for _, rec := range m.records {
		if rec.Date == date {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ListStaleOpen implements attendance.Repository.
func (m *attendanceRepository) ListStaleOpen(ctx context.Context, beforeDate string) ([]attendance.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []attendance.Record
	for _, rec := range m.records {
		if rec.Frozen || rec.Date >= beforeDate {
			continue
		}
		if cloneFor := cloneRecord(rec); cloneFor.OpenSession() != nil {
			out = append(out, cloneFor)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}
