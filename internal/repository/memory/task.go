package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/manas-swain-001/cms/internal/domain/task"
)

// taskRepository is a mutex-guarded in-memory checkpoint ledger with the
// same compare-then-set transition semantics as the PostgreSQL store.
type taskRepository struct {
	mu      sync.RWMutex
	entries map[string]task.Entry // key: userID|date|slot
	byID    map[string]string     // entry ID -> key
}

// NewTaskRepository creates an empty in-memory ledger store.
func NewTaskRepository() task.Repository {
	return &taskRepository{
		entries: make(map[string]task.Entry),
		byID:    make(map[string]string),
	}
}

func entryKey(userID, date, slot string) string {
	return userID + "|" + date + "|" + slot
}

// CreateEntries implements task.Repository. Existing (user, date, slot)
// rows are skipped, which makes seeding idempotent.
func (m *taskRepository) CreateEntries(ctx context.Context, entries []task.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		key := entryKey(e.UserID, e.Date, e.Slot)
		if _, exists := m.entries[key]; exists {
			continue
		}
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		m.entries[key] = e
		m.byID[e.ID] = key
	}
	return nil
}

// GetEntry implements task.Repository.
func (m *taskRepository) GetEntry(ctx context.Context, userID, date, slot string) (task.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[entryKey(userID, date, slot)]
	if !ok {
		return task.Entry{}, task.ErrEntryNotFound
	}
	return e, nil
}

// ListByUserAndDate implements task.Repository.
func (m *taskRepository) ListByUserAndDate(ctx context.Context, userID, date string) ([]task.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []task.Entry
	for _, e := range m.entries {
		if e.UserID == userID && e.Date == date {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

// ListByDate implements task.Repository.
func (m *taskRepository) ListByDate(ctx context.Context, date string, slot *string) ([]task.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []task.Entry
	for _, e := range m.entries {
		if e.Date != date {
			continue
		}
		if slot != nil && e.Slot != *slot {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Slot < out[j].Slot
	})
	return out, nil
}

// ListOpenBySlot implements task.Repository.
func (m *taskRepository) ListOpenBySlot(ctx context.Context, date, slot string, statuses []task.EntryStatus) ([]task.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	allowed := make(map[task.EntryStatus]struct{}, len(statuses))
	for _, s := range statuses {
		allowed[s] = struct{}{}
	}

	var out []task.Entry
	for _, e := range m.entries {
		if e.Date != date || e.Slot != slot {
			continue
		}
		if _, ok := allowed[e.Status]; !ok {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Transition implements task.Repository. The write happens only if the
// entry's current status is one of from; a losing writer gets
// committed=false, never an overwrite.
func (m *taskRepository) Transition(ctx context.Context, id string, from []task.EntryStatus, to task.EntryStatus, at time.Time, description *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, ok := m.byID[id]
	if !ok {
		return false, task.ErrEntryNotFound
	}
	e := m.entries[key]

	matched := false
	for _, s := range from {
		if e.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}

	e.Status = to
	e.UpdatedAt = at
	switch to {
	case task.StatusSubmitted:
		ts := at
		e.SubmittedAt = &ts
	case task.StatusWarningSent:
		ts := at
		e.WarnedAt = &ts
	case task.StatusEscalated:
		ts := at
		e.EscalatedAt = &ts
	}
	if description != nil {
		e.Description = *description
	}

	m.entries[key] = e
	return true, nil
}
