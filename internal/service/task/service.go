package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/manas-swain-001/cms/internal/domain/notification"
	"github.com/manas-swain-001/cms/internal/domain/task"
	"github.com/manas-swain-001/cms/internal/domain/user"
	"github.com/manas-swain-001/cms/internal/pkg/clock"
)

// Thresholds are minutes past a slot's deadline.
const (
	DefaultWarnMinutes     = 10
	DefaultEscalateMinutes = 20
)

type TaskServiceImpl struct {
	task.Repository
	userRepo        user.Repository
	notificationSvc notification.Service
	table           *task.SlotTable
	clk             clock.Clock
	warnMinutes     int
	escalateMinutes int
}

func NewTaskService(
	taskRepo task.Repository,
	userRepo user.Repository,
	notificationSvc notification.Service,
	table *task.SlotTable,
	clk clock.Clock,
	warnMinutes int,
	escalateMinutes int,
) task.Service {
	if warnMinutes <= 0 {
		warnMinutes = DefaultWarnMinutes
	}
	if escalateMinutes <= warnMinutes {
		escalateMinutes = DefaultEscalateMinutes
	}
	return &TaskServiceImpl{
		Repository:      taskRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		table:           table,
		clk:             clk,
		warnMinutes:     warnMinutes,
		escalateMinutes: escalateMinutes,
	}
}

// Table implements task.Service.
func (s *TaskServiceImpl) Table() *task.SlotTable {
	return s.table
}

// SeedDay implements task.Service. Only slots whose deadline is still
// ahead of now get an entry; the repository skips already-seeded slots,
// so calling this twice never duplicates.
func (s *TaskServiceImpl) SeedDay(ctx context.Context, userID string, date string, now time.Time) error {
	nowMinute := clock.MinutesOfDay(now)

	var entries []task.Entry
	for _, w := range s.table.Windows() {
		if w.Deadline <= nowMinute {
			continue
		}
		entries = append(entries, task.Entry{
			ID:        uuid.New().String(),
			UserID:    userID,
			Date:      date,
			Slot:      w.Slot,
			Status:    task.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if len(entries) == 0 {
		return nil
	}

	if err := s.Repository.CreateEntries(ctx, entries); err != nil {
		return fmt.Errorf("failed to seed checkpoint entries: %w", err)
	}
	return nil
}

// SubmitUpdate implements task.Service.
func (s *TaskServiceImpl) SubmitUpdate(ctx context.Context, userID string, req task.SubmitUpdateRequest) (task.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return task.EntryResponse{}, err
	}

	now := s.clk.Now()
	slot, ok := s.table.Resolve(clock.MinutesOfDay(now))
	if !ok {
		return task.EntryResponse{}, task.ErrOutOfWindow
	}

	date := clock.DayOf(now)
	entry, err := s.Repository.GetEntry(ctx, userID, date, slot)
	if err != nil {
		return task.EntryResponse{}, err
	}

	if conflictErr := terminalConflict(entry.Status); conflictErr != nil {
		return task.EntryResponse{}, conflictErr
	}

	// Compare-then-set: only a currently non-terminal entry may move to
	// submitted. If a concurrent sweep won, the re-read tells us what to
	// report; the stored terminal state is never reverted.
	committed, err := s.Repository.Transition(ctx, entry.ID,
		[]task.EntryStatus{task.StatusPending, task.StatusWarningSent},
		task.StatusSubmitted, now, &req.Description)
	if err != nil {
		return task.EntryResponse{}, fmt.Errorf("failed to submit checkpoint update: %w", err)
	}
	if !committed {
		current, err := s.Repository.GetEntry(ctx, userID, date, slot)
		if err != nil {
			return task.EntryResponse{}, err
		}
		if conflictErr := terminalConflict(current.Status); conflictErr != nil {
			return task.EntryResponse{}, conflictErr
		}
		return task.EntryResponse{}, task.ErrAlreadySubmitted
	}

	updated, err := s.Repository.GetEntry(ctx, userID, date, slot)
	if err != nil {
		return task.EntryResponse{}, err
	}
	return mapEntryToResponse(updated), nil
}

func terminalConflict(status task.EntryStatus) error {
	switch status {
	case task.StatusSubmitted:
		return task.ErrAlreadySubmitted
	case task.StatusEscalated:
		return task.ErrAlreadyEscalated
	}
	return nil
}

// Sweep implements task.Service. Idempotent: running it twice at the
// same instant transitions nothing the second time. A failure on one
// entry is logged and never aborts the rest of the pass.
func (s *TaskServiceImpl) Sweep(ctx context.Context, slot string, now time.Time) (task.SweepResult, error) {
	deadline, ok := s.table.Deadline(slot)
	if !ok {
		return task.SweepResult{}, fmt.Errorf("unknown checkpoint slot %q", slot)
	}

	result := task.SweepResult{Slot: slot}
	elapsed := clock.MinutesOfDay(now) - deadline
	if elapsed < s.warnMinutes {
		return result, nil
	}

	date := clock.DayOf(now)
	open, err := s.Repository.ListOpenBySlot(ctx, date, slot,
		[]task.EntryStatus{task.StatusPending, task.StatusWarningSent})
	if err != nil {
		return result, fmt.Errorf("failed to list open entries for slot %s: %w", slot, err)
	}

	for _, entry := range open {
		result.Scanned++

		switch {
		case elapsed >= s.escalateMinutes:
			committed, err := s.Repository.Transition(ctx, entry.ID,
				[]task.EntryStatus{task.StatusPending, task.StatusWarningSent},
				task.StatusEscalated, now, nil)
			if err != nil {
				slog.Error("Sweep: failed to escalate entry",
					"entry_id", entry.ID, "user_id", entry.UserID, "slot", slot, "error", err)
				continue
			}
			if committed {
				result.Escalated++
				s.notifyEscalated(ctx, entry)
			}

		case entry.Status == task.StatusPending:
			committed, err := s.Repository.Transition(ctx, entry.ID,
				[]task.EntryStatus{task.StatusPending},
				task.StatusWarningSent, now, nil)
			if err != nil {
				slog.Error("Sweep: failed to warn entry",
					"entry_id", entry.ID, "user_id", entry.UserID, "slot", slot, "error", err)
				continue
			}
			if committed {
				result.Warned++
				s.notifyWarned(ctx, entry)
			}
		}
	}

	return result, nil
}

// RemindSlot implements task.Service.
func (s *TaskServiceImpl) RemindSlot(ctx context.Context, slot string, now time.Time) (int, error) {
	if _, ok := s.table.Deadline(slot); !ok {
		return 0, fmt.Errorf("unknown checkpoint slot %q", slot)
	}

	date := clock.DayOf(now)
	pending, err := s.Repository.ListOpenBySlot(ctx, date, slot, []task.EntryStatus{task.StatusPending})
	if err != nil {
		return 0, fmt.Errorf("failed to list pending entries for slot %s: %w", slot, err)
	}

	if s.notificationSvc == nil {
		return len(pending), nil
	}

	for _, entry := range pending {
		err := s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: entry.UserID,
			Type:        notification.TypeCheckpointReminder,
			Title:       "Status Update Due",
			Message:     fmt.Sprintf("Your %s status update window is open", slot),
			Data: map[string]interface{}{
				"slot": slot,
				"date": date,
			},
		})
		if err != nil {
			slog.Error("RemindSlot: failed to queue reminder",
				"user_id", entry.UserID, "slot", slot, "error", err)
		}
	}
	return len(pending), nil
}

// GetMyLedger implements task.Service. An empty date means today.
func (s *TaskServiceImpl) GetMyLedger(ctx context.Context, userID string, date string) (task.LedgerResponse, error) {
	if date == "" {
		date = s.clk.Today()
	}

	entries, err := s.Repository.ListByUserAndDate(ctx, userID, date)
	if err != nil {
		return task.LedgerResponse{}, fmt.Errorf("failed to get ledger: %w", err)
	}
	if len(entries) == 0 {
		return task.LedgerResponse{}, task.ErrLedgerNotFound
	}

	resp := task.LedgerResponse{UserID: userID, Date: date}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, mapEntryToResponse(e))
	}
	return resp, nil
}

// ListLedgers implements task.Service.
func (s *TaskServiceImpl) ListLedgers(ctx context.Context, filter task.LedgerFilter) ([]task.LedgerResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	date := filter.Date
	if date == "" {
		date = s.clk.Today()
	}

	entries, err := s.Repository.ListByDate(ctx, date, filter.Slot)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}

	byUser := make(map[string]*task.LedgerResponse)
	var order []string
	for _, e := range entries {
		ledger, ok := byUser[e.UserID]
		if !ok {
			ledger = &task.LedgerResponse{UserID: e.UserID, Date: date}
			byUser[e.UserID] = ledger
			order = append(order, e.UserID)
		}
		ledger.Entries = append(ledger.Entries, mapEntryToResponse(e))
	}

	out := make([]task.LedgerResponse, 0, len(order))
	for _, userID := range order {
		out = append(out, *byUser[userID])
	}
	return out, nil
}

func (s *TaskServiceImpl) notifyWarned(ctx context.Context, entry task.Entry) {
	if s.notificationSvc == nil {
		return
	}
	err := s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: entry.UserID,
		Type:        notification.TypeCheckpointWarning,
		Title:       "Status Update Overdue",
		Message:     fmt.Sprintf("Your %s status update is overdue, submit it now to avoid escalation", entry.Slot),
		Data: map[string]interface{}{
			"entry_id": entry.ID,
			"slot":     entry.Slot,
			"date":     entry.Date,
		},
	})
	if err != nil {
		slog.Error("Sweep: failed to queue warning notification",
			"entry_id", entry.ID, "error", err)
	}
}

func (s *TaskServiceImpl) notifyEscalated(ctx context.Context, entry task.Entry) {
	if s.notificationSvc == nil {
		return
	}

	data := map[string]interface{}{
		"entry_id": entry.ID,
		"user_id":  entry.UserID,
		"slot":     entry.Slot,
		"date":     entry.Date,
	}

	err := s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: entry.UserID,
		Type:        notification.TypeCheckpointEscalated,
		Title:       "Checkpoint Escalated",
		Message:     fmt.Sprintf("Your %s status update was missed and has been escalated", entry.Slot),
		Data:        data,
	})
	if err != nil {
		slog.Error("Sweep: failed to queue escalation notification",
			"entry_id", entry.ID, "error", err)
	}

	if s.userRepo == nil {
		return
	}
	managers, err := s.userRepo.ListManagers(ctx)
	if err != nil {
		slog.Error("Sweep: failed to list managers for escalation",
			"entry_id", entry.ID, "error", err)
		return
	}
	for _, manager := range managers {
		err := s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: manager.ID,
			SenderID:    &entry.UserID,
			Type:        notification.TypeCheckpointEscalated,
			Title:       "Employee Checkpoint Escalated",
			Message:     fmt.Sprintf("The %s status update on %s was missed", entry.Slot, entry.Date),
			Data:        data,
		})
		if err != nil {
			slog.Error("Sweep: failed to queue manager escalation notification",
				"entry_id", entry.ID, "manager_id", manager.ID, "error", err)
		}
	}
}

func mapEntryToResponse(e task.Entry) task.EntryResponse {
	return task.EntryResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		Date:        e.Date,
		Slot:        e.Slot,
		Status:      string(e.Status),
		Description: e.Description,
		SubmittedAt: timePtrToString(e.SubmittedAt),
		WarnedAt:    timePtrToString(e.WarnedAt),
		EscalatedAt: timePtrToString(e.EscalatedAt),
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}
