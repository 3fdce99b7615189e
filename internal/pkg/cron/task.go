package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/manas-swain-001/cms/internal/domain/task"
	"github.com/manas-swain-001/cms/internal/pkg/clock"
)

// CheckpointJobs drives the compliance ledger forward on a timer. Two
// cadences act on overdue entries: fixed per-slot triggers at the warn
// and escalate offsets past each deadline, and a continuous sweep that
// catches anything the triggers missed (downtime, config changes).
// Transitions are compare-then-set in the store, so the overlap is
// harmless. The reminder fires when a slot's acceptance window opens.
type CheckpointJobs struct {
	taskSvc         task.Service
	clk             clock.Clock
	warnMinutes     int
	escalateMinutes int

	mu           sync.Mutex
	day          string
	remindedSlot map[string]struct{}
	firedTrigger map[string]struct{}
}

func NewCheckpointJobs(taskSvc task.Service, clk clock.Clock, warnMinutes, escalateMinutes int) *CheckpointJobs {
	if warnMinutes <= 0 {
		warnMinutes = 10
	}
	if escalateMinutes <= warnMinutes {
		escalateMinutes = warnMinutes + 10
	}
	return &CheckpointJobs{
		taskSvc:         taskSvc,
		clk:             clk,
		warnMinutes:     warnMinutes,
		escalateMinutes: escalateMinutes,
		remindedSlot:    make(map[string]struct{}),
		firedTrigger:    make(map[string]struct{}),
	}
}

func (j *CheckpointJobs) RegisterJobs(scheduler *Scheduler, sweepInterval time.Duration) {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	scheduler.AddJob("checkpoint_deadline_triggers", time.Minute, j.TriggerDeadlines)
	scheduler.AddJob("checkpoint_sweep", sweepInterval, j.SweepOverdue)
	scheduler.AddJob("checkpoint_reminders", time.Minute, j.SendReminders)
}

// rollDay resets the fire-once sets when the civil day changes. The
// caller must not hold mu.
func (j *CheckpointJobs) rollDay(day string) {
	j.mu.Lock()
	if j.day != day {
		j.day = day
		j.remindedSlot = make(map[string]struct{})
		j.firedTrigger = make(map[string]struct{})
	}
	j.mu.Unlock()
}

// fireOnce marks key in the set and reports whether this call was the
// first today. Takes a pointer so the set is read under mu, after any
// concurrent rollDay swap.
func (j *CheckpointJobs) fireOnce(set *map[string]struct{}, key string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, done := (*set)[key]; done {
		return false
	}
	(*set)[key] = struct{}{}
	return true
}

// TriggerDeadlines fires a targeted sweep for each slot exactly once at
// the warn offset and once at the escalate offset past its deadline.
func (j *CheckpointJobs) TriggerDeadlines(ctx context.Context) error {
	now := j.clk.Now()
	day := clock.DayOf(now)
	minute := clock.MinutesOfDay(now)
	j.rollDay(day)

	for _, w := range j.taskSvc.Table().Windows() {
		for _, offset := range []int{j.warnMinutes, j.escalateMinutes} {
			if minute < w.Deadline+offset {
				continue
			}
			if !j.fireOnce(&j.firedTrigger, fmt.Sprintf("%s+%d", w.Slot, offset)) {
				continue
			}

			result, err := j.taskSvc.Sweep(ctx, w.Slot, now)
			if err != nil {
				slog.Error("Cron: checkpoint deadline trigger failed", "slot", w.Slot, "offset", offset, "error", err)
				continue
			}
			if result.Warned > 0 || result.Escalated > 0 {
				slog.Info("Cron: checkpoint deadline trigger transitioned entries",
					"slot", w.Slot, "offset", offset, "warned", result.Warned, "escalated", result.Escalated)
			}
		}
	}
	return nil
}

// SweepOverdue runs one escalation pass over every slot. Safe to repeat
// at any frequency alongside the deadline triggers.
func (j *CheckpointJobs) SweepOverdue(ctx context.Context) error {
	now := j.clk.Now()

	for _, slot := range j.taskSvc.Table().Slots() {
		result, err := j.taskSvc.Sweep(ctx, slot, now)
		if err != nil {
			slog.Error("Cron: checkpoint sweep failed", "slot", slot, "error", err)
			continue
		}
		if result.Warned > 0 || result.Escalated > 0 {
			slog.Info("Cron: checkpoint sweep transitioned entries",
				"slot", slot, "warned", result.Warned, "escalated", result.Escalated)
		}
	}
	return nil
}

// SendReminders fires each slot's reminder once per day, at or after
// the minute its acceptance window opens.
func (j *CheckpointJobs) SendReminders(ctx context.Context) error {
	now := j.clk.Now()
	day := clock.DayOf(now)
	minute := clock.MinutesOfDay(now)
	j.rollDay(day)

	for _, w := range j.taskSvc.Table().Windows() {
		if minute < w.OpenMinute || minute > w.Deadline {
			continue
		}
		if !j.fireOnce(&j.remindedSlot, w.Slot) {
			continue
		}

		count, err := j.taskSvc.RemindSlot(ctx, w.Slot, now)
		if err != nil {
			slog.Error("Cron: checkpoint reminder failed", "slot", w.Slot, "error", err)
			continue
		}
		slog.Info("Cron: checkpoint reminders sent", "slot", w.Slot, "count", count)
	}
	return nil
}
