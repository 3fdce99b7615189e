package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manas-swain-001/cms/internal/domain/task"
	"github.com/manas-swain-001/cms/internal/pkg/clock"
	"github.com/manas-swain-001/cms/internal/repository/memory"
	tasksvc "github.com/manas-swain-001/cms/internal/service/task"
)

const testDay = "2025-03-10"

// remindRecorder counts reminder fan-outs per slot.
type remindRecorder struct {
	task.Service
	calls map[string]int
}

func (r *remindRecorder) RemindSlot(ctx context.Context, slot string, now time.Time) (int, error) {
	r.calls[slot]++
	return r.Service.RemindSlot(ctx, slot, now)
}

// sweepRecorder counts sweep passes per slot.
type sweepRecorder struct {
	task.Service
	calls map[string]int
}

func (r *sweepRecorder) Sweep(ctx context.Context, slot string, now time.Time) (task.SweepResult, error) {
	r.calls[slot]++
	return r.Service.Sweep(ctx, slot, now)
}

func newCheckpointFixture(t *testing.T, hhmm string) (task.Service, *clock.Fake) {
	t.Helper()
	clk := clock.NewFakeAt(testDay, hhmm)
	table := task.MustSlotTable(task.DefaultSlots, task.DefaultWindowLeadMinutes)
	svc := tasksvc.NewTaskService(memory.NewTaskRepository(), nil, nil, table, clk, 10, 20)
	return svc, clk
}

func TestSweepOverdueJob(t *testing.T) {
	ctx := context.Background()
	svc, clk := newCheckpointFixture(t, "09:05")
	require.NoError(t, svc.SeedDay(ctx, "user-1", testDay, clk.Now()))

	jobs := NewCheckpointJobs(svc, clk, 10, 20)

	// Nothing is overdue yet.
	clk.SetClock("10:35")
	require.NoError(t, jobs.SweepOverdue(ctx))
	ledger, err := svc.GetMyLedger(ctx, "user-1", testDay)
	require.NoError(t, err)
	assert.Equal(t, string(task.StatusPending), ledger.Entries[0].Status)

	clk.SetClock("10:41")
	require.NoError(t, jobs.SweepOverdue(ctx))
	ledger, err = svc.GetMyLedger(ctx, "user-1", testDay)
	require.NoError(t, err)
	assert.Equal(t, string(task.StatusWarningSent), ledger.Entries[0].Status)

	clk.SetClock("10:52")
	require.NoError(t, jobs.SweepOverdue(ctx))
	ledger, err = svc.GetMyLedger(ctx, "user-1", testDay)
	require.NoError(t, err)
	assert.Equal(t, string(task.StatusEscalated), ledger.Entries[0].Status)

	// Later slots stay untouched.
	assert.Equal(t, string(task.StatusPending), ledger.Entries[1].Status)
}

func TestSendRemindersJob(t *testing.T) {
	ctx := context.Background()
	svc, clk := newCheckpointFixture(t, "09:05")
	require.NoError(t, svc.SeedDay(ctx, "user-1", testDay, clk.Now()))

	recorder := &remindRecorder{Service: svc, calls: make(map[string]int)}
	jobs := NewCheckpointJobs(recorder, clk, 10, 20)

	// Window for 10:30 not open yet.
	clk.SetClock("09:20")
	require.NoError(t, jobs.SendReminders(ctx))
	assert.Equal(t, 0, recorder.calls["10:30"])

	// Window opens at 09:30; the reminder fires once.
	clk.SetClock("09:30")
	require.NoError(t, jobs.SendReminders(ctx))
	assert.Equal(t, 1, recorder.calls["10:30"])

	clk.SetClock("09:45")
	require.NoError(t, jobs.SendReminders(ctx))
	assert.Equal(t, 1, recorder.calls["10:30"])

	// Next slot's window gets its own reminder.
	clk.SetClock("11:00")
	require.NoError(t, jobs.SendReminders(ctx))
	assert.Equal(t, 1, recorder.calls["12:00"])

	// A new day resets the fired set.
	clk.Set(clk.Now().Add(24 * time.Hour))
	clk.SetClock("09:30")
	require.NoError(t, jobs.SendReminders(ctx))
	assert.Equal(t, 2, recorder.calls["10:30"])
}

func TestTriggerDeadlinesJob(t *testing.T) {
	ctx := context.Background()
	svc, clk := newCheckpointFixture(t, "09:05")
	require.NoError(t, svc.SeedDay(ctx, "user-1", testDay, clk.Now()))

	recorder := &sweepRecorder{Service: svc, calls: make(map[string]int)}
	jobs := NewCheckpointJobs(recorder, clk, 10, 20)

	// Before deadline+warn nothing fires.
	clk.SetClock("10:39")
	require.NoError(t, jobs.TriggerDeadlines(ctx))
	assert.Equal(t, 0, recorder.calls["10:30"])

	// The warn trigger fires once at deadline+10.
	clk.SetClock("10:40")
	require.NoError(t, jobs.TriggerDeadlines(ctx))
	assert.Equal(t, 1, recorder.calls["10:30"])
	ledger, err := svc.GetMyLedger(ctx, "user-1", testDay)
	require.NoError(t, err)
	assert.Equal(t, string(task.StatusWarningSent), ledger.Entries[0].Status)

	// Re-running the same minute does not fire again.
	require.NoError(t, jobs.TriggerDeadlines(ctx))
	assert.Equal(t, 1, recorder.calls["10:30"])

	// The escalate trigger fires once at deadline+20.
	clk.SetClock("10:50")
	require.NoError(t, jobs.TriggerDeadlines(ctx))
	assert.Equal(t, 2, recorder.calls["10:30"])
	ledger, err = svc.GetMyLedger(ctx, "user-1", testDay)
	require.NoError(t, err)
	assert.Equal(t, string(task.StatusEscalated), ledger.Entries[0].Status)

	// A run late in the day fires the pending later slots but never the
	// already-fired ones.
	clk.SetClock("18:00")
	require.NoError(t, jobs.TriggerDeadlines(ctx))
	assert.Equal(t, 2, recorder.calls["10:30"])
	assert.Equal(t, 2, recorder.calls["17:30"])

	// A new day resets the fired set.
	clk.Set(clk.Now().Add(24 * time.Hour))
	require.NoError(t, jobs.TriggerDeadlines(ctx))
	assert.Equal(t, 4, recorder.calls["10:30"])
}

// The fixed triggers and the continuous sweep land the ledger in the
// same state for the same sequence of instants.
func TestTriggerAndSweepConverge(t *testing.T) {
	ctx := context.Background()

	byTriggers, clkA := newCheckpointFixture(t, "09:05")
	require.NoError(t, byTriggers.SeedDay(ctx, "user-1", testDay, clkA.Now()))
	bySweep, clkB := newCheckpointFixture(t, "09:05")
	require.NoError(t, bySweep.SeedDay(ctx, "user-1", testDay, clkB.Now()))

	triggerJobs := NewCheckpointJobs(byTriggers, clkA, 10, 20)
	sweepJobs := NewCheckpointJobs(bySweep, clkB, 10, 20)

	for _, hhmm := range []string{"10:35", "10:41", "10:52", "12:11"} {
		clkA.SetClock(hhmm)
		clkB.SetClock(hhmm)
		require.NoError(t, triggerJobs.TriggerDeadlines(ctx))
		require.NoError(t, sweepJobs.SweepOverdue(ctx))
	}

	fromTriggers, err := byTriggers.GetMyLedger(ctx, "user-1", testDay)
	require.NoError(t, err)
	fromSweep, err := bySweep.GetMyLedger(ctx, "user-1", testDay)
	require.NoError(t, err)

	require.Len(t, fromTriggers.Entries, len(fromSweep.Entries))
	for i := range fromTriggers.Entries {
		assert.Equal(t, fromSweep.Entries[i].Slot, fromTriggers.Entries[i].Slot)
		assert.Equal(t, fromSweep.Entries[i].Status, fromTriggers.Entries[i].Status)
	}
	// 10:30 escalated, 12:00 warned, the rest pending.
	assert.Equal(t, string(task.StatusEscalated), fromTriggers.Entries[0].Status)
	assert.Equal(t, string(task.StatusWarningSent), fromTriggers.Entries[1].Status)
	assert.Equal(t, string(task.StatusPending), fromTriggers.Entries[2].Status)
}

func TestSchedulerRunOnce(t *testing.T) {
	ctx := context.Background()
	svc, clk := newCheckpointFixture(t, "09:05")
	require.NoError(t, svc.SeedDay(ctx, "user-1", testDay, clk.Now()))

	scheduler := NewScheduler(clk)
	jobs := NewCheckpointJobs(svc, clk, 10, 20)
	jobs.RegisterJobs(scheduler, time.Minute)

	clk.SetClock("10:41")
	scheduler.RunOnce(ctx)

	ledger, err := svc.GetMyLedger(ctx, "user-1", testDay)
	require.NoError(t, err)
	assert.Equal(t, string(task.StatusWarningSent), ledger.Entries[0].Status)
}

// Tick timing follows the injected clock, not the wall.
func TestSchedulerTick(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFakeAt(testDay, "09:00")
	scheduler := NewScheduler(clk)

	runs := 0
	scheduler.AddJob("counter", time.Minute, func(context.Context) error {
		runs++
		return nil
	})

	// First tick always runs the job.
	scheduler.Tick(ctx)
	assert.Equal(t, 1, runs)

	// Clock has not advanced: not due.
	scheduler.Tick(ctx)
	assert.Equal(t, 1, runs)

	// Thirty simulated seconds: still not due.
	clk.Set(clk.Now().Add(30 * time.Second))
	scheduler.Tick(ctx)
	assert.Equal(t, 1, runs)

	// Past the interval: due again.
	clk.Set(clk.Now().Add(31 * time.Second))
	scheduler.Tick(ctx)
	assert.Equal(t, 2, runs)
}
