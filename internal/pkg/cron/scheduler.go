package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/manas-swain-001/cms/internal/pkg/clock"
)

// schedulerResolution is how often the run loop checks for due jobs.
const schedulerResolution = time.Second

// Job is a scheduled job. lastRun is measured on the scheduler's clock,
// not wall time; the zero value makes a job due on the first tick.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error

	lastRun time.Time
}

// Scheduler runs registered jobs on their intervals. Due-ness is decided
// against the injected Clock, so a test can drive the whole schedule by
// advancing a fake clock and calling Tick.
type Scheduler struct {
	clk    clock.Clock
	jobs   []*Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a scheduler whose job timing follows clk.
func NewScheduler(clk clock.Clock) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		clk:    clk,
		jobs:   make([]*Job, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, &Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Start begins the run loop in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	jobCount := len(s.jobs)
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()

	slog.Info("Cron scheduler started", "job_count", jobCount)
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(schedulerResolution)
	defer ticker.Stop()

	// Run due jobs immediately on start.
	s.Tick(s.ctx)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron run loop stopping")
			return
		case <-ticker.C:
			s.Tick(s.ctx)
		}
	}
}

// Tick runs every job whose interval has elapsed on the clock. A job
// that has never run is due immediately.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clk.Now()

	s.mu.Lock()
	due := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if job.lastRun.IsZero() || now.Sub(job.lastRun) >= job.Interval {
			job.lastRun = now
			due = append(due, job)
		}
	}
	s.mu.Unlock()

	for _, job := range due {
		s.executeJob(ctx, job)
	}
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(ctx context.Context, job *Job) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}

// RunOnce runs all jobs once regardless of their intervals (useful for testing)
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, job := range jobs {
		if err := job.Fn(ctx); err != nil {
			slog.Error("Cron job failed", "name", job.Name, "error", err)
		}
	}
}
