package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/manas-swain-001/cms/internal/domain/attendance"
	"github.com/manas-swain-001/cms/internal/domain/notification"
	"github.com/manas-swain-001/cms/internal/pkg/clock"
)

// AttendanceJobs closes out records whose owner forgot to punch out.
type AttendanceJobs struct {
	attendanceRepo  attendance.Repository
	notificationSvc notification.Service
	clk             clock.Clock
	standardEnd     int // minute of day
	standardHours   float64
}

func NewAttendanceJobs(
	attendanceRepo attendance.Repository,
	notificationSvc notification.Service,
	clk clock.Clock,
	standardEnd int,
	standardHours float64,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo:  attendanceRepo,
		notificationSvc: notificationSvc,
		clk:             clk,
		standardEnd:     standardEnd,
		standardHours:   standardHours,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_attendance", 1*time.Hour, j.AutoCloseStaleRecords)
}

// AutoCloseStaleRecords finds records from past days that still hold an
// open session, closes the session at that day's standard end, and
// freezes the record. One bad record never stops the rest.
func (j *AttendanceJobs) AutoCloseStaleRecords(ctx context.Context) error {
	today := j.clk.Today()

	stale, err := j.attendanceRepo.ListStaleOpen(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to list stale open records: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	slog.Info("Cron: Auto-closing stale attendance records", "count", len(stale))

	closedCount := 0
	for _, record := range stale {
		if err := j.closeRecord(ctx, record); err != nil {
			slog.Error("Cron: Failed to auto-close record",
				"record_id", record.ID, "user_id", record.UserID, "date", record.Date, "error", err)
			continue
		}
		closedCount++
	}

	slog.Info("Cron: Auto-close complete", "closed", closedCount, "total", len(stale))
	return nil
}

func (j *AttendanceJobs) closeRecord(ctx context.Context, record attendance.Record) error {
	closeAt, err := clock.At(record.Date, j.standardEnd, j.clk.Location())
	if err != nil {
		return fmt.Errorf("failed to compute close time: %w", err)
	}

	open := record.OpenSession()
	if open == nil {
		return nil
	}

	// A session checked in after the standard end closes at its own
	// check-in; a closed-out interval never runs backwards.
	if closeAt.Before(open.CheckInAt) {
		closeAt = open.CheckInAt
	}

	if b := record.OpenBreak(); b != nil {
		endAt := closeAt
		if endAt.Before(b.StartAt) {
			endAt = b.StartAt
		}
		b.EndAt = &endAt
		b.DurationMinutes = int(endAt.Sub(b.StartAt).Minutes())
	}

	open.CheckOutAt = &closeAt

	record.Summary = attendance.ComputeWorkSummary(record.Sessions, record.Breaks, j.standardHours)
	if record.Summary.EffectiveHours >= j.standardHours {
		record.Status = attendance.StatusPresent
	} else {
		record.Status = attendance.StatusPartial
	}
	record.Frozen = true
	record.UpdatedAt = j.clk.Now()

	if err := j.attendanceRepo.Update(ctx, record); err != nil {
		return fmt.Errorf("failed to persist auto-closed record: %w", err)
	}

	if j.notificationSvc != nil {
		err := j.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: record.UserID,
			Type:        notification.TypeAttendanceAutoClosed,
			Title:       "Attendance Auto-Closed",
			Message:     fmt.Sprintf("Your open session on %s was closed automatically", record.Date),
			Data: map[string]interface{}{
				"date":      record.Date,
				"closed_at": closeAt.Format("2006-01-02 15:04:05"),
			},
		})
		if err != nil {
			slog.Error("Cron: failed to queue auto-close notification",
				"record_id", record.ID, "error", err)
		}
	}
	return nil
}
