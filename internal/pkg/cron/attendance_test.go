package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manas-swain-001/cms/internal/domain/attendance"
	"github.com/manas-swain-001/cms/internal/pkg/clock"
	"github.com/manas-swain-001/cms/internal/repository/memory"
)

const standardEndMinute = 17*60 + 30

func staleRecord(t *testing.T, repo attendance.Repository, userID, date, checkInClock string) attendance.Record {
	t.Helper()
	checkIn, err := time.Parse("2006-01-02 15:04", date+" "+checkInClock)
	require.NoError(t, err)

	record, err := repo.Create(context.Background(), attendance.Record{
		ID:           "rec-" + userID + "-" + date,
		UserID:       userID,
		Date:         date,
		WorkLocation: attendance.LocationOffice,
		Status:       attendance.StatusPartial,
		Sessions: []attendance.Session{{
			ID:        "sess-1",
			CheckInAt: checkIn,
		}},
		CreatedAt: checkIn,
		UpdatedAt: checkIn,
	})
	require.NoError(t, err)
	return record
}

func TestAutoCloseStaleRecords(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAttendanceRepository()
	clk := clock.NewFakeAt("2025-03-11", "01:00")
	jobs := NewAttendanceJobs(repo, nil, clk, standardEndMinute, 8.0)

	staleRecord(t, repo, "user-1", "2025-03-10", "09:00")

	require.NoError(t, jobs.AutoCloseStaleRecords(ctx))

	record, err := repo.GetByUserAndDate(ctx, "user-1", "2025-03-10")
	require.NoError(t, err)
	assert.True(t, record.Frozen)
	require.NotNil(t, record.Sessions[0].CheckOutAt)
	assert.Equal(t, "2025-03-10 17:30", record.Sessions[0].CheckOutAt.Format("2006-01-02 15:04"))
	assert.InDelta(t, 8.5, record.Summary.TotalHours, 0.001)
	assert.Equal(t, attendance.StatusPresent, record.Status)
}

func TestAutoCloseSkipsTodayAndClosed(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAttendanceRepository()
	clk := clock.NewFakeAt("2025-03-10", "12:00")
	jobs := NewAttendanceJobs(repo, nil, clk, standardEndMinute, 8.0)

	// Open session from today must survive the pass.
	staleRecord(t, repo, "user-1", "2025-03-10", "09:00")

	require.NoError(t, jobs.AutoCloseStaleRecords(ctx))

	record, err := repo.GetByUserAndDate(ctx, "user-1", "2025-03-10")
	require.NoError(t, err)
	assert.False(t, record.Frozen)
	assert.Nil(t, record.Sessions[0].CheckOutAt)
}

func TestAutoCloseEndsOngoingBreak(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAttendanceRepository()
	clk := clock.NewFakeAt("2025-03-11", "01:00")
	jobs := NewAttendanceJobs(repo, nil, clk, standardEndMinute, 8.0)

	record := staleRecord(t, repo, "user-1", "2025-03-10", "09:00")
	breakStart, err := time.Parse("2006-01-02 15:04", "2025-03-10 12:30")
	require.NoError(t, err)
	record.Breaks = append(record.Breaks, attendance.Break{
		ID:      "break-1",
		Type:    "lunch",
		StartAt: breakStart,
	})
	require.NoError(t, repo.Update(ctx, record))

	require.NoError(t, jobs.AutoCloseStaleRecords(ctx))

	closed, err := repo.GetByUserAndDate(ctx, "user-1", "2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, closed.Breaks[0].EndAt)
	assert.Equal(t, 300, closed.Breaks[0].DurationMinutes)
	assert.Equal(t, attendance.StatusPartial, closed.Status)
}
