package attendance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manas-swain-001/cms/internal/config"
	"github.com/manas-swain-001/cms/internal/domain/attendance"
	domaintask "github.com/manas-swain-001/cms/internal/domain/task"
	"github.com/manas-swain-001/cms/internal/pkg/clock"
	"github.com/manas-swain-001/cms/internal/repository/memory"
	tasksvc "github.com/manas-swain-001/cms/internal/service/task"
)

const testDay = "2025-03-10"

var (
	officeLat = -6.2088
	officeLng = 106.8456
)

func testWorkday() config.WorkdayConfig {
	return config.WorkdayConfig{
		Timezone:      "UTC",
		StandardStart: "09:00",
		StandardEnd:   "17:30",
		StandardHours: 8.0,
	}
}

func testOffice() config.OfficeConfig {
	return config.OfficeConfig{
		Latitude:     officeLat,
		Longitude:    officeLng,
		RadiusMeters: 1000,
	}
}

func newTestService(t *testing.T, hhmm string) (attendance.Service, domaintask.Service, *clock.Fake) {
	t.Helper()
	clk := clock.NewFakeAt(testDay, hhmm)
	table := domaintask.MustSlotTable(domaintask.DefaultSlots, domaintask.DefaultWindowLeadMinutes)
	taskSvc := tasksvc.NewTaskService(memory.NewTaskRepository(), nil, nil, table, clk, 10, 20)
	svc := NewAttendanceService(memory.NewAttendanceRepository(), taskSvc, nil, clk, testWorkday(), testOffice())
	return svc, taskSvc, clk
}

func officePunch() attendance.PunchInRequest {
	return attendance.PunchInRequest{Latitude: officeLat, Longitude: officeLng}
}

func TestPunchIn(t *testing.T) {
	ctx := context.Background()

	t.Run("first punch creates record and seeds ledger", func(t *testing.T) {
		svc, taskSvc, _ := newTestService(t, "09:05")

		record, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)
		assert.Equal(t, attendance.LocationOffice, record.WorkLocation)
		assert.Equal(t, attendance.StatusPartial, record.Status)
		require.Len(t, record.Sessions, 1)
		assert.True(t, record.Sessions[0].IsLate)
		assert.Equal(t, 5, record.Sessions[0].LateMinutes)

		ledger, err := taskSvc.GetMyLedger(ctx, "user-1", testDay)
		require.NoError(t, err)
		assert.Len(t, ledger.Entries, 5)
	})

	t.Run("punch outside the geofence classifies home", func(t *testing.T) {
		svc, _, _ := newTestService(t, "09:05")

		record, err := svc.PunchIn(ctx, "user-1", attendance.PunchInRequest{
			Latitude:  officeLat + 0.1, // ~11 km away
			Longitude: officeLng,
		})
		require.NoError(t, err)
		assert.Equal(t, attendance.LocationHome, record.WorkLocation)
	})

	t.Run("on-time punch is not late", func(t *testing.T) {
		svc, _, _ := newTestService(t, "09:00")

		record, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)
		assert.False(t, record.Sessions[0].IsLate)
		assert.Equal(t, 0, record.Sessions[0].LateMinutes)
	})

	t.Run("double punch-in rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t, "09:05")

		_, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)

		_, err = svc.PunchIn(ctx, "user-1", officePunch())
		assert.ErrorIs(t, err, attendance.ErrActiveSessionExists)
	})

	t.Run("work location fixed by first session", func(t *testing.T) {
		svc, _, clk := newTestService(t, "09:05")

		_, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)

		clk.SetClock("12:00")
		_, err = svc.PunchOut(ctx, "user-1", attendance.PunchOutRequest{Latitude: officeLat, Longitude: officeLng})
		require.NoError(t, err)

		// Afternoon resumption from home does not move the location.
		clk.SetClock("13:00")
		record, err := svc.PunchIn(ctx, "user-1", attendance.PunchInRequest{
			Latitude:  officeLat + 0.1,
			Longitude: officeLng,
		})
		require.NoError(t, err)
		assert.Equal(t, attendance.LocationOffice, record.WorkLocation)
		require.Len(t, record.Sessions, 2)
		assert.False(t, record.Sessions[1].IsLate)
	})

	t.Run("invalid coordinates rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t, "09:05")
		_, err := svc.PunchIn(ctx, "user-1", attendance.PunchInRequest{Latitude: 95, Longitude: 0})
		assert.Error(t, err)
	})
}

func TestPunchOut(t *testing.T) {
	ctx := context.Background()

	t.Run("full day with one break", func(t *testing.T) {
		svc, _, clk := newTestService(t, "09:05")

		_, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)

		clk.SetClock("12:30")
		_, err = svc.BreakStart(ctx, "user-1", attendance.BreakStartRequest{Type: "lunch"})
		require.NoError(t, err)

		clk.SetClock("13:00")
		_, err = svc.BreakEnd(ctx, "user-1")
		require.NoError(t, err)

		clk.SetClock("17:40")
		record, err := svc.PunchOut(ctx, "user-1", attendance.PunchOutRequest{Latitude: officeLat, Longitude: officeLng})
		require.NoError(t, err)

		const eps = 0.001
		assert.InDelta(t, 8.5833, record.Summary.TotalHours, eps)
		assert.Equal(t, 30, record.Summary.BreakMinutes)
		assert.InDelta(t, 8.0833, record.Summary.EffectiveHours, eps)
		assert.InDelta(t, 0.0833, record.Summary.OvertimeHours, eps)
		assert.InDelta(t, 0.0, record.Summary.UndertimeHours, eps)
		assert.Equal(t, attendance.StatusPresent, record.Status)
		assert.False(t, record.Sessions[0].IsEarly)
	})

	t.Run("early leave is partial with undertime", func(t *testing.T) {
		svc, _, clk := newTestService(t, "09:00")

		_, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)

		clk.SetClock("15:00")
		record, err := svc.PunchOut(ctx, "user-1", attendance.PunchOutRequest{Latitude: officeLat, Longitude: officeLng})
		require.NoError(t, err)

		assert.Equal(t, attendance.StatusPartial, record.Status)
		assert.True(t, record.Sessions[0].IsEarly)
		assert.Equal(t, 150, record.Sessions[0].EarlyMinutes)
		assert.InDelta(t, 6.0, record.Summary.EffectiveHours, 0.001)
		assert.InDelta(t, 2.0, record.Summary.UndertimeHours, 0.001)
	})

	t.Run("punch out without session rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t, "09:05")
		_, err := svc.PunchOut(ctx, "user-1", attendance.PunchOutRequest{Latitude: officeLat, Longitude: officeLng})
		assert.ErrorIs(t, err, attendance.ErrNoActiveSession)
	})

	t.Run("ongoing break closes with the session", func(t *testing.T) {
		svc, _, clk := newTestService(t, "09:00")

		_, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)

		clk.SetClock("12:30")
		_, err = svc.BreakStart(ctx, "user-1", attendance.BreakStartRequest{Type: "lunch"})
		require.NoError(t, err)

		clk.SetClock("13:00")
		record, err := svc.PunchOut(ctx, "user-1", attendance.PunchOutRequest{Latitude: officeLat, Longitude: officeLng})
		require.NoError(t, err)

		require.Len(t, record.Breaks, 1)
		require.NotNil(t, record.Breaks[0].EndAt)
		assert.Equal(t, 30, record.Breaks[0].DurationMinutes)
	})

	t.Run("multi-session day accumulates hours", func(t *testing.T) {
		svc, _, clk := newTestService(t, "09:00")

		_, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)
		clk.SetClock("12:00")
		_, err = svc.PunchOut(ctx, "user-1", attendance.PunchOutRequest{Latitude: officeLat, Longitude: officeLng})
		require.NoError(t, err)

		clk.SetClock("13:00")
		_, err = svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)
		clk.SetClock("18:00")
		record, err := svc.PunchOut(ctx, "user-1", attendance.PunchOutRequest{Latitude: officeLat, Longitude: officeLng})
		require.NoError(t, err)

		assert.InDelta(t, 8.0, record.Summary.TotalHours, 0.001)
		assert.Equal(t, attendance.StatusPresent, record.Status)
	})
}

func TestBreaks(t *testing.T) {
	ctx := context.Background()

	t.Run("break requires an open session", func(t *testing.T) {
		svc, _, _ := newTestService(t, "09:05")
		_, err := svc.BreakStart(ctx, "user-1", attendance.BreakStartRequest{Type: "coffee"})
		assert.ErrorIs(t, err, attendance.ErrNoActiveSession)
	})

	t.Run("concurrent breaks rejected", func(t *testing.T) {
		svc, _, clk := newTestService(t, "09:00")

		_, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)

		clk.SetClock("10:00")
		_, err = svc.BreakStart(ctx, "user-1", attendance.BreakStartRequest{Type: "coffee"})
		require.NoError(t, err)

		_, err = svc.BreakStart(ctx, "user-1", attendance.BreakStartRequest{Type: "lunch"})
		assert.ErrorIs(t, err, attendance.ErrOngoingBreakExists)
	})

	t.Run("end without ongoing break rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t, "09:05")

		_, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)

		_, err = svc.BreakEnd(ctx, "user-1")
		assert.ErrorIs(t, err, attendance.ErrNoActiveBreak)
	})

	t.Run("unknown break type rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t, "09:05")

		_, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)

		_, err = svc.BreakStart(ctx, "user-1", attendance.BreakStartRequest{Type: "vacation"})
		assert.Error(t, err)
	})
}

func TestHistoryAndViews(t *testing.T) {
	ctx := context.Background()

	t.Run("get today", func(t *testing.T) {
		svc, _, _ := newTestService(t, "09:05")

		_, err := svc.GetToday(ctx, "user-1")
		assert.ErrorIs(t, err, attendance.ErrRecordNotFound)

		_, err = svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)

		record, err := svc.GetToday(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, testDay, record.Date)
	})

	t.Run("history pagination defaults", func(t *testing.T) {
		svc, _, _ := newTestService(t, "09:05")

		_, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)

		resp, err := svc.GetMyHistory(ctx, "user-1", attendance.HistoryFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.TotalCount)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 20, resp.Limit)
		assert.Equal(t, 1, resp.TotalPages)
		require.Len(t, resp.Records, 1)
	})

	t.Run("list by date covers all users", func(t *testing.T) {
		svc, _, _ := newTestService(t, "09:05")

		_, err := svc.PunchIn(ctx, "user-1", officePunch())
		require.NoError(t, err)
		_, err = svc.PunchIn(ctx, "user-2", officePunch())
		require.NoError(t, err)

		records, err := svc.ListByDate(ctx, testDay)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}
