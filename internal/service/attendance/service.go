package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/manas-swain-001/cms/internal/config"
	"github.com/manas-swain-001/cms/internal/domain/attendance"
	"github.com/manas-swain-001/cms/internal/domain/notification"
	"github.com/manas-swain-001/cms/internal/domain/task"
	"github.com/manas-swain-001/cms/internal/pkg/clock"
	"github.com/manas-swain-001/cms/internal/pkg/geo"
)

type AttendanceServiceImpl struct {
	attendance.Repository
	taskSvc         task.Service
	notificationSvc notification.Service
	clk             clock.Clock
	fence           geo.Geofence
	standardStart   int // minute of day
	standardEnd     int
	standardHours   float64
}

func NewAttendanceService(
	attendanceRepo attendance.Repository,
	taskSvc task.Service,
	notificationSvc notification.Service,
	clk clock.Clock,
	workday config.WorkdayConfig,
	office config.OfficeConfig,
) attendance.Service {
	start, err := task.ParseSlotMinute(workday.StandardStart)
	if err != nil {
		slog.Warn("Invalid WORKDAY_STANDARD_START, using 09:00", "value", workday.StandardStart)
		start = 9 * 60
	}
	end, err := task.ParseSlotMinute(workday.StandardEnd)
	if err != nil {
		slog.Warn("Invalid WORKDAY_STANDARD_END, using 17:30", "value", workday.StandardEnd)
		end = 17*60 + 30
	}

	return &AttendanceServiceImpl{
		Repository:      attendanceRepo,
		taskSvc:         taskSvc,
		notificationSvc: notificationSvc,
		clk:             clk,
		fence: geo.Geofence{
			Latitude:     office.Latitude,
			Longitude:    office.Longitude,
			RadiusMeters: office.RadiusMeters,
		},
		standardStart: start,
		standardEnd:   end,
		standardHours: workday.StandardHours,
	}
}

// PunchIn implements attendance.Service.
func (s *AttendanceServiceImpl) PunchIn(ctx context.Context, userID string, req attendance.PunchInRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.clk.Now()
	date := s.clk.Today()

	record, err := s.Repository.GetByUserAndDate(ctx, userID, date)
	switch {
	case errors.Is(err, attendance.ErrRecordNotFound):
		return s.firstPunchIn(ctx, userID, date, now, req)
	case err != nil:
		return attendance.RecordResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	if record.Frozen {
		return attendance.RecordResponse{}, attendance.ErrRecordFrozen
	}
	if record.OpenSession() != nil {
		return attendance.RecordResponse{}, attendance.ErrActiveSessionExists
	}

	// Resumption after a punch-out. Work location was fixed by the first
	// session of the day and lateness only applies to that first session.
	record.Sessions = append(record.Sessions, attendance.Session{
		ID:         uuid.New().String(),
		CheckInAt:  now,
		CheckInLat: req.Latitude,
		CheckInLng: req.Longitude,
	})
	record.UpdatedAt = now

	if err := s.Repository.Update(ctx, record); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	s.notifyPunch(ctx, userID, notification.TypePunchIn, "Session Started",
		fmt.Sprintf("Checked in at %s", now.Format("15:04")), date)
	return mapRecordToResponse(record), nil
}

func (s *AttendanceServiceImpl) firstPunchIn(ctx context.Context, userID, date string, now time.Time, req attendance.PunchInRequest) (attendance.RecordResponse, error) {
	workLocation := attendance.LocationHome
	if s.fence.Contains(req.Latitude, req.Longitude) {
		workLocation = attendance.LocationOffice
	}

	session := attendance.Session{
		ID:         uuid.New().String(),
		CheckInAt:  now,
		CheckInLat: req.Latitude,
		CheckInLng: req.Longitude,
	}
	if minute := clock.MinutesOfDay(now); minute > s.standardStart {
		session.IsLate = true
		session.LateMinutes = minute - s.standardStart
	}

	record := attendance.Record{
		ID:           uuid.New().String(),
		UserID:       userID,
		Date:         date,
		WorkLocation: workLocation,
		Status:       attendance.StatusPartial,
		Sessions:     []attendance.Session{session},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.Repository.Create(ctx, record)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	// The day's first punch-in also opens the checkpoint ledger. A seed
	// failure must not undo the punch; the next punch-in retries it.
	if s.taskSvc != nil {
		if err := s.taskSvc.SeedDay(ctx, userID, date, now); err != nil {
			slog.Error("Failed to seed checkpoint ledger on punch-in",
				"user_id", userID, "date", date, "error", err)
		}
	}

	s.notifyPunch(ctx, userID, notification.TypePunchIn, "Day Started",
		fmt.Sprintf("Checked in at %s (%s)", now.Format("15:04"), workLocation), date)
	return mapRecordToResponse(created), nil
}

// PunchOut implements attendance.Service.
func (s *AttendanceServiceImpl) PunchOut(ctx context.Context, userID string, req attendance.PunchOutRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.clk.Now()
	date := s.clk.Today()

	record, err := s.Repository.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.RecordResponse{}, attendance.ErrNoActiveSession
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if record.Frozen {
		return attendance.RecordResponse{}, attendance.ErrRecordFrozen
	}

	open := record.OpenSession()
	if open == nil {
		return attendance.RecordResponse{}, attendance.ErrNoActiveSession
	}

	// An ongoing break ends with the session.
	if b := record.OpenBreak(); b != nil {
		endAt := now
		b.EndAt = &endAt
		b.DurationMinutes = int(now.Sub(b.StartAt).Minutes())
	}

	checkOut := now
	open.CheckOutAt = &checkOut
	open.CheckOutLat = &req.Latitude
	open.CheckOutLng = &req.Longitude
	if minute := clock.MinutesOfDay(now); minute < s.standardEnd {
		open.IsEarly = true
		open.EarlyMinutes = s.standardEnd - minute
	}

	record.Summary = attendance.ComputeWorkSummary(record.Sessions, record.Breaks, s.standardHours)
	record.Status = statusForSummary(record.Summary, s.standardHours)
	record.UpdatedAt = now

	if err := s.Repository.Update(ctx, record); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	s.notifyPunch(ctx, userID, notification.TypePunchOut, "Session Ended",
		fmt.Sprintf("Checked out at %s, %.2f effective hours today",
			now.Format("15:04"), record.Summary.EffectiveHours), date)
	return mapRecordToResponse(record), nil
}

// BreakStart implements attendance.Service.
func (s *AttendanceServiceImpl) BreakStart(ctx context.Context, userID string, req attendance.BreakStartRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.clk.Now()
	record, err := s.Repository.GetByUserAndDate(ctx, userID, s.clk.Today())
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.RecordResponse{}, attendance.ErrNoActiveSession
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if record.Frozen {
		return attendance.RecordResponse{}, attendance.ErrRecordFrozen
	}
	if record.OpenSession() == nil {
		return attendance.RecordResponse{}, attendance.ErrNoActiveSession
	}
	if record.OpenBreak() != nil {
		return attendance.RecordResponse{}, attendance.ErrOngoingBreakExists
	}

	record.Breaks = append(record.Breaks, attendance.Break{
		ID:      uuid.New().String(),
		Type:    req.Type,
		StartAt: now,
	})
	record.UpdatedAt = now

	if err := s.Repository.Update(ctx, record); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return mapRecordToResponse(record), nil
}

// BreakEnd implements attendance.Service.
func (s *AttendanceServiceImpl) BreakEnd(ctx context.Context, userID string) (attendance.RecordResponse, error) {
	now := s.clk.Now()
	record, err := s.Repository.GetByUserAndDate(ctx, userID, s.clk.Today())
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.RecordResponse{}, attendance.ErrNoActiveBreak
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if record.Frozen {
		return attendance.RecordResponse{}, attendance.ErrRecordFrozen
	}

	b := record.OpenBreak()
	if b == nil {
		return attendance.RecordResponse{}, attendance.ErrNoActiveBreak
	}

	endAt := now
	b.EndAt = &endAt
	b.DurationMinutes = int(now.Sub(b.StartAt).Minutes())

	record.Summary = attendance.ComputeWorkSummary(record.Sessions, record.Breaks, s.standardHours)
	record.UpdatedAt = now

	if err := s.Repository.Update(ctx, record); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return mapRecordToResponse(record), nil
}

// GetToday implements attendance.Service.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context, userID string) (attendance.RecordResponse, error) {
	record, err := s.Repository.GetByUserAndDate(ctx, userID, s.clk.Today())
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return mapRecordToResponse(record), nil
}

// GetMyHistory implements attendance.Service.
func (s *AttendanceServiceImpl) GetMyHistory(ctx context.Context, userID string, filter attendance.HistoryFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	records, total, err := s.Repository.ListByUser(ctx, userID, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list attendance history: %w", err)
	}

	resp := attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, mapRecordToResponse(r))
	}
	return resp, nil
}

// ListByDate implements attendance.Service.
func (s *AttendanceServiceImpl) ListByDate(ctx context.Context, date string) ([]attendance.RecordResponse, error) {
	if date == "" {
		date = s.clk.Today()
	}

	records, err := s.Repository.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	out := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, mapRecordToResponse(r))
	}
	return out, nil
}

func (s *AttendanceServiceImpl) notifyPunch(ctx context.Context, userID string, typ notification.NotificationType, title, message, date string) {
	if s.notificationSvc == nil {
		return
	}
	err := s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: userID,
		Type:        typ,
		Title:       title,
		Message:     message,
		Data:        map[string]interface{}{"date": date},
	})
	if err != nil {
		slog.Error("Attendance: failed to queue punch notification",
			"user_id", userID, "type", string(typ), "error", err)
	}
}

func statusForSummary(summary attendance.WorkSummary, standardHours float64) string {
	if summary.EffectiveHours >= standardHours {
		return attendance.StatusPresent
	}
	return attendance.StatusPartial
}

func mapRecordToResponse(r attendance.Record) attendance.RecordResponse {
	resp := attendance.RecordResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		Date:         r.Date,
		WorkLocation: r.WorkLocation,
		Status:       r.Status,
		Sessions:     make([]attendance.SessionResponse, 0, len(r.Sessions)),
		Breaks:       make([]attendance.BreakResponse, 0, len(r.Breaks)),
		Summary: attendance.WorkSummaryResponse{
			TotalHours:     r.Summary.TotalHours,
			BreakMinutes:   r.Summary.BreakMinutes,
			EffectiveHours: r.Summary.EffectiveHours,
			OvertimeHours:  r.Summary.OvertimeHours,
			UndertimeHours: r.Summary.UndertimeHours,
		},
	}
	for _, sess := range r.Sessions {
		resp.Sessions = append(resp.Sessions, attendance.SessionResponse{
			CheckInAt:    sess.CheckInAt.Format("2006-01-02 15:04:05"),
			IsLate:       sess.IsLate,
			LateMinutes:  sess.LateMinutes,
			CheckOutAt:   formatTimePtr(sess.CheckOutAt),
			IsEarly:      sess.IsEarly,
			EarlyMinutes: sess.EarlyMinutes,
		})
	}
	for _, b := range r.Breaks {
		resp.Breaks = append(resp.Breaks, attendance.BreakResponse{
			Type:            b.Type,
			StartAt:         b.StartAt.Format("2006-01-02 15:04:05"),
			EndAt:           formatTimePtr(b.EndAt),
			DurationMinutes: b.DurationMinutes,
		})
	}
	return resp
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}
