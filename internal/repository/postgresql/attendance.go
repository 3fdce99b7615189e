package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/manas-swain-001/cms/internal/domain/attendance"
	"github.com/manas-swain-001/cms/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

// NewAttendanceRepository creates an attendance repository over the
// attendance_records table and its session/break child tables.
func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const attendanceRecordColumns = `id, user_id, date, work_location, status,
	total_hours, break_minutes, effective_hours, overtime_hours, undertime_hours,
	frozen, created_at, updated_at`

func scanAttendanceRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Date, &rec.WorkLocation, &rec.Status,
		&rec.Summary.TotalHours, &rec.Summary.BreakMinutes, &rec.Summary.EffectiveHours,
		&rec.Summary.OvertimeHours, &rec.Summary.UndertimeHours,
		&rec.Frozen, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Create implements attendance.Repository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	err := WithTransaction(ctx, a.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO attendance_records (id, user_id, date, work_location, status,
				total_hours, break_minutes, effective_hours, overtime_hours, undertime_hours,
				frozen, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		_, err := tx.Exec(ctx, query,
			record.ID, record.UserID, record.Date, record.WorkLocation, record.Status,
			record.Summary.TotalHours, record.Summary.BreakMinutes, record.Summary.EffectiveHours,
			record.Summary.OvertimeHours, record.Summary.UndertimeHours,
			record.Frozen, record.CreatedAt, record.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create attendance record: %w", err)
		}
		return a.insertChildren(ctx, tx, record)
	})
	if err != nil {
		return attendance.Record{}, err
	}
	return record, nil
}

// GetByUserAndDate implements attendance.Repository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID, date string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records
		WHERE user_id = $1 AND date = $2
	`, attendanceRecordColumns)

	record, err := scanAttendanceRecord(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	if err := a.loadChildren(ctx, []*attendance.Record{&record}); err != nil {
		return attendance.Record{}, err
	}
	return record, nil
}

// Update implements attendance.Repository. The record is the unit of
// contention, so the whole state (sessions and breaks included) is
// rewritten in one transaction.
func (a *attendanceRepository) Update(ctx context.Context, record attendance.Record) error {
	return WithTransaction(ctx, a.db, func(tx pgx.Tx) error {
		query := `
			UPDATE attendance_records
			SET work_location = $2, status = $3,
				total_hours = $4, break_minutes = $5, effective_hours = $6,
				overtime_hours = $7, undertime_hours = $8,
				frozen = $9, updated_at = $10
			WHERE id = $1
		`
		tag, err := tx.Exec(ctx, query,
			record.ID, record.WorkLocation, record.Status,
			record.Summary.TotalHours, record.Summary.BreakMinutes, record.Summary.EffectiveHours,
			record.Summary.OvertimeHours, record.Summary.UndertimeHours,
			record.Frozen, record.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return attendance.ErrRecordNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM attendance_sessions WHERE record_id = $1`, record.ID); err != nil {
			return fmt.Errorf("failed to clear attendance sessions: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM attendance_breaks WHERE record_id = $1`, record.ID); err != nil {
			return fmt.Errorf("failed to clear attendance breaks: %w", err)
		}
		return a.insertChildren(ctx, tx, record)
	})
}

// ListByUser implements attendance.Repository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string, filter attendance.HistoryFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.StartDate != nil && *filter.StartDate != "" {
		args = append(args, *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		args = append(args, *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM attendance_records WHERE %s`, where)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records
		WHERE %s
		ORDER BY date DESC
		LIMIT $%d OFFSET $%d
	`, attendanceRecordColumns, where, len(args)-1, len(args))

	records, err := a.queryRecords(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListByDate implements attendance.Repository.
func (a *attendanceRepository) ListByDate(ctx context.Context, date string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records
		WHERE date = $1
		ORDER BY user_id ASC
	`, attendanceRecordColumns)

	return a.queryRecords(ctx, q, query, date)
}

// ListStaleOpen implements attendance.Repository.
func (a *attendanceRepository) ListStaleOpen(ctx context.Context, beforeDate string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records r
		WHERE frozen = false
		  AND date < $1
		  AND EXISTS (
			SELECT 1 FROM attendance_sessions s
			WHERE s.record_id = r.id AND s.check_out_at IS NULL
		  )
		ORDER BY date ASC, user_id ASC
	`, attendanceRecordColumns)

	return a.queryRecords(ctx, q, query, beforeDate)
}

func (a *attendanceRepository) queryRecords(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]attendance.Record, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		record, err := scanAttendanceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ptrs := make([]*attendance.Record, len(records))
	for i := range records {
		ptrs[i] = &records[i]
	}
	if err := a.loadChildren(ctx, ptrs); err != nil {
		return nil, err
	}
	return records, nil
}

func (a *attendanceRepository) insertChildren(ctx context.Context, tx pgx.Tx, record attendance.Record) error {
	for i, s := range record.Sessions {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		query := `
			INSERT INTO attendance_sessions (id, record_id, position,
				check_in_at, check_in_lat, check_in_lng, is_late, late_minutes,
				check_out_at, check_out_lat, check_out_lng, is_early, early_minutes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		_, err := tx.Exec(ctx, query,
			s.ID, record.ID, i,
			s.CheckInAt, s.CheckInLat, s.CheckInLng, s.IsLate, s.LateMinutes,
			s.CheckOutAt, s.CheckOutLat, s.CheckOutLng, s.IsEarly, s.EarlyMinutes,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attendance session: %w", err)
		}
	}

	for i, b := range record.Breaks {
		if b.ID == "" {
			b.ID = uuid.New().String()
		}
		query := `
			INSERT INTO attendance_breaks (id, record_id, position,
				break_type, start_at, end_at, duration_minutes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.Exec(ctx, query,
			b.ID, record.ID, i, b.Type, b.StartAt, b.EndAt, b.DurationMinutes,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attendance break: %w", err)
		}
	}
	return nil
}

// loadChildren fills sessions and breaks for the given records in two
// queries, keyed by record id.
func (a *attendanceRepository) loadChildren(ctx context.Context, records []*attendance.Record) error {
	if len(records) == 0 {
		return nil
	}
	q := GetQuerier(ctx, a.db)

	ids := make([]string, len(records))
	byID := make(map[string]*attendance.Record, len(records))
	for i, r := range records {
		ids[i] = r.ID
		byID[r.ID] = r
	}

	sessionQuery := `
		SELECT id, record_id, check_in_at, check_in_lat, check_in_lng, is_late, late_minutes,
			check_out_at, check_out_lat, check_out_lng, is_early, early_minutes
		FROM attendance_sessions
		WHERE record_id = ANY($1)
		ORDER BY record_id, position ASC
	`
	rows, err := q.Query(ctx, sessionQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to list attendance sessions: %w", err)
	}
	for rows.Next() {
		var s attendance.Session
		var recordID string
		err := rows.Scan(
			&s.ID, &recordID, &s.CheckInAt, &s.CheckInLat, &s.CheckInLng, &s.IsLate, &s.LateMinutes,
			&s.CheckOutAt, &s.CheckOutLat, &s.CheckOutLng, &s.IsEarly, &s.EarlyMinutes,
		)
		if err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan attendance session: %w", err)
		}
		if rec, ok := byID[recordID]; ok {
			rec.Sessions = append(rec.Sessions, s)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	breakQuery := `
		SELECT id, record_id, break_type, start_at, end_at, duration_minutes
		FROM attendance_breaks
		WHERE record_id = ANY($1)
		ORDER BY record_id, position ASC
	`
	rows, err = q.Query(ctx, breakQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to list attendance breaks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b attendance.Break
		var recordID string
		if err := rows.Scan(&b.ID, &recordID, &b.Type, &b.StartAt, &b.EndAt, &b.DurationMinutes); err != nil {
			return fmt.Errorf("failed to scan attendance break: %w", err)
		}
		if rec, ok := byID[recordID]; ok {
			rec.Breaks = append(rec.Breaks, b)
		}
	}
	return rows.Err()
}
