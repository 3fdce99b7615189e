package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/manas-swain-001/cms/internal/domain/task"
	"github.com/manas-swain-001/cms/internal/pkg/database"
)

type taskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a checkpoint ledger repository backed by the
// task_entries table. UNIQUE(user_id, date, slot) is the idempotency
// anchor for seeding.
func NewTaskRepository(db *database.DB) task.Repository {
	return &taskRepository{db: db}
}

const taskEntryColumns = `id, user_id, date, slot, status, description,
	submitted_at, warned_at, escalated_at, created_at, updated_at`

func scanTaskEntry(row pgx.Row) (task.Entry, error) {
	var e task.Entry
	var status string
	err := row.Scan(
		&e.ID, &e.UserID, &e.Date, &e.Slot, &status, &e.Description,
		&e.SubmittedAt, &e.WarnedAt, &e.EscalatedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return task.Entry{}, err
	}
	e.Status = task.EntryStatus(status)
	return e, nil
}

// CreateEntries implements task.Repository. ON CONFLICT DO NOTHING makes
// re-seeding a no-op for slots that already exist.
func (r *taskRepository) CreateEntries(ctx context.Context, entries []task.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(entries))
	valueArgs := make([]interface{}, 0, len(entries)*7)

	for i, e := range entries {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		base := i * 7
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		valueArgs = append(valueArgs,
			e.ID, e.UserID, e.Date, e.Slot, string(e.Status), e.CreatedAt, e.UpdatedAt,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO task_entries (id, user_id, date, slot, status, created_at, updated_at)
		VALUES %s
		ON CONFLICT (user_id, date, slot) DO NOTHING
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to create checkpoint entries: %w", err)
	}
	return nil
}

// GetEntry implements task.Repository.
func (r *taskRepository) GetEntry(ctx context.Context, userID, date, slot string) (task.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM task_entries
		WHERE user_id = $1 AND date = $2 AND slot = $3
	`, taskEntryColumns)

	entry, err := scanTaskEntry(q.QueryRow(ctx, query, userID, date, slot))
	if err != nil {
		if err == pgx.ErrNoRows {
			return task.Entry{}, task.ErrEntryNotFound
		}
		return task.Entry{}, fmt.Errorf("failed to get checkpoint entry: %w", err)
	}
	return entry, nil
}

// ListByUserAndDate implements task.Repository.
func (r *taskRepository) ListByUserAndDate(ctx context.Context, userID, date string) ([]task.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM task_entries
		WHERE user_id = $1 AND date = $2
		ORDER BY slot ASC
	`, taskEntryColumns)

	rows, err := q.Query(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoint entries: %w", err)
	}
	defer rows.Close()

	return collectTaskEntries(rows)
}

// ListByDate implements task.Repository.
func (r *taskRepository) ListByDate(ctx context.Context, date string, slot *string) ([]task.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM task_entries
		WHERE date = $1
	`, taskEntryColumns)
	args := []interface{}{date}

	if slot != nil {
		query += ` AND slot = $2`
		args = append(args, *slot)
	}
	query += ` ORDER BY user_id ASC, slot ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoint entries by date: %w", err)
	}
	defer rows.Close()

	return collectTaskEntries(rows)
}

// ListOpenBySlot implements task.Repository.
func (r *taskRepository) ListOpenBySlot(ctx context.Context, date, slot string, statuses []task.EntryStatus) ([]task.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM task_entries
		WHERE date = $1 AND slot = $2 AND status = ANY($3)
		ORDER BY user_id ASC
	`, taskEntryColumns)

	rows, err := q.Query(ctx, query, date, slot, statusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("failed to list open checkpoint entries: %w", err)
	}
	defer rows.Close()

	return collectTaskEntries(rows)
}

// Transition implements task.Repository. The status guard lives in the
// WHERE clause, so two racing writers can never both commit; the loser
// sees zero rows affected.
func (r *taskRepository) Transition(ctx context.Context, id string, from []task.EntryStatus, to task.EntryStatus, at time.Time, description *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var stampColumn string
	switch to {
	case task.StatusSubmitted:
		stampColumn = "submitted_at"
	case task.StatusWarningSent:
		stampColumn = "warned_at"
	case task.StatusEscalated:
		stampColumn = "escalated_at"
	default:
		return false, fmt.Errorf("invalid transition target %q", to)
	}

	query := fmt.Sprintf(`
		UPDATE task_entries
		SET status = $1,
			%s = $2,
			description = COALESCE($3, description),
			updated_at = $2
		WHERE id = $4 AND status = ANY($5)
	`, stampColumn)

	tag, err := q.Exec(ctx, query, string(to), at, description, id, statusStrings(from))
	if err != nil {
		return false, fmt.Errorf("failed to transition checkpoint entry: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Zero rows: lost the race, or the entry never existed.
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM task_entries WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check checkpoint entry: %w", err)
	}
	if !exists {
		return false, task.ErrEntryNotFound
	}
	return false, nil
}

func collectTaskEntries(rows pgx.Rows) ([]task.Entry, error) {
	var entries []task.Entry
	for rows.Next() {
		entry, err := scanTaskEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func statusStrings(statuses []task.EntryStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
