package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore over the maintenance_*
// tables. Intervals are stored in milliseconds.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	taskColumns = `id, name, interval_ms, enabled, last_run, next_run, last_success, last_error`
	runColumns  = `task_id, started_at, ended_at, success, error, items`
)

// GetTask returns nil and no error when the task has never been saved.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM maintenance_tasks WHERE id = ?`, taskID)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("reading maintenance task", err)
	}
	return &task, nil
}

// ListTasks returns every task ordered by ID.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM maintenance_tasks ORDER BY id`)
	if err != nil {
		return nil, unavailable("listing maintenance tasks", err)
	}
	return collect(rows, "listing maintenance tasks", scanTask)
}

func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO maintenance_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			interval_ms = excluded.interval_ms,
			enabled = excluded.enabled,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_success = excluded.last_success,
			last_error = excluded.last_error
	`, task.ID, task.Name, task.Interval.Milliseconds(), task.Enabled,
		timeValue(task.LastRun), timeValue(task.NextRun), timeValue(task.LastSuccess), task.LastError)

	return unavailable("saving maintenance task", err)
}

func (s *schedulerStore) DeleteTask(ctx context.Context, taskID string) error {
	_, err := s.store.db.ExecContext(ctx, `DELETE FROM maintenance_tasks WHERE id = ?`, taskID)
	return unavailable("deleting maintenance task", err)
}

func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx,
		`INSERT INTO maintenance_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		result.TaskID, timeValue(result.StartedAt), timeValue(result.EndedAt),
		result.Success, result.Error, result.ItemsProcessed)

	return unavailable("recording maintenance run", err)
}

// GetTaskHistory returns up to limit runs of taskID, newest first.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM maintenance_runs
		WHERE task_id = ?
		ORDER BY started_at DESC, seq DESC
		LIMIT ?
	`, taskID, limit)
	if err != nil {
		return nil, unavailable("reading run history", err)
	}
	return collect(rows, "reading run history", scanRun)
}

// PruneHistory keeps the newest keep runs of each task.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM maintenance_runs
		WHERE seq IN (
			SELECT seq FROM (
				SELECT seq, ROW_NUMBER() OVER (
					PARTITION BY task_id ORDER BY started_at DESC, seq DESC
				) AS rank
				FROM maintenance_runs
			) WHERE rank > ?
		)
	`, keep)
	return unavailable("pruning run history", err)
}

// collect scans every row with scan and closes rows.
func collect[T any](rows *sql.Rows, op string, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, unavailable(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return out, nil
}

func scanTask(row rowScanner) (domain.ScheduledTask, error) {
	var (
		task                          domain.ScheduledTask
		intervalMS                    int64
		lastRun, nextRun, lastSuccess sql.NullString
	)
	err := row.Scan(&task.ID, &task.Name, &intervalMS, &task.Enabled,
		&lastRun, &nextRun, &lastSuccess, &task.LastError)
	if err != nil {
		return task, err
	}

	task.Interval = time.Duration(intervalMS) * time.Millisecond
	task.LastRun = parseTime(lastRun)
	task.NextRun = parseTime(nextRun)
	task.LastSuccess = parseTime(lastSuccess)
	return task, nil
}

func scanRun(row rowScanner) (domain.TaskResult, error) {
	var (
		run            domain.TaskResult
		started, ended sql.NullString
	)
	err := row.Scan(&run.TaskID, &started, &ended, &run.Success, &run.Error, &run.ItemsProcessed)
	if err != nil {
		return run, err
	}

	run.StartedAt = parseTime(started)
	run.EndedAt = parseTime(ended)
	return run, nil
}

// timeValue stores the zero time as NULL.
func timeValue(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

// parseTime reads a timestamp written by timeValue; NULL or garbage is the zero time.
func parseTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
