package queue

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
)

// EnsureSchema creates the notification task table if it doesn't exist.
func EnsureSchema(db *sql.DB) error {
	schema := `
PRAGMA journal_mode=WAL;
CREATE TABLE IF NOT EXISTS notification_tasks (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  payload BLOB NOT NULL,
  status TEXT NOT NULL CHECK(status IN ('pending','processing','completed','failed')) DEFAULT 'pending',
  retry_count INTEGER NOT NULL DEFAULT 0,
  max_retries INTEGER NOT NULL DEFAULT 3,
  error_message TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL,
  leased_at DATETIME,
  processed_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_notification_tasks_status_created ON notification_tasks(status, created_at);
CREATE INDEX IF NOT EXISTS idx_notification_tasks_processed ON notification_tasks(status, processed_at);
`
	_, err := db.Exec(schema)
	return err
}

// Store is the persistence surface for notification tasks. All task mutation
// in the system goes through these operations.
type Store interface {
	Enqueue(ctx context.Context, kind domain.Kind, payload []byte, maxRetries int) (string, error)
	LeaseBatch(ctx context.Context, maxN int) ([]domain.Task, error)
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
	FindRetryable(ctx context.Context) ([]domain.Task, error)
	Requeue(ctx context.Context, id string) error
	PurgeCompletedOlderThan(ctx context.Context, retention time.Duration) (int, error)
	RecoverStale(ctx context.Context, olderThan time.Duration) (int, error)
	Get(ctx context.Context, id string) (domain.Task, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Task, error)
}

type sqliteStore struct{ db *sql.DB }

func NewSQLiteStore(db *sql.DB) Store { return &sqliteStore{db: db} }

const taskColumns = `id,kind,payload,status,retry_count,max_retries,error_message,created_at,processed_at`

func scanTask(row interface{ Scan(...any) error }) (domain.Task, error) {
	var t domain.Task
	var processed sql.NullTime
	err := row.Scan(&t.ID, &t.Kind, &t.Payload, &t.Status, &t.RetryCount, &t.MaxRetries, &t.ErrorMessage, &t.CreatedAt, &processed)
	if err != nil {
		return domain.Task{}, err
	}
	if processed.Valid {
		ts := processed.Time
		t.ProcessedAt = &ts
	}
	return t, nil
}

func (s *sqliteStore) Enqueue(ctx context.Context, kind domain.Kind, payload []byte, maxRetries int) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: empty payload", domain.ErrInvalidArgument)
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	id := "ntf_" + uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO notification_tasks (id,kind,payload,status,retry_count,max_retries,error_message,created_at)
VALUES (?,?,?,'pending',0,?,'',?)
`, id, kind, payload, maxRetries, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("enqueue: %w", err)
	}
	return id, nil
}

// LeaseBatch atomically claims up to maxN pending tasks, oldest first. The
// select and the pending->processing flip happen in one serializable
// transaction so two overlapping workers can never claim the same task.
func (s *sqliteStore) LeaseBatch(ctx context.Context, maxN int) ([]domain.Task, error) {
	if maxN <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive", domain.ErrInvalidArgument)
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
SELECT `+taskColumns+`
FROM notification_tasks
WHERE status='pending'
ORDER BY created_at ASC, id ASC
LIMIT ?`, maxN)
	if err != nil {
		return nil, err
	}
	tasks, err := collectTasks(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if len(tasks) == 0 {
		return nil, tx.Commit()
	}

	placeholders := make([]string, len(tasks))
	args := make([]any, len(tasks))
	for i, t := range tasks {
		placeholders[i] = "?"
		args[i] = t.ID
	}
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
UPDATE notification_tasks SET status='processing', leased_at=?
WHERE status='pending' AND id IN (`+strings.Join(placeholders, ",")+`)`,
		append([]any{now}, args...)...)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Status = domain.StatusProcessing
	}
	return tasks, nil
}

func (s *sqliteStore) MarkCompleted(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE notification_tasks SET status='completed', processed_at=?
WHERE id=? AND status='processing'`, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	return s.transitionError(ctx, id, domain.StatusCompleted)
}

func (s *sqliteStore) MarkFailed(ctx context.Context, id, reason string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE notification_tasks
SET status='failed', processed_at=?, error_message=?, retry_count=retry_count+1
WHERE id=? AND status='processing'`, time.Now().UTC(), reason, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	return s.transitionError(ctx, id, domain.StatusFailed)
}

// Requeue flips a retry-eligible failed task back to pending. The retry
// counter is deliberately not reset.
func (s *sqliteStore) Requeue(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE notification_tasks SET status='pending', processed_at=NULL, leased_at=NULL
WHERE id=? AND status='failed' AND retry_count < max_retries`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	return s.transitionError(ctx, id, domain.StatusPending)
}

// transitionError distinguishes a missing task from a conditional update that
// matched no rows because the task was not in the expected state.
func (s *sqliteStore) transitionError(ctx context.Context, id string, want domain.Status) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: task %s is %s, cannot move to %s", domain.ErrInvalidTransition, id, t.Status, want)
}

func (s *sqliteStore) FindRetryable(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+taskColumns+`
FROM notification_tasks
WHERE status='failed' AND retry_count < max_retries
ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s *sqliteStore) PurgeCompletedOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("%w: retention must be positive", domain.ErrInvalidArgument)
	}
	cutoff := time.Now().UTC().Add(-retention)
	res, err := s.db.ExecContext(ctx, `
DELETE FROM notification_tasks WHERE status='completed' AND processed_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// RecoverStale returns tasks stuck in processing to pending. This covers a
// worker that died mid-batch; the attempt never concluded, so retry_count is
// left alone. Staleness is judged by the lease timestamp, never the enqueue
// time: a long-queued task that was just leased is live, not stale.
func (s *sqliteStore) RecoverStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, `
UPDATE notification_tasks SET status='pending', leased_at=NULL
WHERE status='processing' AND leased_at IS NOT NULL AND leased_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *sqliteStore) Get(ctx context.Context, id string) (domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+taskColumns+` FROM notification_tasks WHERE id=?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return domain.Task{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return t, err
}

func (s *sqliteStore) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT status, COUNT(*) FROM notification_tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[domain.Status]int{
		domain.StatusPending:    0,
		domain.StatusProcessing: 0,
		domain.StatusCompleted:  0,
		domain.StatusFailed:     0,
	}
	for rows.Next() {
		var st domain.Status
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

func (s *sqliteStore) ListRecent(ctx context.Context, limit int) ([]domain.Task, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT `+taskColumns+`
FROM notification_tasks ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
