package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vk/taskgrid/internal/scheduler"
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed scheduler.Recorder.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

var _ scheduler.Recorder = (*Store)(nil)

// Entry is one persisted task outcome.
type Entry struct {
	RunID      string
	Order      int
	TaskID     uint64
	Name       string
	Status     string
	Error      string
	StartedAt  *time.Time
	FinishedAt time.Time
}

// Open opens (or creates) the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// One writer; tasks report from many goroutines.
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Migrate applies pending schema migrations. It is safe to call repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	if err := s.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := s.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// Record implements scheduler.Recorder.
func (s *Store) Record(ctx context.Context, runID string, rec scheduler.Record) error {
	var errText sql.NullString
	if rec.Err != nil {
		errText = sql.NullString{String: rec.Err.Error(), Valid: true}
	}
	var started sql.NullString
	if !rec.StartedAt.IsZero() {
		started = sql.NullString{String: formatTime(rec.StartedAt), Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO task_runs (run_id, seq, task_id, name, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Order, int64(rec.TaskID), rec.Name, rec.Status(), errText, started, formatTime(rec.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task run %s: %w", rec.Name, err)
	}
	return nil
}

// List returns the entries of a run in the order the tasks were reported.
func (s *Store) List(ctx context.Context, runID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT run_id, seq, task_id, name, status, error, started_at, finished_at
		FROM task_runs WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query task runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			taskID   int64
			errText  sql.NullString
			started  sql.NullString
			finished string
		)
		if err := rows.Scan(&e.RunID, &e.Order, &taskID, &e.Name, &e.Status, &errText, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan task run: %w", err)
		}
		e.TaskID = uint64(taskID)
		e.Error = errText.String
		e.StartedAt = parseNullableTime(started)
		if e.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("parse finished_at for %s: %w", e.Name, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Runs returns the known run ids, most recent first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT run_id FROM task_runs GROUP BY run_id ORDER BY MAX(id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil
	}
	return &t
}
