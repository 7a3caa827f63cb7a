package statecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
)

// Store persists console-side state that must survive restarts: which clip
// completions have already been announced, and the last clip listing seen
// per project so the console can render something while the backend is down.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the console state database under stateDir.
func Open(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, "console.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// MarkCompleted records that a clip completion was observed and reports
// whether this is the first time. A repeat observation of the same
// project/job pair returns false, which is what keeps completion banners
// and notifications from firing twice across console restarts.
func (s *Store) MarkCompleted(ctx context.Context, project, job string) (bool, error) {
	if strings.TrimSpace(job) == "" {
		return false, nil
	}
	res, err := s.execWithRetry(ctx,
		"INSERT OR IGNORE INTO completions (project, job, observed_at) VALUES (?, ?, ?)",
		project, job, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, fmt.Errorf("record completion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record completion: %w", err)
	}
	return affected > 0, nil
}

// Completions returns the recorded completion jobs for a project, oldest
// first.
func (s *Store) Completions(ctx context.Context, project string) ([]string, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT job FROM completions WHERE project = ? ORDER BY observed_at, job", project)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []string
	for rows.Next() {
		var job string
		if err := rows.Scan(&job); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ClearProject removes all cached state for a project. Used when the project
// itself is reset on the backend.
func (s *Store) ClearProject(ctx context.Context, project string) error {
	if err := s.execWithoutResultRetry(ctx, "DELETE FROM completions WHERE project = ?", project); err != nil {
		return fmt.Errorf("clear completions: %w", err)
	}
	if err := s.execWithoutResultRetry(ctx, "DELETE FROM clip_snapshots WHERE project = ?", project); err != nil {
		return fmt.Errorf("clear clip snapshot: %w", err)
	}
	return nil
}

// SaveClips stores the latest clip listing for a project.
func (s *Store) SaveClips(ctx context.Context, project string, clips []backend.ClipState) error {
	payload, err := json.Marshal(clips)
	if err != nil {
		return fmt.Errorf("encode clip snapshot: %w", err)
	}
	err = s.execWithoutResultRetry(ctx,
		`INSERT INTO clip_snapshots (project, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(project) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		project, string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save clip snapshot: %w", err)
	}
	return nil
}

// LoadClips returns the last stored clip listing for a project, or nil when
// none has been stored.
func (s *Store) LoadClips(ctx context.Context, project string) ([]backend.ClipState, error) {
	ctx = ensureContext(ctx)
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM clip_snapshots WHERE project = ?", project).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load clip snapshot: %w", err)
	}

	var clips []backend.ClipState
	if err := json.Unmarshal([]byte(payload), &clips); err != nil {
		return nil, fmt.Errorf("decode clip snapshot: %w", err)
	}
	return clips, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) execWithoutResultRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}
