package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// DefaultPath returns <user data dir>/sweep/history.db. On Linux the data
// dir is $XDG_DATA_HOME or ~/.local/share.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "sweep", "history.db"), nil
	}
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "sweep", "history.db"), nil
	}
	return "~/.local/share/sweep/history.db", nil
}

// Open opens or creates the database at dbPath. An empty path means
// DefaultPath; a leading ~ is expanded.
func Open(dbPath string) (Store, error) {
	resolved, err := resolvePath(dbPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &store{db: db, path: resolved}, nil
}

type store struct {
	db   *sql.DB
	path string
}

func resolvePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		var err error
		if p, err = DefaultPath(); err != nil {
			return "", fmt.Errorf("failed to resolve data dir: %w", err)
		}
	}
	if strings.HasPrefix(p, "~/") || p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home dir: %w", err)
		}
		if p == "~" {
			p = home
		} else {
			p = filepath.Join(home, p[2:])
		}
	}
	return filepath.Clean(p), nil
}

func (s *store) SaveRun(ctx context.Context, run Run) (err error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	roots, err := json.Marshal(run.Roots)
	if err != nil {
		return fmt.Errorf("encode roots: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_uuid, started_at, duration_ms, roots, projects,
			removed, failed, freed_bytes, dry_run
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID.String(), run.StartedAt.UnixNano(), run.Duration.Milliseconds(), string(roots), run.Projects,
		run.Removed, run.Failed, run.FreedBytes, boolToInt(run.DryRun))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, d := range run.Dirs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO run_dirs (run_id, path, bytes, error) VALUES (?, ?, ?, ?)`,
			runID, d.Path, d.Bytes, nullString(d.Error),
		); err != nil {
			return fmt.Errorf("insert run dir: %w", err)
		}
	}

	return tx.Commit()
}

func (s *store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_uuid, started_at, duration_ms, roots, projects, removed, failed, freed_bytes, dry_run
		FROM runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r          Run
			id, roots  string
			started    int64
			durationMs int64
			dryRun     int
		)
		if err := rows.Scan(&id, &started, &durationMs, &roots, &r.Projects, &r.Removed, &r.Failed, &r.FreedBytes, &dryRun); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(roots), &r.Roots); err != nil {
			return nil, fmt.Errorf("decode roots of run %s: %w", id, err)
		}
		r.StartedAt = time.Unix(0, started)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.DryRun = dryRun != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *store) ListDirs(ctx context.Context, id uuid.UUID) ([]Dir, error) {
	var runID int64
	err := s.db.QueryRowContext(ctx, `SELECT run_id FROM runs WHERE run_uuid = ?`, id.String()).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, bytes, COALESCE(error, '')
		FROM run_dirs
		WHERE run_id = ?
		ORDER BY path
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dir
	for rows.Next() {
		var d Dir
		if err := rows.Scan(&d.Path, &d.Bytes, &d.Error); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *store) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age).UnixNano()
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
