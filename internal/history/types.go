// Package history records cleanup runs in a local SQLite database so past
// runs and the space they freed can be reviewed with "swp history".
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists runs.
type Store interface {
	SaveRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListDirs(ctx context.Context, id uuid.UUID) ([]Dir, error)
	PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error)
	Close() error
}

// Run is one invocation of the cleaner.
type Run struct {
	ID         uuid.UUID
	StartedAt  time.Time
	Duration   time.Duration
	Roots      []string
	Projects   int
	Removed    int
	Failed     int
	FreedBytes int64
	DryRun     bool
	// Dirs are saved with the run but not loaded by ListRuns
	Dirs []Dir
}

// Dir is the outcome for one directory of a run.
type Dir struct {
	Path  string
	Bytes int64
	Error string
}
