package history

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    run_id       INTEGER PRIMARY KEY AUTOINCREMENT,
    run_uuid     TEXT UNIQUE NOT NULL,
    started_at   INTEGER NOT NULL,
    duration_ms  INTEGER DEFAULT 0,
    roots        TEXT NOT NULL,
    projects     INTEGER DEFAULT 0,
    removed      INTEGER DEFAULT 0,
    failed       INTEGER DEFAULT 0,
    freed_bytes  INTEGER DEFAULT 0,
    dry_run      INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

CREATE TABLE IF NOT EXISTS run_dirs (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id   INTEGER NOT NULL,
    path     TEXT NOT NULL,
    bytes    INTEGER DEFAULT 0,
    error    TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_dirs_run ON run_dirs(run_id);
`
