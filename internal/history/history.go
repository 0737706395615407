// Package history records pipeline runs and their artifacts in a local
// SQLite database, so an operator can see what was built and published for
// which version without digging through logs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Run is one recorded pipeline invocation.
type Run struct {
	ID        string
	Target    string // build | doc | upload
	Package   string
	Version   string
	Commit    string // git HEAD of the working tree, if resolvable
	Status    string // success | failed
	Error     string
	StartedAt time.Time
	Duration  time.Duration
	Artifacts []Artifact
}

// Artifact is one file a run produced or uploaded.
type Artifact struct {
	Path   string
	Kind   string // wheel | sdist | doczip
	SHA256 string
	Size   int64
}

// Open opens (creating if needed) the history database at dbPath.
// Use ":memory:" for tests.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		package TEXT NOT NULL,
		version TEXT NOT NULL,
		commit_hash TEXT,
		status TEXT NOT NULL,
		error TEXT,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS artifacts (
		run_id TEXT NOT NULL REFERENCES runs(id),
		path TEXT NOT NULL,
		kind TEXT NOT NULL,
		sha256 TEXT,
		size INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun inserts a run and its artifacts.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, target, package, version, commit_hash, status, error, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Target, run.Package, run.Version, run.Commit,
		run.Status, run.Error, run.StartedAt.Unix(), run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, a := range run.Artifacts {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO artifacts (run_id, path, kind, sha256, size) VALUES (?, ?, ?, ?, ?)`,
			run.ID, a.Path, a.Kind, a.SHA256, a.Size,
		)
		if err != nil {
			return fmt.Errorf("insert artifact: %w", err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first, with artifacts
// attached.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target, package, version, commit_hash, status, error, started_at, duration_ms
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var started int64
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Target, &r.Package, &r.Version, &r.Commit,
			&r.Status, &r.Error, &started, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		arts, err := s.artifactsFor(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Artifacts = arts
	}
	return runs, nil
}

func (s *Store) artifactsFor(ctx context.Context, runID string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, kind, sha256, size FROM artifacts WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var arts []Artifact
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.Path, &a.Kind, &a.SHA256, &a.Size); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		arts = append(arts, a)
	}
	return arts, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
