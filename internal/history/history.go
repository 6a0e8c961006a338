// Package history keeps a local ledger of past download runs. It is purely
// for reporting: resumability relies on the archive tree itself, never on
// this database.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tapodump/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	elapsed_seconds INTEGER NOT NULL,
	total_recordings INTEGER NOT NULL,
	successful INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	deleted INTEGER NOT NULL,
	output_dir TEXT NOT NULL,
	interrupted INTEGER NOT NULL DEFAULT 0
);
`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Record(run models.RunRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, elapsed_seconds, total_recordings,
			successful, skipped, failed, deleted, output_dir, interrupted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.StartedAt.Format(time.RFC3339),
		run.ElapsedSeconds,
		run.TotalRecordings,
		run.Successful,
		run.Skipped,
		run.Failed,
		run.Deleted,
		run.OutputDir,
		boolToInt(run.Interrupted),
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.RunID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]models.RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, elapsed_seconds, total_recordings,
			successful, skipped, failed, deleted, output_dir, interrupted
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var runs []models.RunRecord
	for rows.Next() {
		var run models.RunRecord
		var startedAt string
		var interrupted int
		if err := rows.Scan(&run.RunID, &startedAt, &run.ElapsedSeconds, &run.TotalRecordings,
			&run.Successful, &run.Skipped, &run.Failed, &run.Deleted, &run.OutputDir, &interrupted); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run timestamp %q: %w", startedAt, err)
		}
		run.Interrupted = interrupted != 0
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}
	return runs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
