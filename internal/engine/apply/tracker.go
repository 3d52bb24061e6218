package apply

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go-apply/internal/engine/board"
)

// TrackedJob is a single row in the application tracker database.
type TrackedJob struct {
	ID        int64  `json:"id"`
	JobID     string `json:"job_id"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	URL       string `json:"url"`
	Location  string `json:"location,omitempty"`
	Outcome   string `json:"outcome"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Tracker mirrors outcome records into a SQLite database so past runs can be
// queried without parsing the JSON logs.
type Tracker struct {
	db *sql.DB
}

// OpenTracker opens (or creates) the tracker database at path.
func OpenTracker(path string) (*Tracker, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("tracker: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("tracker: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS applications (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id     TEXT,
		title      TEXT NOT NULL,
		company    TEXT NOT NULL,
		url        TEXT,
		location   TEXT,
		outcome    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("tracker: init schema: %w", err)
	}
	return &Tracker{db: db}, nil
}

// Record inserts one outcome row for a job. A job seen again in a later run
// gets a fresh row; history is the point.
func (t *Tracker) Record(ctx context.Context, job *board.Job, outcome Outcome) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO applications (job_id, title, company, url, location, outcome, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Title, job.Company, job.Link, job.Location, string(outcome), now, now,
	)
	if err != nil {
		return fmt.Errorf("tracker: insert: %w", err)
	}
	return nil
}

// List returns tracked applications, newest first, optionally filtered by
// outcome. A non-positive or oversized limit defaults to 50.
func (t *Tracker) List(ctx context.Context, outcome string, limit int) ([]TrackedJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if outcome != "" {
		rows, err = t.db.QueryContext(ctx,
			`SELECT id, job_id, title, company, url, location, outcome, created_at, updated_at
			 FROM applications WHERE outcome = ? ORDER BY id DESC LIMIT ?`,
			outcome, limit,
		)
	} else {
		rows, err = t.db.QueryContext(ctx,
			`SELECT id, job_id, title, company, url, location, outcome, created_at, updated_at
			 FROM applications ORDER BY id DESC LIMIT ?`,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("tracker: query: %w", err)
	}
	defer rows.Close()

	var jobs []TrackedJob
	for rows.Next() {
		var j TrackedJob
		var jobID, url, location sql.NullString
		if err := rows.Scan(&j.ID, &jobID, &j.Title, &j.Company, &url,
			&location, &j.Outcome, &j.CreatedAt, &j.UpdatedAt); err != nil {
			continue
		}
		j.JobID = jobID.String
		j.URL = url.String
		j.Location = location.String
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Close releases the underlying database handle.
func (t *Tracker) Close() error {
	return t.db.Close()
}
