package apply

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go-apply/internal/engine/board"
)

// Outcome classifies how a dispatched job ended. Every job produces exactly
// one record in exactly one outcome file.
type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeSkippedBlacklist   Outcome = "skipped_blacklist"
	OutcomeSkippedDuplicate   Outcome = "skipped_duplicate"
	OutcomeSkippedUnsuitable  Outcome = "skipped_unsuitable"
	OutcomeSkippedApplyOnce   Outcome = "skipped_apply_once_at_company"
	OutcomeSkippedApplicants  Outcome = "skipped_due_to_applicants"
	OutcomeFailed             Outcome = "failed"
	OutcomeCollected          Outcome = "data" // collect mode, not an application
)

// Record is one line of an outcome log.
type Record struct {
	RunID           string `json:"run_id,omitempty"`
	Company         string `json:"company"`
	JobTitle        string `json:"job_title"`
	Link            string `json:"link"`
	JobRecruiter    string `json:"job_recruiter,omitempty"`
	JobLocation     string `json:"job_location,omitempty"`
	PDFPath         string `json:"pdf_path,omitempty"`
	Reason          string `json:"reason,omitempty"`
	ApplicantsCount int    `json:"applicants_count,omitempty"`
}

// outcomeFile maps an outcome to its JSON log file.
func outcomeFile(o Outcome) string {
	switch o {
	case OutcomeSuccess:
		return "success.json"
	case OutcomeFailed:
		return "failed.json"
	case OutcomeSkippedApplicants:
		return "skipped_due_to_applicants.json"
	case OutcomeCollected:
		return "data.json"
	default:
		return "skipped.json"
	}
}

// Log appends application records to per-outcome JSON array files in dir.
// Single writer per process; updates are read-modify-truncate.
type Log struct {
	dir   string
	runID string
}

// NewLog opens the outcome log directory, creating it if missing.
func NewLog(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("outcomes: mkdir %s: %w", dir, err)
	}
	return &Log{dir: dir, runID: uuid.NewString()}, nil
}

// Append writes one record for a job to the outcome's file.
func (l *Log) Append(outcome Outcome, job *board.Job, reason string, applicants int) error {
	rec := Record{
		RunID:           l.runID,
		Company:         job.Company,
		JobTitle:        job.Title,
		Link:            job.Link,
		JobRecruiter:    job.RecruiterLink,
		JobLocation:     job.Location,
		PDFPath:         job.ResumePath,
		Reason:          reason,
		ApplicantsCount: applicants,
	}

	path := filepath.Join(l.dir, outcomeFile(outcome))
	records := readRecords(path)
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("outcomes: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("outcomes: write %s: %w", path, err)
	}
	slog.Info("outcome recorded",
		slog.String("outcome", string(outcome)),
		slog.String("company", job.Company),
		slog.String("title", job.Title),
		slog.String("reason", reason))
	return nil
}

// CompanyInSuccess reports whether a company already has a successful
// application, matched by lower-cased company name.
func (l *Log) CompanyInSuccess(company string) bool {
	want := strings.ToLower(strings.TrimSpace(company))
	for _, r := range readRecords(filepath.Join(l.dir, "success.json")) {
		if strings.ToLower(strings.TrimSpace(r.Company)) == want {
			return true
		}
	}
	return false
}

// LinkInFailed reports whether a posting link already failed in a previous
// run.
func (l *Log) LinkInFailed(link string) bool {
	for _, r := range readRecords(filepath.Join(l.dir, "failed.json")) {
		if r.Link == link {
			return true
		}
	}
	return false
}

// readRecords loads a record file; missing or malformed files read as empty.
func readRecords(path string) []Record {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("outcomes: malformed file, treating as empty", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	return records
}
