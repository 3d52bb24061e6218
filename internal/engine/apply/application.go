package apply

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/anatolykoptev/go-apply/internal/engine/board"
)

// RecordedQuestion is one answered question on an application, in the order
// it was encountered.
type RecordedQuestion struct {
	Kind     board.QuestionKind `json:"type"`
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
}

// Application is the transient record of one application attempt.
type Application struct {
	Job             *board.Job         `json:"job"`
	Questions       []RecordedQuestion `json:"questions"`
	ResumePath      string             `json:"resume_path,omitempty"`
	CoverLetterPath string             `json:"cover_letter_path,omitempty"`
}

// Record appends one answered question.
func (a *Application) Record(kind board.QuestionKind, question, answer string) {
	a.Questions = append(a.Questions, RecordedQuestion{Kind: kind, Question: question, Answer: answer})
}

// Persist writes the application directory for a submitted application:
// <baseDir>/<job_id> - <company> <title>/ with job_application.json,
// job_description.json, resume.pdf and optional cv.pdf.
func (a *Application) Persist(baseDir string) error {
	dir := filepath.Join(baseDir, fmt.Sprintf("%s - %s %s", a.Job.ID, a.Job.Company, a.Job.Title))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("application: mkdir %s: %w", dir, err)
	}

	if err := writeJSON(filepath.Join(dir, "job_application.json"), a.Questions); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "job_description.json"), a.Job); err != nil {
		return err
	}

	if a.ResumePath != "" {
		if err := copyFile(a.ResumePath, filepath.Join(dir, "resume.pdf")); err != nil {
			return fmt.Errorf("application: copy resume: %w", err)
		}
	}
	if a.CoverLetterPath != "" {
		if err := copyFile(a.CoverLetterPath, filepath.Join(dir, "cv.pdf")); err != nil {
			return fmt.Errorf("application: copy cover letter: %w", err)
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("application: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("application: write %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
