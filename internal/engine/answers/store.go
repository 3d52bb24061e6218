// Package answers implements the question-answer cache and the LLM-backed
// answer engine used to fill application forms.
package answers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/anatolykoptev/go-apply/internal/engine"
	"github.com/anatolykoptev/go-apply/internal/engine/board"
)

// Entry is one cached answer. Question is stored sanitized; (Kind, Question)
// is unique within the store.
type Entry struct {
	Kind     board.QuestionKind `json:"type"`
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
}

// saveExclusions are question fragments whose answers are inherently
// job-specific and must never be persisted.
var saveExclusions = []string{
	"why us",
	"summary",
	"cover letter",
	"your message",
	"want to work",
}

// Store is the persistent answer cache over a single JSON array file.
// Single writer per process; after every save the backing file is re-read so
// subsequent lookups never trust a stale in-memory copy.
type Store struct {
	path    string
	entries []Entry
}

// NewStore opens the answer store at path. A missing or malformed file is
// treated as empty, never an error.
func NewStore(path string) *Store {
	s := &Store{path: path}
	s.reload()
	return s
}

// reload reads the backing file into memory.
func (s *Store) reload() {
	s.entries = nil
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("answers: read failed, treating as empty", slog.String("path", s.path), slog.Any("error", err))
		}
		return
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("answers: malformed file, treating as empty", slog.String("path", s.path), slog.Any("error", err))
		return
	}
	s.entries = entries
}

// Len returns the number of cached entries.
func (s *Store) Len() int { return len(s.entries) }

// All returns a copy of every cached entry.
func (s *Store) All() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Lookup returns the answer cached for (kind, question), matching on the
// sanitized question. Exact match only — fuzzy reuse drifts.
func (s *Store) Lookup(kind board.QuestionKind, question string) (string, bool) {
	q := engine.SanitizeQuestion(question)
	for _, e := range s.entries {
		if e.Kind == kind && e.Question == q {
			engine.IncrAnswerCacheHits()
			return e.Answer, true
		}
	}
	engine.IncrAnswerCacheMisses()
	return "", false
}

// Save persists an answer unless one of the rejection rules fires:
// an entry with the same (kind, sanitized question) already exists, the
// answer contains the current job's company name, the question matches a
// save-exclusion fragment, or the answer is empty. After a successful write
// the store re-reads the backing file.
func (s *Store) Save(kind board.QuestionKind, question, answer, company string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}
	q := engine.SanitizeQuestion(question)

	if company != "" && strings.Contains(answer, company) {
		slog.Debug("answers: company-specific answer not cached", slog.String("question", q))
		return nil
	}
	for _, frag := range saveExclusions {
		if strings.Contains(q, frag) {
			slog.Debug("answers: excluded question not cached", slog.String("question", q))
			return nil
		}
	}
	for _, e := range s.entries {
		if e.Kind == kind && e.Question == q {
			return nil
		}
	}

	entries := append(s.All(), Entry{Kind: kind, Question: q, Answer: answer})
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("answers: marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("answers: write %s: %w", s.path, err)
	}

	s.reload()
	slog.Debug("answers: cached", slog.String("kind", string(kind)), slog.String("question", q))
	return nil
}
