package answers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/anatolykoptev/go-apply/internal/engine/board"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "answers.json"))
}

func TestStoreSaveAndLookup(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(board.KindTextboxText, "How Many Years of Go?", "5", ""); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Lookup matches on the sanitized question regardless of presentation.
	got, ok := s.Lookup(board.KindTextboxText, "  how many years of go?  ")
	if !ok || got != "5" {
		t.Errorf("Lookup = (%q, %v), want cached answer", got, ok)
	}

	// Same question under a different kind is a different entry.
	if _, ok := s.Lookup(board.KindRadio, "How Many Years of Go?"); ok {
		t.Error("kind mismatch returned a hit")
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	s := NewStore(path)
	if err := s.Save(board.KindDropdown, "Notice period", "1 month", ""); err != nil {
		t.Fatal(err)
	}

	reopened := NewStore(path)
	got, ok := reopened.Lookup(board.KindDropdown, "Notice period")
	if !ok || got != "1 month" {
		t.Errorf("reopened store Lookup = (%q, %v)", got, ok)
	}
}

func TestStoreRejectsCompanyName(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(board.KindTextboxText, "Why do you fit?", "I admire Acme deeply", "Acme"); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Error("company-specific answer was cached")
	}

	// The match is case-sensitive: a different casing does not block the save.
	if err := s.Save(board.KindTextboxText, "Why do you fit?", "I admire acme deeply", "Acme"); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Error("differently-cased company name blocked the save")
	}
}

func TestStoreRejectsExcludedQuestions(t *testing.T) {
	s := newTestStore(t)

	excluded := []string{
		"Why us?",
		"Provide a summary of your experience",
		"Paste your cover letter",
		"Your message to the hiring team",
		"Why do you want to work here?",
	}
	for _, q := range excluded {
		if err := s.Save(board.KindTextboxText, q, "some answer", ""); err != nil {
			t.Fatal(err)
		}
	}
	if s.Len() != 0 {
		t.Errorf("excluded questions cached: %d entries", s.Len())
	}
}

func TestStoreRejectsDuplicatesAndEmpty(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(board.KindRadio, "Do you have a visa?", "Yes", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(board.KindRadio, "do you have a visa?", "No", ""); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Lookup(board.KindRadio, "Do you have a visa?"); got != "Yes" {
		t.Errorf("duplicate save overwrote the original: %q", got)
	}

	if err := s.Save(board.KindRadio, "Another question", "   ", ""); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Error("empty answer was cached")
	}
}

func TestStoreMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if s.Len() != 0 {
		t.Error("malformed file should read as empty")
	}
	// And the store stays usable.
	if err := s.Save(board.KindTextboxText, "q", "a", ""); err != nil {
		t.Fatalf("Save after malformed read: %v", err)
	}
	if s.Len() != 1 {
		t.Error("save after malformed read did not persist")
	}
}
