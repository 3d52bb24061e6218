package answers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/anatolykoptev/go-apply/internal/engine"
	"github.com/anatolykoptev/go-apply/internal/engine/board"
	"github.com/anatolykoptev/go-apply/internal/engine/profile"
)

// fakeCompleter replies in order; an entry of type error fails the call.
type fakeCompleter struct {
	replies []any
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if err, ok := r.(error); ok {
		return "", err
	}
	return r.(string), nil
}

const testProfileYAML = `
personal_information:
  name: Jane Doe
  email: jane@example.com
experience_details:
  - role: Backend Engineer
    years: 6
languages:
  - language: English
    level: fluent
`

func newTestAnswerer(t *testing.T, replies ...any) (*Answerer, *fakeCompleter) {
	t.Helper()
	engine.Init(engine.Config{SuitabilityThreshold: 7})
	p, err := profile.Parse([]byte(testProfileYAML))
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeCompleter{replies: replies}
	return NewAnswerer(f, p), f
}

func TestAnswerNumeric(t *testing.T) {
	a, _ := newTestAnswerer(t, "I would say 6 years")
	if got := a.AnswerNumeric(context.Background(), "Years of Go?"); got != 6 {
		t.Errorf("got %d, want 6", got)
	}
}

func TestAnswerNumericFallback(t *testing.T) {
	a, _ := newTestAnswerer(t, "several")
	if got := a.AnswerNumeric(context.Background(), "Years of Go?"); got != defaultNumericAnswer {
		t.Errorf("got %d, want default %d", got, defaultNumericAnswer)
	}

	a, _ = newTestAnswerer(t, errors.New("llm down"))
	if got := a.AnswerNumeric(context.Background(), "Years of Go?"); got != defaultNumericAnswer {
		t.Errorf("on error got %d, want default %d", got, defaultNumericAnswer)
	}
}

func TestAnswerDate(t *testing.T) {
	a, _ := newTestAnswerer(t, "I can start on 2026-09-15.")
	a.now = func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) }
	if got := a.AnswerDate(context.Background(), "Earliest start date?"); got != "2026-09-15" {
		t.Errorf("got %q", got)
	}
}

func TestAnswerDateFallbackTwoWeeks(t *testing.T) {
	a, _ := newTestAnswerer(t, "as soon as possible")
	a.now = func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) }
	if got := a.AnswerDate(context.Background(), "Earliest start date?"); got != "2026-09-15" {
		t.Errorf("got %q, want today + 14 days", got)
	}
}

func TestAnswerFromOptions(t *testing.T) {
	opts := []string{"0-1", "2-5", "6-10", "10+"}

	a, _ := newTestAnswerer(t, "6-10")
	if got := a.AnswerFromOptions(context.Background(), "Years?", opts); got != "6-10" {
		t.Errorf("literal reply: got %q", got)
	}

	// Free-form reply resolves to the closest option, never leaves the list.
	a, _ = newTestAnswerer(t, "probably 10 or more")
	got := a.AnswerFromOptions(context.Background(), "Years?", opts)
	found := false
	for _, o := range opts {
		if got == o {
			found = true
		}
	}
	if !found {
		t.Errorf("got %q, not a member of options", got)
	}

	// LLM failure falls back to the last option.
	a, _ = newTestAnswerer(t, errors.New("llm down"))
	if got := a.AnswerFromOptions(context.Background(), "Years?", opts); got != "10+" {
		t.Errorf("on error got %q, want last option", got)
	}

	a, _ = newTestAnswerer(t)
	if got := a.AnswerFromOptions(context.Background(), "Years?", nil); got != "" {
		t.Errorf("empty options: got %q", got)
	}
}

func TestRouteSection(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"exact", "experience_details", profile.SectionExperienceDetails},
		{"spaces and case", "Experience Details", profile.SectionExperienceDetails},
		{"cover letter", "Cover Letter", SectionCoverLetter},
		{"off list resolves to closest", "experiense_details", profile.SectionExperienceDetails},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestAnswerer(t, tt.reply)
			got, err := a.RouteSection(context.Background(), "Tell us about your experience")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnswerTextualUsesSectionContext(t *testing.T) {
	a, f := newTestAnswerer(t, "languages", "English and German")
	got, err := a.AnswerTextual(context.Background(), "What languages do you speak?")
	if err != nil {
		t.Fatal(err)
	}
	if got != "English and German" {
		t.Errorf("got %q", got)
	}
	if len(f.prompts) != 2 {
		t.Fatalf("expected routing + answer calls, got %d", len(f.prompts))
	}
	if !strings.Contains(f.prompts[1], "English") {
		t.Error("answer prompt does not carry the routed section")
	}
}

func TestAnswerTextualRoutesToCoverLetter(t *testing.T) {
	a, _ := newTestAnswerer(t, "cover_letter", "Dear team, ...")
	a.job = &board.Job{SummarizedDescription: "Go role"}
	got, err := a.AnswerTextual(context.Background(), "Add a cover letter")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Dear team, ..." {
		t.Errorf("got %q", got)
	}
}

func TestIsJobSuitableThresholdInclusive(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  bool
		score int
	}{
		{"above", "Score: 9\nReasoning: strong match", true, 9},
		{"at threshold", "Score: 7\nReasoning: decent match", true, 7},
		{"below", "Score: 5\nReasoning: weak match", false, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestAnswerer(t, tt.reply)
			a.job = &board.Job{SummarizedDescription: "Go role"}
			fit := a.IsJobSuitable(context.Background())
			if fit.Suitable != tt.want || fit.Score != tt.score {
				t.Errorf("got %+v", fit)
			}
		})
	}
}

func TestIsJobSuitableFailsOpen(t *testing.T) {
	a, _ := newTestAnswerer(t, errors.New("llm down"))
	a.job = &board.Job{Description: "Go role"}
	if fit := a.IsJobSuitable(context.Background()); !fit.Suitable {
		t.Error("LLM failure must not block the application")
	}

	a, _ = newTestAnswerer(t, "I think this job fits you well")
	a.job = &board.Job{Description: "Go role"}
	if fit := a.IsJobSuitable(context.Background()); !fit.Suitable {
		t.Error("unparsable score must not block the application")
	}
}

func TestClassifyUploadTarget(t *testing.T) {
	a, _ := newTestAnswerer(t, "cover_letter")
	if got := a.ClassifyUploadTarget(context.Background(), "Upload your cover letter"); got != SectionCoverLetter {
		t.Errorf("got %q", got)
	}

	a, _ = newTestAnswerer(t, "resume")
	if got := a.ClassifyUploadTarget(context.Background(), "Upload CV"); got != "resume" {
		t.Errorf("got %q", got)
	}

	// Ambiguity and errors default to resume.
	a, _ = newTestAnswerer(t, errors.New("llm down"))
	if got := a.ClassifyUploadTarget(context.Background(), "Attach a file"); got != "resume" {
		t.Errorf("got %q", got)
	}
}

func TestSetJobReusesSummaryCache(t *testing.T) {
	engine.Init(engine.Config{SuitabilityThreshold: 7})
	engine.InitCache("", time.Minute, 100, time.Minute)

	p, err := profile.Parse([]byte(testProfileYAML))
	if err != nil {
		t.Fatal(err)
	}

	f := &fakeCompleter{replies: []any{"condensed summary"}}
	a := NewAnswerer(f, p)

	job := &board.Job{Description: "long description of a Go role"}
	if err := a.SetJob(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	if job.SummarizedDescription != "condensed summary" {
		t.Fatalf("summary not installed: %q", job.SummarizedDescription)
	}

	// Same description again: no LLM call left, must come from cache.
	second := &board.Job{Description: "long description of a Go role"}
	if err := a.SetJob(context.Background(), second); err != nil {
		t.Fatal(err)
	}
	if second.SummarizedDescription != "condensed summary" {
		t.Errorf("cached summary not reused: %q", second.SummarizedDescription)
	}
	if len(f.prompts) != 1 {
		t.Errorf("expected 1 LLM call, got %d", len(f.prompts))
	}
}
