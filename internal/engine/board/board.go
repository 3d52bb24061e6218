// Package board defines the job-board domain model and the collaborator
// interfaces the pipeline drives: the search page, the posting page, and the
// application form. The guest-API implementation in linkedin.go covers search
// and posting content; the form collaborators are satisfied by whatever
// browser driver the operator wires in.
package board

import (
	"context"

	"github.com/anatolykoptev/go-apply/internal/engine"
)

// ApplyMethod describes how a posting accepts applications.
type ApplyMethod string

const (
	ApplyEasy     ApplyMethod = "easy"     // in-site flow, the only one automated
	ApplyExternal ApplyMethod = "external" // redirects to a third-party ATS
	ApplyApplied  ApplyMethod = "applied"  // the account already applied
	ApplyContinue ApplyMethod = "continue" // a draft application exists
)

// QuestionKind classifies one form question.
type QuestionKind string

const (
	KindRadio          QuestionKind = "radio"
	KindDropdown       QuestionKind = "dropdown"
	KindTextboxText    QuestionKind = "textbox_text"
	KindTextboxNumeric QuestionKind = "textbox_numeric"
	KindDate           QuestionKind = "date"
	KindUpload         QuestionKind = "upload"
	KindTerms          QuestionKind = "terms"
)

// Job is the identity of one posting. Created from a tile, mutated only by
// the runner and the artifact generator, discarded at the end of the per-job
// iteration.
type Job struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title"`
	Company              string      `json:"company"`
	Location             string      `json:"location"`
	Link                 string      `json:"link"`
	ApplyMethod          ApplyMethod `json:"apply_method"`
	Description          string      `json:"description,omitempty"`
	SummarizedDescription string     `json:"summarized_description,omitempty"`
	RecruiterLink        string      `json:"recruiter_link,omitempty"`
	ResumePath           string      `json:"resume_path,omitempty"`
	CoverLetterPath      string      `json:"cover_letter_path,omitempty"`
}

// Tile is one entry in the paginated search-results list.
type Tile struct {
	Title          string
	Company        string
	Location       string
	Link           string
	ApplyMethod    ApplyMethod
	Posted         string
	ApplicantsText string // raw "N applicants" text when the tile carries one
}

// TileToJob builds a Job from a tile. The link is normalized so the same
// posting seen with different tracking parameters dedups to one key.
func TileToJob(t Tile) *Job {
	link := engine.NormalizeLink(t.Link)
	method := t.ApplyMethod
	if method == "" {
		method = ApplyEasy
	}
	return &Job{
		ID:          ExtractJobID(link),
		Title:       t.Title,
		Company:     t.Company,
		Location:    t.Location,
		Link:        link,
		ApplyMethod: method,
	}
}

// JobsPage is the search-results collaborator (read-only to the job loop).
type JobsPage interface {
	// Page fetches one results page for a position×location search.
	// An empty slice means the search is exhausted.
	Page(ctx context.Context, position, location string, page int) ([]Tile, error)
}

// Describer fills a job's description and recruiter link straight from the
// posting page, without a browser session. The guest API implements it; the
// runner uses it when the opened page yields no description, and collect mode
// uses it to record full postings.
type Describer interface {
	Describe(ctx context.Context, job *Job) error
}

// Session opens postings for application. Implementations wrap the browser
// driver; tests wrap fakes.
type Session interface {
	OpenJob(ctx context.Context, job *Job) (JobPage, error)
}

// JobPage is one opened posting (read-only to the runner except for
// navigation).
type JobPage interface {
	URL() string
	Reload(ctx context.Context) error
	Description(ctx context.Context) (string, error)
	RecruiterLink() string
	// ClickApply runs one pass over the apply-button search strategies and
	// clicks the first hit. The runner refreshes and retries once on failure.
	ClickApply(ctx context.Context) error
	// ApplicationLimit reports whether the board shows the daily
	// application-limit banner.
	ApplicationLimit() bool
	Form() (ApplicationPage, error)
}

// ApplicationPage is the in-flow application form.
type ApplicationPage interface {
	Sections() ([]FormSection, error)
	HasNext() bool
	ClickNext(ctx context.Context) error
	HasSubmit() bool
	ClickSubmit(ctx context.Context) error
	// CheckErrors returns an error when inline error markers are present.
	CheckErrors() error
	SaveDraft(ctx context.Context) error
	DiscardDraft(ctx context.Context) error
}

// TextInput describes one text-like input inside a section, for
// numeric-vs-free-text discrimination.
type TextInput struct {
	Type string // declared input type: "text", "number", "textarea", ...
	ID   string
}

// FormSection is an opaque handle to one question's DOM sub-tree. The
// classifier queries it through these accessors; the handler drives it
// through the setters.
type FormSection interface {
	// Label returns the question text.
	Label() string
	// Text returns all visible text, for terms-phrase matching.
	Text() string

	HasFileInput() bool
	HasDatePicker() bool
	RadioOptions() []string
	DropdownOptions() []string
	TextInputs() []TextInput

	SetText(ctx context.Context, value string) error
	SelectRadio(ctx context.Context, option string) error
	SelectDropdown(ctx context.Context, option string) error
	SetDate(ctx context.Context, iso string) error
	UploadFile(ctx context.Context, path string) error
	AcceptTerms(ctx context.Context) error
}
