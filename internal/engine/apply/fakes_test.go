package apply

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go-apply/internal/engine/board"
)

// fakeCompleter replies in order; error entries fail the call.
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

type fakeSection struct {
	label      string
	text       string
	fileInput  bool
	datePicker bool
	radio      []string
	dropdown   []string
	inputs     []board.TextInput

	setText        string
	selectedRadio  string
	selectedDrop   string
	setDate        string
	uploadedPath   string
	termsAccepted  bool
}

func (s *fakeSection) Label() string                 { return s.label }
func (s *fakeSection) Text() string                  { return s.text }
func (s *fakeSection) HasFileInput() bool            { return s.fileInput }
func (s *fakeSection) HasDatePicker() bool           { return s.datePicker }
func (s *fakeSection) RadioOptions() []string        { return s.radio }
func (s *fakeSection) DropdownOptions() []string     { return s.dropdown }
func (s *fakeSection) TextInputs() []board.TextInput { return s.inputs }

func (s *fakeSection) SetText(_ context.Context, v string) error {
	s.setText = v
	return nil
}

func (s *fakeSection) SelectRadio(_ context.Context, option string) error {
	for _, o := range s.radio {
		if o == option {
			s.selectedRadio = option
			return nil
		}
	}
	return fmt.Errorf("no such radio option: %q", option)
}

func (s *fakeSection) SelectDropdown(_ context.Context, option string) error {
	for _, o := range s.dropdown {
		if o == option {
			s.selectedDrop = option
			return nil
		}
	}
	return fmt.Errorf("no such dropdown option: %q", option)
}

func (s *fakeSection) SetDate(_ context.Context, iso string) error {
	s.setDate = iso
	return nil
}

func (s *fakeSection) UploadFile(_ context.Context, path string) error {
	s.uploadedPath = path
	return nil
}

func (s *fakeSection) AcceptTerms(context.Context) error {
	s.termsAccepted = true
	return nil
}

type fakeForm struct {
	pages   [][]board.FormSection
	pageIdx int

	inlineErr string // reported by CheckErrors on every page when set

	submitted  bool
	saved      int
	discarded  int
}

func (f *fakeForm) Sections() ([]board.FormSection, error) {
	if f.pageIdx >= len(f.pages) {
		return nil, nil
	}
	return f.pages[f.pageIdx], nil
}

func (f *fakeForm) HasNext() bool   { return f.pageIdx < len(f.pages)-1 }
func (f *fakeForm) HasSubmit() bool { return f.pageIdx == len(f.pages)-1 }

func (f *fakeForm) ClickNext(context.Context) error {
	f.pageIdx++
	return nil
}

func (f *fakeForm) ClickSubmit(context.Context) error {
	f.submitted = true
	return nil
}

func (f *fakeForm) CheckErrors() error {
	if f.inlineErr != "" {
		return errors.New(f.inlineErr)
	}
	return nil
}

func (f *fakeForm) SaveDraft(context.Context) error {
	f.saved++
	return nil
}

func (f *fakeForm) DiscardDraft(context.Context) error {
	f.discarded++
	return nil
}

type fakeJobPage struct {
	url       string
	desc      string
	recruiter string
	limit     bool
	form      *fakeForm

	applyErrs   []error // consumed per ClickApply attempt; nil = success
	applyClicks int
	reloads     int

	// when set, Reload clears the premium redirect after this many reloads
	premiumClearAfter int
}

func (p *fakeJobPage) URL() string { return p.url }

func (p *fakeJobPage) Reload(context.Context) error {
	p.reloads++
	if p.premiumClearAfter > 0 && p.reloads >= p.premiumClearAfter {
		p.url = "https://example.com/jobs/view/1000000001"
	}
	return nil
}

func (p *fakeJobPage) Description(context.Context) (string, error) {
	return p.desc, nil
}

func (p *fakeJobPage) RecruiterLink() string { return p.recruiter }

func (p *fakeJobPage) ClickApply(context.Context) error {
	var err error
	if p.applyClicks < len(p.applyErrs) {
		err = p.applyErrs[p.applyClicks]
	}
	p.applyClicks++
	return err
}

func (p *fakeJobPage) ApplicationLimit() bool { return p.limit }

func (p *fakeJobPage) Form() (board.ApplicationPage, error) {
	if p.form == nil {
		return nil, errors.New("no form")
	}
	return p.form, nil
}

type fakeSession struct {
	page *fakeJobPage
	err  error
}

func (s *fakeSession) OpenJob(context.Context, *board.Job) (board.JobPage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

// fakeJobsPage serves scripted result pages per search, then empties.
type fakeJobsPage struct {
	tiles     [][]board.Tile // consumed page by page, shared across searches
	calls     int
	described []string // job IDs described, in order
}

func (j *fakeJobsPage) Page(_ context.Context, _, _ string, page int) ([]board.Tile, error) {
	j.calls++
	if page >= len(j.tiles) {
		return nil, nil
	}
	return j.tiles[page], nil
}

func (j *fakeJobsPage) Describe(_ context.Context, job *board.Job) error {
	j.described = append(j.described, job.ID)
	job.Description = "posting " + job.ID
	return nil
}

// fakeDescriber stands in for the guest-API posting fetch.
type fakeDescriber struct {
	description string // empty = fetch failure
	calls       int
}

func (d *fakeDescriber) Describe(_ context.Context, job *board.Job) error {
	d.calls++
	if d.description == "" {
		return errors.New("no description found")
	}
	job.Description = d.description
	return nil
}
