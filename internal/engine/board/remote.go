package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-apply/internal/engine"
)

// RemoteSession drives postings through a companion browser-driver service:
// a small HTTP bridge in front of a real logged-in browser. Every interaction
// is one POST /command with a JSON envelope; the bridge owns the DOM.
type RemoteSession struct {
	baseURL string
	client  *http.Client
}

// NewRemoteSession connects to a browser bridge at baseURL.
func NewRemoteSession(baseURL string) *RemoteSession {
	return &RemoteSession{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

type bridgeCommand struct {
	PageID string `json:"page_id,omitempty"`
	Action string `json:"action"`
	Target int    `json:"target,omitempty"` // section index for form actions
	Value  string `json:"value,omitempty"`
}

type bridgeReply struct {
	OK    bool            `json:"ok"`
	Value string          `json:"value,omitempty"`
	JSON  json.RawMessage `json:"json,omitempty"`
	Error string          `json:"error,omitempty"`
}

// do sends one command and returns the reply.
func (s *RemoteSession) do(ctx context.Context, cmd bridgeCommand) (*bridgeReply, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("bridge: marshal command: %w", err)
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/command", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return s.client.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("bridge: %s: %w", cmd.Action, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("bridge: %s: read reply: %w", cmd.Action, err)
	}
	var reply bridgeReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("bridge: %s: decode reply: %w", cmd.Action, err)
	}
	if !reply.OK {
		return nil, fmt.Errorf("bridge: %s: %s", cmd.Action, reply.Error)
	}
	return &reply, nil
}

// OpenJob navigates the bridge browser to the posting.
func (s *RemoteSession) OpenJob(ctx context.Context, job *Job) (JobPage, error) {
	reply, err := s.do(ctx, bridgeCommand{Action: "open", Value: job.Link})
	if err != nil {
		return nil, err
	}
	return &remoteJobPage{session: s, pageID: reply.Value, ctx: ctx}, nil
}

type remoteJobPage struct {
	session *RemoteSession
	pageID  string

	// ctx is the per-job context the page was opened under. The read-only
	// accessors carry no context parameter but must still stop when the job
	// is cancelled; the handle never outlives the job.
	ctx context.Context
}

func (p *remoteJobPage) do(ctx context.Context, action string, target int, value string) (*bridgeReply, error) {
	return p.session.do(ctx, bridgeCommand{PageID: p.pageID, Action: action, Target: target, Value: value})
}

// URL asks the bridge for the current location; an unreachable bridge reads
// as empty, which the premium-recovery check treats as clean.
func (p *remoteJobPage) URL() string {
	reply, err := p.do(p.ctx, "url", 0, "")
	if err != nil {
		return ""
	}
	return reply.Value
}

func (p *remoteJobPage) Reload(ctx context.Context) error {
	_, err := p.do(ctx, "reload", 0, "")
	return err
}

func (p *remoteJobPage) Description(ctx context.Context) (string, error) {
	reply, err := p.do(ctx, "description", 0, "")
	if err != nil {
		return "", err
	}
	return reply.Value, nil
}

func (p *remoteJobPage) RecruiterLink() string {
	reply, err := p.do(p.ctx, "recruiter_link", 0, "")
	if err != nil {
		return ""
	}
	return reply.Value
}

func (p *remoteJobPage) ClickApply(ctx context.Context) error {
	_, err := p.do(ctx, "click_apply", 0, "")
	return err
}

func (p *remoteJobPage) ApplicationLimit() bool {
	reply, err := p.do(p.ctx, "application_limit", 0, "")
	return err == nil && reply.Value == "true"
}

func (p *remoteJobPage) Form() (ApplicationPage, error) {
	return &remoteForm{page: p}, nil
}

type remoteForm struct {
	page *remoteJobPage
}

// sectionSnapshot is the bridge's description of one form question.
type sectionSnapshot struct {
	Index           int         `json:"index"`
	Label           string      `json:"label"`
	Text            string      `json:"text"`
	HasFileInput    bool        `json:"has_file_input"`
	HasDatePicker   bool        `json:"has_date_picker"`
	RadioOptions    []string    `json:"radio_options"`
	DropdownOptions []string    `json:"dropdown_options"`
	TextInputs      []TextInput `json:"text_inputs"`
}

func (f *remoteForm) Sections() ([]FormSection, error) {
	reply, err := f.page.do(f.page.ctx, "sections", 0, "")
	if err != nil {
		return nil, err
	}
	var snaps []sectionSnapshot
	if err := json.Unmarshal(reply.JSON, &snaps); err != nil {
		return nil, fmt.Errorf("bridge: sections: decode: %w", err)
	}
	sections := make([]FormSection, 0, len(snaps))
	for _, snap := range snaps {
		sections = append(sections, &remoteSection{form: f, snap: snap})
	}
	return sections, nil
}

func (f *remoteForm) flag(action string) bool {
	reply, err := f.page.do(f.page.ctx, action, 0, "")
	return err == nil && reply.Value == "true"
}

func (f *remoteForm) HasNext() bool   { return f.flag("has_next") }
func (f *remoteForm) HasSubmit() bool { return f.flag("has_submit") }

func (f *remoteForm) ClickNext(ctx context.Context) error {
	_, err := f.page.do(ctx, "click_next", 0, "")
	return err
}

func (f *remoteForm) ClickSubmit(ctx context.Context) error {
	_, err := f.page.do(ctx, "click_submit", 0, "")
	return err
}

func (f *remoteForm) CheckErrors() error {
	reply, err := f.page.do(f.page.ctx, "form_errors", 0, "")
	if err != nil {
		return err
	}
	if reply.Value != "" {
		return fmt.Errorf("form errors: %s", reply.Value)
	}
	return nil
}

func (f *remoteForm) SaveDraft(ctx context.Context) error {
	_, err := f.page.do(ctx, "save_draft", 0, "")
	return err
}

func (f *remoteForm) DiscardDraft(ctx context.Context) error {
	_, err := f.page.do(ctx, "discard_draft", 0, "")
	return err
}

type remoteSection struct {
	form *remoteForm
	snap sectionSnapshot
}

func (s *remoteSection) Label() string              { return s.snap.Label }
func (s *remoteSection) Text() string               { return s.snap.Text }
func (s *remoteSection) HasFileInput() bool         { return s.snap.HasFileInput }
func (s *remoteSection) HasDatePicker() bool        { return s.snap.HasDatePicker }
func (s *remoteSection) RadioOptions() []string     { return s.snap.RadioOptions }
func (s *remoteSection) DropdownOptions() []string  { return s.snap.DropdownOptions }
func (s *remoteSection) TextInputs() []TextInput    { return s.snap.TextInputs }

func (s *remoteSection) set(ctx context.Context, action, value string) error {
	_, err := s.form.page.do(ctx, action, s.snap.Index, value)
	return err
}

func (s *remoteSection) SetText(ctx context.Context, value string) error {
	return s.set(ctx, "set_text", value)
}

func (s *remoteSection) SelectRadio(ctx context.Context, option string) error {
	return s.set(ctx, "select_radio", option)
}

func (s *remoteSection) SelectDropdown(ctx context.Context, option string) error {
	return s.set(ctx, "select_dropdown", option)
}

func (s *remoteSection) SetDate(ctx context.Context, iso string) error {
	return s.set(ctx, "set_date", iso)
}

func (s *remoteSection) UploadFile(ctx context.Context, path string) error {
	return s.set(ctx, "upload_file", path)
}

func (s *remoteSection) AcceptTerms(ctx context.Context) error {
	return s.set(ctx, "accept_terms", "")
}
