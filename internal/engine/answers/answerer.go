package answers

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anatolykoptev/go-apply/internal/engine"
	"github.com/anatolykoptev/go-apply/internal/engine/board"
	"github.com/anatolykoptev/go-apply/internal/engine/profile"
)

// Completer is the LLM capability the answerer needs. *engine.LLMClient
// satisfies it; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// SectionCoverLetter is the extra routing target beyond the resume sections.
const SectionCoverLetter = "cover_letter"

// defaultNumericAnswer is used when the model's numeric reply has no digits.
const defaultNumericAnswer = 3

var (
	scoreRe  = regexp.MustCompile(`(?i)score:\s*(\d+)`)
	reasonRe = regexp.MustCompile(`(?i)reasoning:\s*(.+)`)
	dateRe   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// Answerer generates form answers from the resume profile and the current
// job. One job at a time; SetJob installs the job and summarizes its
// description.
type Answerer struct {
	llm     Completer
	profile *profile.Profile
	job     *board.Job

	now func() time.Time
}

// NewAnswerer builds an answerer over the given LLM client and profile.
func NewAnswerer(llm Completer, p *profile.Profile) *Answerer {
	return &Answerer{llm: llm, profile: p, now: time.Now}
}

// Job returns the currently installed job, or nil.
func (a *Answerer) Job() *board.Job { return a.job }

// SetJob installs the job and fills its summarized description, reusing the
// summary cache when the same description was seen before.
func (a *Answerer) SetJob(ctx context.Context, job *board.Job) error {
	a.job = job
	if job.SummarizedDescription != "" || job.Description == "" {
		return nil
	}

	key := engine.CacheKey("summary", job.Description)
	if cached, ok := engine.CacheGetSummary(ctx, key); ok {
		job.SummarizedDescription = cached
		return nil
	}

	summary, err := a.Summarize(ctx, job.Description)
	if err != nil {
		return err
	}
	job.SummarizedDescription = summary
	engine.CacheSetSummary(ctx, key, summary)
	return nil
}

// Summarize condenses a job description to what an application must address.
func (a *Answerer) Summarize(ctx context.Context, text string) (string, error) {
	out, err := a.llm.Complete(ctx, fmt.Sprintf(summarizePrompt, text))
	if err != nil {
		return "", err
	}
	return engine.StripFences(out), nil
}

// AnswerNumeric answers a numeric question with a non-negative integer.
// Falls back to defaultNumericAnswer when no number can be extracted.
func (a *Answerer) AnswerNumeric(ctx context.Context, question string) int {
	out, err := a.llm.Complete(ctx, fmt.Sprintf(numericPrompt, defaultNumericAnswer, a.profile.Full(), question))
	if err != nil {
		return defaultNumericAnswer
	}
	if n, ok := engine.ExtractNumber(out); ok {
		return n
	}
	return defaultNumericAnswer
}

// AnswerDate answers a date question in ISO format. Falls back to two weeks
// from today when the reply carries no date.
func (a *Answerer) AnswerDate(ctx context.Context, question string) string {
	today := a.now().Format("2006-01-02")
	out, err := a.llm.Complete(ctx, fmt.Sprintf(datePrompt, today, question))
	if err == nil {
		if m := dateRe.FindString(out); m != "" {
			return m
		}
	}
	return a.now().AddDate(0, 0, 14).Format("2006-01-02")
}

// AnswerFromOptions picks one of the given options. The model answers
// free-form; when the reply is not literally an option, the closest option by
// case-insensitive Levenshtein distance wins, so the result is always a
// member of options.
func (a *Answerer) AnswerFromOptions(ctx context.Context, question string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	out, err := a.llm.Complete(ctx, fmt.Sprintf(optionsPrompt, a.profile.Full(), question, strings.Join(options, "; ")))
	if err != nil {
		return options[len(options)-1]
	}
	out = engine.StripFences(out)
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(out), opt) {
			return opt
		}
	}
	return engine.BestMatch(out, options)
}

// AnswerTextual answers a free-text question in two stages: a short routing
// call maps the question to a resume section (or the cover letter), then the
// section-specific prompt answers with only that section as context.
func (a *Answerer) AnswerTextual(ctx context.Context, question string) (string, error) {
	section, err := a.RouteSection(ctx, question)
	if err != nil {
		return "", err
	}
	if section == SectionCoverLetter {
		return a.CoverLetter(ctx)
	}

	sectionText, ok := a.profile.Section(section)
	if !ok {
		sectionText = a.profile.Full()
	}
	guidance := sectionGuidance[section]

	out, err := a.llm.Complete(ctx, fmt.Sprintf(sectionAnswerPrompt, guidance, sectionText, question))
	if err != nil {
		return "", err
	}
	return cleanAnswer(out), nil
}

// RouteSection maps a question to a resume section name or SectionCoverLetter.
// An off-list model reply resolves to the closest known name.
func (a *Answerer) RouteSection(ctx context.Context, question string) (string, error) {
	out, err := a.llm.Complete(ctx, fmt.Sprintf(sectionRouterPrompt, question))
	if err != nil {
		return "", err
	}
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(engine.StripFences(out))), " ", "_")

	candidates := append([]string{}, profile.SectionNames...)
	candidates = append(candidates, SectionCoverLetter)
	for _, c := range candidates {
		if name == c {
			return c, nil
		}
	}
	return engine.BestMatch(name, candidates), nil
}

// CoverLetter writes a cover letter for the current job from the summarized
// description and the full resume.
func (a *Answerer) CoverLetter(ctx context.Context) (string, error) {
	jobContext := ""
	if a.job != nil {
		jobContext = a.job.SummarizedDescription
		if jobContext == "" {
			jobContext = a.job.Description
		}
	}
	out, err := a.llm.Complete(ctx, fmt.Sprintf(coverLetterPrompt, jobContext, a.profile.Full()))
	if err != nil {
		return "", err
	}
	return cleanAnswer(out), nil
}

// ClassifyUploadTarget decides whether an upload heading asks for the resume
// or a cover letter. Ambiguous output defaults to resume.
func (a *Answerer) ClassifyUploadTarget(ctx context.Context, heading string) string {
	out, err := a.llm.Complete(ctx, fmt.Sprintf(uploadTargetPrompt, heading))
	if err != nil {
		return "resume"
	}
	if strings.Contains(strings.ToLower(out), "cover") {
		return SectionCoverLetter
	}
	return "resume"
}

// Suitability is the parsed result of the fit check.
type Suitability struct {
	Suitable bool
	Score    int
	Reason   string
}

// IsJobSuitable scores the current job against the resume. A score at or
// above the configured threshold is suitable. Unparsable output is treated
// as suitable — the gate fails open to maximize coverage.
func (a *Answerer) IsJobSuitable(ctx context.Context) Suitability {
	desc := ""
	if a.job != nil {
		desc = a.job.SummarizedDescription
		if desc == "" {
			desc = a.job.Description
		}
	}
	out, err := a.llm.Complete(ctx, fmt.Sprintf(suitabilityPrompt, desc, a.profile.Full()))
	if err != nil {
		return Suitability{Suitable: true}
	}

	m := scoreRe.FindStringSubmatch(out)
	if m == nil {
		return Suitability{Suitable: true}
	}
	score, _ := engine.ExtractNumber(m[1])
	reason := ""
	if rm := reasonRe.FindStringSubmatch(out); rm != nil {
		reason = strings.TrimSpace(rm[1])
	}
	return Suitability{
		Suitable: score >= engine.Cfg.SuitabilityThreshold,
		Score:    score,
		Reason:   reason,
	}
}

// ResumeHTML produces a tailored resume HTML document for the current job.
func (a *Answerer) ResumeHTML(ctx context.Context) (string, error) {
	desc := ""
	if a.job != nil {
		desc = a.job.SummarizedDescription
		if desc == "" {
			desc = a.job.Description
		}
	}
	out, err := a.llm.Complete(ctx, fmt.Sprintf(resumeHTMLPrompt, desc, a.profile.Full()))
	if err != nil {
		return "", err
	}
	return engine.StripFences(out), nil
}

// cleanAnswer strips fences and leftover placeholder markers from a reply.
func cleanAnswer(s string) string {
	s = engine.StripFences(s)
	s = strings.ReplaceAll(s, "PLACEHOLDER", "")
	return strings.TrimSpace(s)
}
