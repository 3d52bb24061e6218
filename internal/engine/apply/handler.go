package apply

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go-apply/internal/engine"
	"github.com/anatolykoptev/go-apply/internal/engine/answers"
	"github.com/anatolykoptev/go-apply/internal/engine/artifacts"
	"github.com/anatolykoptev/go-apply/internal/engine/board"
)

// Handler answers one classified form section at a time: cache first, LLM on
// miss, then drives the field to the chosen value.
type Handler struct {
	store         *answers.Store
	answerer      *answers.Answerer
	generator     *artifacts.Generator
	resumePDFPath string // pre-supplied resume; replaces per-job generation
}

// NewHandler wires the question handler.
func NewHandler(store *answers.Store, a *answers.Answerer, g *artifacts.Generator, resumePDFPath string) *Handler {
	return &Handler{store: store, answerer: a, generator: g, resumePDFPath: resumePDFPath}
}

// HandleSection classifies and answers one form section. Unclassifiable
// sections are left untouched and reported handled=false.
func (h *Handler) HandleSection(ctx context.Context, app *Application, sec board.FormSection) (handled bool, err error) {
	field, ok := Classify(sec)
	if !ok {
		slog.Debug("section not classified", slog.String("label", sec.Label()))
		return false, nil
	}

	switch field.Kind {
	case board.KindUpload:
		err = h.handleUpload(ctx, app, sec, field)
	case board.KindTerms:
		err = h.handleTerms(ctx, app, sec, field)
	default:
		err = h.handleQuestion(ctx, app, sec, field)
	}
	if err != nil {
		return true, err
	}
	engine.IncrQuestionsAnswered()
	return true, nil
}

// handleQuestion runs the cache-first answer flow for value-bearing fields.
// Cover-letter fields bypass the cache in both directions.
func (h *Handler) handleQuestion(ctx context.Context, app *Application, sec board.FormSection, field Field) error {
	isCoverLetter := strings.Contains(strings.ToLower(field.Question), "cover letter")

	var answer string
	var cached bool
	if !isCoverLetter {
		answer, cached = h.store.Lookup(field.Kind, field.Question)
	}

	if !cached {
		var err error
		answer, err = h.generate(ctx, field, isCoverLetter)
		if err != nil {
			return err
		}
		if !isCoverLetter {
			if err := h.store.Save(field.Kind, field.Question, answer, app.Job.Company); err != nil {
				slog.Warn("answer cache save failed", slog.Any("error", err))
			}
		}
	}

	if err := h.drive(ctx, sec, field, answer); err != nil {
		return fmt.Errorf("drive %s %q: %w", field.Kind, field.Question, err)
	}
	app.Record(field.Kind, field.Question, answer)
	return nil
}

// generate dispatches a cache miss to the matching answer-engine operation.
func (h *Handler) generate(ctx context.Context, field Field, isCoverLetter bool) (string, error) {
	switch field.Kind {
	case board.KindRadio, board.KindDropdown:
		return h.answerer.AnswerFromOptions(ctx, field.Question, field.Options), nil
	case board.KindTextboxNumeric:
		return strconv.Itoa(h.answerer.AnswerNumeric(ctx, field.Question)), nil
	case board.KindDate:
		return h.answerer.AnswerDate(ctx, field.Question), nil
	case board.KindTextboxText:
		if isCoverLetter {
			return h.answerer.CoverLetter(ctx)
		}
		return h.answerer.AnswerTextual(ctx, field.Question)
	}
	return "", fmt.Errorf("no answer strategy for kind %s", field.Kind)
}

// drive sets the field to the answer. Radio and dropdown answers that match
// no option literally fall back to the last option.
func (h *Handler) drive(ctx context.Context, sec board.FormSection, field Field, answer string) error {
	switch field.Kind {
	case board.KindRadio:
		return sec.SelectRadio(ctx, pickOption(answer, field.Options))
	case board.KindDropdown:
		return sec.SelectDropdown(ctx, pickOption(answer, field.Options))
	case board.KindDate:
		return sec.SetDate(ctx, answer)
	default:
		return sec.SetText(ctx, answer)
	}
}

// pickOption returns answer when it is literally one of the options,
// otherwise the last option.
func pickOption(answer string, options []string) string {
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(answer), opt) {
			return opt
		}
	}
	if len(options) == 0 {
		return answer
	}
	return options[len(options)-1]
}

// handleTerms accepts a mandatory terms checkbox.
func (h *Handler) handleTerms(ctx context.Context, app *Application, sec board.FormSection, field Field) error {
	if err := sec.AcceptTerms(ctx); err != nil {
		return fmt.Errorf("accept terms: %w", err)
	}
	app.Record(board.KindTerms, field.Question, "accepted")
	return nil
}

// handleUpload resolves whether the field wants the resume or a cover
// letter, produces the artifact if needed, and uploads it.
func (h *Handler) handleUpload(ctx context.Context, app *Application, sec board.FormSection, field Field) error {
	target := h.answerer.ClassifyUploadTarget(ctx, field.Question)

	var path string
	var err error
	if target == answers.SectionCoverLetter {
		path, err = h.generator.GenerateCoverLetterPDF(ctx)
		if err != nil {
			return err
		}
		app.CoverLetterPath = path
		app.Job.CoverLetterPath = path
	} else {
		if path, err = h.ResumeArtifact(ctx, app); err != nil {
			return err
		}
		app.ResumePath = path
		app.Job.ResumePath = path
	}

	if err := sec.UploadFile(ctx, path); err != nil {
		return fmt.Errorf("upload %s: %w", target, err)
	}
	app.Record(board.KindUpload, field.Question, path)
	return nil
}

// ResumeArtifact returns the resume PDF representing this application: the
// pre-supplied file when readable, a freshly tailored one otherwise.
func (h *Handler) ResumeArtifact(ctx context.Context, app *Application) (string, error) {
	if path := h.resumePath(ctx, app); path != "" {
		return path, nil
	}
	return h.generator.GenerateResumePDF(ctx)
}

// resumePath returns the pre-supplied resume when it is set and readable.
func (h *Handler) resumePath(_ context.Context, app *Application) string {
	if app.ResumePath != "" {
		return app.ResumePath
	}
	if h.resumePDFPath == "" {
		return ""
	}
	if _, err := os.Stat(h.resumePDFPath); err != nil {
		slog.Warn("supplied resume not readable, generating instead",
			slog.String("path", h.resumePDFPath), slog.Any("error", err))
		return ""
	}
	return h.resumePDFPath
}
