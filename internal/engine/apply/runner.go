package apply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/anatolykoptev/go-apply/internal/engine"
	"github.com/anatolykoptev/go-apply/internal/engine/answers"
	"github.com/anatolykoptev/go-apply/internal/engine/board"
)

// ErrApplicationLimit is returned when the board reports the daily Easy
// Apply limit. The job loop waits it out and retries.
var ErrApplicationLimit = errors.New("application limit reached")

// premiumReloadAttempts bounds recovery from paywalled redirects.
const premiumReloadAttempts = 3

// maxFormPages guards against a form that never exposes a submit affordance.
const maxFormPages = 50

// Runner drives one job from an opened posting to submission or abort:
// describe, summarize, suitability gate, apply click, form pages, submit.
type Runner struct {
	session   board.Session
	describer board.Describer // nil = the opened page is the only description source
	answerer  *answers.Answerer
	handler   *Handler
	log       *Log
	tracker   *Tracker // nil = tracking disabled
	appsDir   string

	sleep func(time.Duration)
}

// NewRunner wires the per-job state machine.
func NewRunner(session board.Session, describer board.Describer, a *answers.Answerer, h *Handler, log *Log, tracker *Tracker, appsDir string) *Runner {
	return &Runner{
		session:   session,
		describer: describer,
		answerer:  a,
		handler:   h,
		log:       log,
		tracker:   tracker,
		appsDir:   appsDir,
		sleep:     time.Sleep,
	}
}

// Apply runs the state machine for one job and records exactly one outcome.
// ErrApplicationLimit is the only error surfaced to the loop; everything
// else resolves to an outcome here.
func (r *Runner) Apply(ctx context.Context, job *board.Job) (Outcome, error) {
	outcome, err := r.apply(ctx, job)
	if errors.Is(err, ErrApplicationLimit) {
		return outcome, err
	}
	if err != nil {
		slog.Warn("application aborted",
			slog.String("company", job.Company),
			slog.String("title", job.Title),
			slog.Any("error", err))
	}
	r.record(ctx, job, outcome, errReason(err))
	return outcome, nil
}

func (r *Runner) apply(ctx context.Context, job *board.Job) (Outcome, error) {
	page, err := r.session.OpenJob(ctx, job)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("open: %w", err)
	}

	// S0→S1: describe, recovering from paywalled redirects.
	if err := r.recoverPremium(ctx, page); err != nil {
		return OutcomeFailed, err
	}
	if page.ApplicationLimit() {
		return OutcomeFailed, ErrApplicationLimit
	}
	desc, err := page.Description(ctx)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("describe: %w", err)
	}
	job.Description = desc
	job.RecruiterLink = page.RecruiterLink() // best effort; missing is fine

	// Some postings render their description lazily; fetch it from the guest
	// API instead of summarizing an empty page.
	if job.Description == "" && r.describer != nil {
		if err := r.describer.Describe(ctx, job); err != nil {
			return OutcomeFailed, fmt.Errorf("describe: %w", err)
		}
	}

	// S1→S2: summarize and gate on suitability.
	if err := r.answerer.SetJob(ctx, job); err != nil {
		return OutcomeFailed, fmt.Errorf("summarize: %w", err)
	}
	fit := r.answerer.IsJobSuitable(ctx)
	if !fit.Suitable {
		slog.Info("job not suitable",
			slog.String("company", job.Company),
			slog.String("title", job.Title),
			slog.Int("score", fit.Score),
			slog.String("reason", fit.Reason))
		return OutcomeSkippedUnsuitable, nil
	}

	// S2→S3: apply click, two passes around a page refresh.
	r.pause(1500, 2500)
	if err := page.ClickApply(ctx); err != nil {
		slog.Debug("apply click failed, refreshing", slog.Any("error", err))
		if err := page.Reload(ctx); err != nil {
			return OutcomeFailed, fmt.Errorf("reload before second apply pass: %w", err)
		}
		r.pause(3000, 5000)
		if err := page.ClickApply(ctx); err != nil {
			return OutcomeFailed, fmt.Errorf("apply button not found: %w", err)
		}
	}

	form, err := page.Form()
	if err != nil {
		return OutcomeFailed, fmt.Errorf("application form: %w", err)
	}

	// S3→S4→S5: fill pages until submit.
	app := &Application{Job: job}
	if err := r.fillForm(ctx, form, app); err != nil {
		if saveErr := form.SaveDraft(ctx); saveErr != nil {
			slog.Debug("draft save failed", slog.Any("error", saveErr))
		}
		return OutcomeFailed, err
	}

	// S5: persist the application. A form without an upload field never set
	// the resume path; resolve it now so every submitted application keeps
	// the resume that represents it.
	if app.ResumePath == "" {
		if path, err := r.handler.ResumeArtifact(ctx, app); err != nil {
			slog.Warn("resume artifact unavailable", slog.Any("error", err))
		} else {
			app.ResumePath = path
			job.ResumePath = path
		}
	}
	if err := app.Persist(r.appsDir); err != nil {
		slog.Warn("application persist failed", slog.Any("error", err))
	}
	return OutcomeSuccess, nil
}

// recoverPremium reloads a paywalled redirect up to premiumReloadAttempts.
func (r *Runner) recoverPremium(ctx context.Context, page board.JobPage) error {
	for attempt := 0; strings.Contains(page.URL(), "/premium"); attempt++ {
		if attempt >= premiumReloadAttempts {
			return fmt.Errorf("premium redirect persisted after %d reloads", premiumReloadAttempts)
		}
		slog.Debug("premium redirect, reloading", slog.Int("attempt", attempt+1))
		if err := page.Reload(ctx); err != nil {
			return fmt.Errorf("premium reload: %w", err)
		}
		r.pause(1500, 2500)
	}
	return nil
}

// fillForm iterates form pages: answer every section, then advance. A page
// with a submit affordance ends the flow; inline errors or a page with
// neither affordance abort.
func (r *Runner) fillForm(ctx context.Context, form board.ApplicationPage, app *Application) error {
	for page := 0; page < maxFormPages; page++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		sections, err := form.Sections()
		if err != nil {
			return fmt.Errorf("form sections: %w", err)
		}
		for _, sec := range sections {
			if _, err := r.handler.HandleSection(ctx, app, sec); err != nil {
				r.discard(ctx, form)
				return err
			}
			r.pause(1500, 2500)
		}

		if err := form.CheckErrors(); err != nil {
			r.discard(ctx, form)
			return fmt.Errorf("inline form errors: %w", err)
		}

		switch {
		case form.HasSubmit():
			if err := form.ClickSubmit(ctx); err != nil {
				return fmt.Errorf("submit: %w", err)
			}
			return nil
		case form.HasNext():
			if err := form.ClickNext(ctx); err != nil {
				return fmt.Errorf("next page: %w", err)
			}
			r.pause(3000, 5000)
		default:
			return errors.New("form exposes neither next nor submit")
		}
	}
	return fmt.Errorf("form did not terminate within %d pages", maxFormPages)
}

func (r *Runner) discard(ctx context.Context, form board.ApplicationPage) {
	if err := form.DiscardDraft(ctx); err != nil {
		slog.Debug("draft discard failed", slog.Any("error", err))
	}
}

// record writes the single outcome record for the job and mirrors it into
// the tracker.
func (r *Runner) record(ctx context.Context, job *board.Job, outcome Outcome, reason string) {
	if err := r.log.Append(outcome, job, reason, 0); err != nil {
		slog.Warn("outcome append failed", slog.Any("error", err))
	}
	switch outcome {
	case OutcomeSuccess:
		engine.IncrApplicationsSubmitted()
	case OutcomeFailed:
		engine.IncrApplicationsFailed()
	default:
		engine.IncrApplicationsSkipped()
	}
	if r.tracker != nil {
		if err := r.tracker.Record(ctx, job, outcome); err != nil {
			slog.Debug("tracker record failed", slog.Any("error", err))
		}
	}
}

// pause sleeps a uniformly random duration between min and max milliseconds.
func (r *Runner) pause(minMs, maxMs int) {
	r.sleep(randDuration(time.Duration(minMs)*time.Millisecond, time.Duration(maxMs)*time.Millisecond))
}

// randDuration returns a uniformly random duration in [min, max].
func randDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

func errReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
