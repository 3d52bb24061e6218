package apply

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/anatolykoptev/go-apply/internal/engine"
	"github.com/anatolykoptev/go-apply/internal/engine/board"
)

// limitWait is how long the loop parks when the board reports the daily
// application limit before probing again.
const limitWait = 2 * time.Hour

// Loop walks the shuffled position×location searches, filters tiles and
// dispatches the survivors to the runner. Collect mode records discovered
// jobs without applying.
type Loop struct {
	jobsPage board.JobsPage
	runner   *Runner
	log      *Log
	tracker  *Tracker // nil = tracking disabled
	collect  bool

	titleBlacklist    *Blacklist
	companyBlacklist  *Blacklist
	locationBlacklist *Blacklist

	seen map[string]bool // normalized links seen this run

	skip chan struct{} // operator keystroke skips the current pacing sleep
}

// NewLoop wires the job loop from the engine configuration.
func NewLoop(jobsPage board.JobsPage, runner *Runner, log *Log, tracker *Tracker, collect bool) *Loop {
	return &Loop{
		jobsPage:          jobsPage,
		runner:            runner,
		log:               log,
		tracker:           tracker,
		collect:           collect,
		titleBlacklist:    NewBlacklist(engine.Cfg.TitleBlacklist),
		companyBlacklist:  NewBlacklist(engine.Cfg.CompanyBlacklist),
		locationBlacklist: NewBlacklist(engine.Cfg.LocationBlacklist),
		seen:              make(map[string]bool),
		skip:              make(chan struct{}),
	}
}

// StartSkipListener reads stdin lines; a "y" lets the operator skip the
// current pacing sleep. Call once, from main.
func (l *Loop) StartSkipListener() {
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if strings.EqualFold(strings.TrimSpace(scanner.Text()), "y") {
				select {
				case l.skip <- struct{}{}:
				default:
				}
			}
		}
	}()
}

// Run walks every position×location search until exhaustion or cancellation.
func (l *Loop) Run(ctx context.Context) error {
	searches := searchProduct(engine.Cfg.Positions, engine.Cfg.Locations)
	rand.Shuffle(len(searches), func(i, j int) { searches[i], searches[j] = searches[j], searches[i] })

	pageSleep := 0
	minPageTime := time.Now().Add(engine.Cfg.MinSearchTime)

	for _, s := range searches {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Info("searching", slog.String("position", s.position), slog.String("location", s.location))

		for page := 0; ; page++ {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			tiles, err := l.jobsPage.Page(ctx, s.position, s.location, page)
			if err != nil {
				slog.Warn("search page failed", slog.Int("page", page), slog.Any("error", err))
				break
			}
			engine.IncrPagesVisited()
			if len(tiles) == 0 {
				slog.Info("no more jobs on this search", slog.Int("pages", page))
				break
			}

			for _, tile := range tiles {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				l.processTile(ctx, tile)
			}

			// Guarantee the minimum elapsed time per search cycle.
			l.waitOrSkip(ctx, time.Until(minPageTime))
			minPageTime = time.Now().Add(engine.Cfg.MinSearchTime)

			pageSleep++
			if pageSleep%5 == 0 {
				l.waitOrSkip(ctx, randDuration(5*time.Second, 34*time.Second))
				pageSleep++
			}
		}

		if pageSleep%5 == 0 {
			l.waitOrSkip(ctx, randDuration(50*time.Second, 90*time.Second))
			pageSleep++
		}
	}

	slog.Info("run complete", slog.String("metrics", "\n"+engine.FormatMetrics()))
	return nil
}

// processTile applies the filter chain and dispatches survivors.
// Filter order: blacklist, previous failure, seen in session, apply-once,
// already-applied method, applicant gate.
func (l *Loop) processTile(ctx context.Context, tile board.Tile) {
	job := board.TileToJob(tile)

	if l.collect {
		// Record the full posting, not just the tile: fetch the description
		// when the search source can provide it.
		if d, ok := l.jobsPage.(board.Describer); ok {
			if err := d.Describe(ctx, job); err != nil {
				slog.Debug("describe during collect failed", slog.Any("error", err))
			}
		}
		if err := l.log.Append(OutcomeCollected, job, "", 0); err != nil {
			slog.Warn("collect append failed", slog.Any("error", err))
		}
		return
	}

	switch {
	case l.titleBlacklist.Match(job.Title):
		l.recordSkip(ctx, job, OutcomeSkippedBlacklist, "title blacklisted", 0)
		return
	case l.companyBlacklist.Match(job.Company):
		l.recordSkip(ctx, job, OutcomeSkippedBlacklist, "company blacklisted", 0)
		return
	case l.locationBlacklist.Match(job.Location):
		l.recordSkip(ctx, job, OutcomeSkippedBlacklist, "location blacklisted", 0)
		return
	}

	if l.log.LinkInFailed(job.Link) {
		l.recordSkip(ctx, job, OutcomeSkippedDuplicate, "previously failed", 0)
		return
	}
	if l.seen[job.Link] {
		l.recordSkip(ctx, job, OutcomeSkippedDuplicate, "seen this run", 0)
		return
	}
	l.seen[job.Link] = true

	if engine.Cfg.ApplyOnceAtCompany && l.log.CompanyInSuccess(job.Company) {
		l.recordSkip(ctx, job, OutcomeSkippedApplyOnce, "already applied at company", 0)
		return
	}
	if job.ApplyMethod == board.ApplyApplied || job.ApplyMethod == board.ApplyContinue {
		l.recordSkip(ctx, job, OutcomeSkippedDuplicate, "already applied", 0)
		return
	}

	if count, outside := applicantsOutsideThreshold(tile.ApplicantsText); outside {
		l.recordSkip(ctx, job, OutcomeSkippedApplicants, "applicant count outside threshold", count)
		return
	}

	l.dispatch(ctx, job)
}

// dispatch runs the job, waiting out the daily application limit when the
// board reports one.
func (l *Loop) dispatch(ctx context.Context, job *board.Job) {
	for {
		_, err := l.runner.Apply(ctx, job)
		if err == nil || !errors.Is(err, ErrApplicationLimit) {
			return
		}
		if ctx.Err() != nil {
			return
		}
		slog.Warn("application limit reached, waiting", slog.Duration("wait", limitWait))
		l.waitOrSkip(ctx, limitWait)
	}
}

func (l *Loop) recordSkip(ctx context.Context, job *board.Job, outcome Outcome, reason string, applicants int) {
	if err := l.log.Append(outcome, job, reason, applicants); err != nil {
		slog.Warn("outcome append failed", slog.Any("error", err))
	}
	engine.IncrApplicationsSkipped()
	if l.tracker != nil {
		if err := l.tracker.Record(ctx, job, outcome); err != nil {
			slog.Debug("tracker record failed", slog.Any("error", err))
		}
	}
}

// applicantsOutsideThreshold parses "N applicants" text and checks the
// configured gate. "Over N" counts as N+1. Unparsable counts pass the gate.
func applicantsOutsideThreshold(text string) (int, bool) {
	min, max := engine.Cfg.MinApplicants, engine.Cfg.MaxApplicants
	if max <= 0 || text == "" {
		return 0, false
	}
	count, ok := engine.ExtractNumber(text)
	if !ok {
		return 0, false
	}
	if strings.Contains(strings.ToLower(text), "over") {
		count++
	}
	return count, count < min || count > max
}

// waitOrSkip sleeps for d, unless the operator skips it or the context ends.
func (l *Loop) waitOrSkip(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	slog.Info("pacing sleep (press y + enter to skip)", slog.Duration("duration", d))

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-l.skip:
		slog.Debug("pacing sleep skipped by operator")
	case <-ctx.Done():
	}
}

type search struct {
	position string
	location string
}

// searchProduct is the cartesian product of positions and locations.
func searchProduct(positions, locations []string) []search {
	out := make([]search, 0, len(positions)*len(locations))
	for _, p := range positions {
		for _, loc := range locations {
			out = append(out, search{position: p, location: loc})
		}
	}
	return out
}
