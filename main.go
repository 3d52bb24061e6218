// go-apply — automated Easy Apply pipeline for LinkedIn job postings.
//
// Searches the guest API for matching postings, gates each job with an LLM
// suitability score, answers application forms from a persistent answer
// cache (LLM on miss), and records one outcome per job.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-apply/internal/engine"
	"github.com/anatolykoptev/go-apply/internal/engine/answers"
	"github.com/anatolykoptev/go-apply/internal/engine/apply"
	"github.com/anatolykoptev/go-apply/internal/engine/artifacts"
	"github.com/anatolykoptev/go-apply/internal/engine/board"
	"github.com/anatolykoptev/go-apply/internal/engine/profile"
)

var version = "dev"

var (
	flagConfig  string
	flagSecrets string
	flagProfile string
	flagResume  string
	flagOutput  string
	flagCollect bool
)

func main() {
	root := &cobra.Command{
		Use:     "go-apply",
		Short:   "Automated Easy Apply pipeline",
		Version: version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}
	root.Flags().StringVar(&flagConfig, "config", "config.yaml", "search-configuration YAML")
	root.Flags().StringVar(&flagSecrets, "secrets", "secrets.yaml", "secrets YAML")
	root.Flags().StringVar(&flagProfile, "profile", "plain_text_resume.yaml", "plain-text resume YAML")
	root.Flags().StringVar(&flagResume, "resume", "", "pre-supplied resume PDF (skips tailored generation)")
	root.Flags().StringVar(&flagOutput, "output", "output", "output directory")
	root.Flags().BoolVar(&flagCollect, "collect", false, "collect job data without applying")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()
	initLogging()

	params, err := engine.LoadParameters(flagConfig)
	if err != nil {
		return err
	}
	secrets, err := engine.LoadSecrets(flagSecrets, params.LLMModelType)
	if err != nil {
		return err
	}
	prof, err := profile.Load(flagProfile)
	if err != nil {
		return err
	}

	initEngine(params, secrets)

	provider, err := engine.NewProvider(params.LLMModelType, params.LLMModel, secrets.LLMAPIKey, params.LLMAPIURL)
	if err != nil {
		return err
	}
	llm := engine.NewLLMClient(provider, filepath.Join(flagOutput, "llm_calls.json"))
	engine.Cfg.LLMClient = llm

	store := answers.NewStore(engine.Cfg.AnswersPath)
	answerer := answers.NewAnswerer(llm, prof)
	renderer := artifacts.NewHTTPRenderer(env.Str("RENDER_URL", "http://127.0.0.1:3000/render"))
	generator := artifacts.NewGenerator(answerer, renderer, engine.Cfg.GeneratedDir)
	handler := apply.NewHandler(store, answerer, generator, flagResume)

	log, err := apply.NewLog(flagOutput)
	if err != nil {
		return err
	}
	tracker, err := apply.OpenTracker(filepath.Join(flagOutput, "tracker.db"))
	if err != nil {
		slog.Warn("tracker disabled", slog.Any("error", err))
		tracker = nil
	} else {
		defer tracker.Close()
	}

	var session board.Session
	if !flagCollect {
		session = board.NewRemoteSession(env.Str("BROWSER_URL", "http://127.0.0.1:9515"))
	}
	guest := board.NewGuestBoard()
	runner := apply.NewRunner(session, guest, answerer, handler, log, tracker, engine.Cfg.ApplicationsDir)

	loop := apply.NewLoop(guest, runner, log, tracker, flagCollect)
	loop.StartSkipListener()

	slog.Info("starting go-apply",
		slog.String("version", version),
		slog.Bool("collect", flagCollect),
		slog.Int("positions", len(params.Positions)),
		slog.Int("locations", len(params.Locations)))

	return loop.Run(ctx)
}

func initLogging() {
	level := slog.LevelInfo
	switch env.Str("LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func initEngine(p *engine.Parameters, s *engine.Secrets) {
	c := engine.Config{
		LLMModelType:   p.LLMModelType,
		LLMModel:       p.LLMModel,
		LLMAPIKey:      s.LLMAPIKey,
		LLMAPIBase:     p.LLMAPIURL,
		LLMTemperature: env.Float("LLM_TEMPERATURE", 0.4),

		Positions:        p.Positions,
		Locations:        p.Locations,
		Remote:           p.Remote,
		Hybrid:           p.Hybrid,
		Onsite:           p.Onsite,
		ExperienceLevels: p.ExperienceLevel,
		JobTypes:         p.JobTypes,
		DatePosted:       p.Date,
		Distance:         p.Distance,
		SortBy:           p.SortBy,

		TitleBlacklist:       p.TitleBlacklist,
		CompanyBlacklist:     p.CompanyBlacklist,
		LocationBlacklist:    p.LocationBlacklist,
		ApplyOnceAtCompany:   p.ApplyOnceAtCompany,
		MinApplicants:        p.JobApplicantsThreshold.MinApplicants,
		MaxApplicants:        p.JobApplicantsThreshold.MaxApplicants,
		SuitabilityThreshold: p.SuitabilityThreshold,

		OutputDir:       flagOutput,
		AnswersPath:     filepath.Join(flagOutput, "answers.json"),
		ApplicationsDir: filepath.Join(flagOutput, "applications"),
		GeneratedDir:    filepath.Join(flagOutput, "generated"),
		ResumePDFPath:   flagResume,
		ProfilePath:     flagProfile,

		MinSearchTime: env.Duration("MIN_SEARCH_TIME", 15*time.Minute),
		FetchTimeout:  env.Duration("FETCH_TIMEOUT", 10*time.Second),

		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))
	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}
	bc, err := engine.NewBrowserClient(opts...)
	if err != nil {
		slog.Warn("stealth client init failed, guest fetches use net/http", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
	}

	engine.Init(c)
	engine.InitCache(
		env.Str("REDIS_URL", ""),
		env.Duration("CACHE_TTL", 24*time.Hour),
		env.Int("CACHE_MAX_ENTRIES", 1000),
		env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
	)

	if s.Email != "" {
		slog.Info("account credentials loaded", slog.String("email", s.Email))
	}
}
