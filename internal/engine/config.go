package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	// LLM provider selection.
	LLMModelType   string // openai | claude | ollama | gemini | huggingface | perplexity
	LLMModel       string
	LLMAPIKey      string
	LLMAPIBase     string
	LLMTemperature float64
	LLMClient      *LLMClient

	// Search scope.
	Positions        []string
	Locations        []string
	Remote           bool
	Hybrid           bool
	Onsite           bool
	ExperienceLevels map[string]bool
	JobTypes         map[string]bool
	DatePosted       string // 24_hours | week | month | all_time
	Distance         int
	SortBy           string // date | relevance

	// Filters.
	TitleBlacklist       []string
	CompanyBlacklist     []string
	LocationBlacklist    []string
	ApplyOnceAtCompany   bool
	MinApplicants        int
	MaxApplicants        int
	SuitabilityThreshold int

	// Paths.
	OutputDir       string
	AnswersPath     string
	ApplicationsDir string
	GeneratedDir    string
	ResumePDFPath   string // optional pre-supplied resume; replaces per-job generation
	ProfilePath     string

	// Pacing.
	MinSearchTime time.Duration // minimum elapsed time per position×location cycle
	FetchTimeout  time.Duration

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = guest API fetched via HTTPClient
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (answers, board, apply).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.SuitabilityThreshold == 0 {
		c.SuitabilityThreshold = 7
	}
	if c.MinSearchTime == 0 {
		c.MinSearchTime = 15 * time.Minute
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 10 * time.Second
	}
	cfg = c
	Cfg = &cfg
}
