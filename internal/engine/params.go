package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parameters mirrors the search-configuration YAML file.
type Parameters struct {
	Remote bool `yaml:"remote"`
	Hybrid bool `yaml:"hybrid"`
	Onsite bool `yaml:"onsite"`

	ExperienceLevel map[string]bool `yaml:"experience_level"`
	JobTypes        map[string]bool `yaml:"job_types"`
	Date            string          `yaml:"date"` // 24_hours | week | month | all_time

	Positions []string `yaml:"positions"`
	Locations []string `yaml:"locations"`

	LocationBlacklist []string `yaml:"location_blacklist"`
	CompanyBlacklist  []string `yaml:"company_blacklist"`
	TitleBlacklist    []string `yaml:"title_blacklist"`

	Distance           int  `yaml:"distance"`
	ApplyOnceAtCompany bool `yaml:"apply_once_at_company"`

	JobApplicantsThreshold struct {
		MinApplicants int `yaml:"min_applicants"`
		MaxApplicants int `yaml:"max_applicants"`
	} `yaml:"job_applicants_threshold"`

	SuitabilityThreshold int `yaml:"suitability_threshold"`

	LLMModelType string `yaml:"llm_model_type"` // openai | claude | ollama | gemini | huggingface | perplexity
	LLMModel     string `yaml:"llm_model"`
	LLMAPIURL    string `yaml:"llm_api_url"`

	SortBy string `yaml:"sort_by"` // date | relevance
}

// Secrets mirrors the secrets YAML file. Email/password are optional —
// when absent the operator logs in manually.
type Secrets struct {
	LLMAPIKey string `yaml:"llm_api_key"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
}

// validDistances is the exact set the board's search URL accepts.
var validDistances = map[int]bool{0: true, 5: true, 10: true, 25: true, 50: true, 100: true}

// LoadParameters reads and validates the search-configuration YAML.
func LoadParameters(path string) (*Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var p Parameters
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the parameter set; violations are fatal at startup.
func (p *Parameters) Validate() error {
	if len(p.Positions) == 0 {
		return fmt.Errorf("config: positions must not be empty")
	}
	if len(p.Locations) == 0 {
		return fmt.Errorf("config: locations must not be empty")
	}
	if !validDistances[p.Distance] {
		return fmt.Errorf("config: distance %d not in {0, 5, 10, 25, 50, 100}", p.Distance)
	}
	switch p.Date {
	case "", "24_hours", "week", "month", "all_time":
	default:
		return fmt.Errorf("config: date %q not in {24_hours, week, month, all_time}", p.Date)
	}
	switch p.LLMModelType {
	case "openai", "claude", "ollama", "gemini", "huggingface", "perplexity":
	default:
		return fmt.Errorf("config: llm_model_type %q not supported", p.LLMModelType)
	}
	if p.SuitabilityThreshold < 0 || p.SuitabilityThreshold > 10 {
		return fmt.Errorf("config: suitability_threshold %d not in 0..10", p.SuitabilityThreshold)
	}
	min, max := p.JobApplicantsThreshold.MinApplicants, p.JobApplicantsThreshold.MaxApplicants
	if max > 0 && min > max {
		return fmt.Errorf("config: min_applicants %d exceeds max_applicants %d", min, max)
	}
	return nil
}

// LoadSecrets reads the secrets YAML. llm_api_key is required unless the
// provider is a local one (ollama).
func LoadSecrets(path, modelType string) (*Secrets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("secrets: read %s: %w", path, err)
	}
	var s Secrets
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("secrets: parse %s: %w", path, err)
	}
	if s.LLMAPIKey == "" && modelType != "ollama" {
		return nil, fmt.Errorf("secrets: llm_api_key is required for provider %q", modelType)
	}
	return &s, nil
}
