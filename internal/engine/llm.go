package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/huggingface"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Completion is one LLM reply with usage accounting.
type Completion struct {
	Content      string
	ModelName    string
	FinishReason string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Provider is the single capability the engine needs from an LLM backend.
type Provider interface {
	Invoke(ctx context.Context, prompt string) (*Completion, error)
}

// transientRetryWait is the sleep applied on non-429 provider errors and on
// 429 responses that carry no retry hint.
const transientRetryWait = 30 * time.Second

// Token prices used for the call-log cost column (USD per token).
const (
	promptPricePerToken     = 0.00000015
	completionPricePerToken = 0.0000006
)

// NewProvider builds an LLM provider from the configured model type.
// Perplexity speaks the OpenAI wire protocol, so it reuses the openai client
// with its own base URL.
func NewProvider(modelType, model, apiKey, apiBase string) (Provider, error) {
	rt := &retryAfterTransport{base: http.DefaultTransport}
	httpClient := &http.Client{Transport: rt, Timeout: 120 * time.Second}

	var (
		m   llms.Model
		err error
	)
	switch modelType {
	case "openai":
		opts := []openai.Option{openai.WithToken(apiKey), openai.WithModel(model), openai.WithHTTPClient(httpClient)}
		if apiBase != "" {
			opts = append(opts, openai.WithBaseURL(apiBase))
		}
		m, err = openai.New(opts...)
	case "perplexity":
		base := apiBase
		if base == "" {
			base = "https://api.perplexity.ai"
		}
		m, err = openai.New(openai.WithToken(apiKey), openai.WithModel(model),
			openai.WithBaseURL(base), openai.WithHTTPClient(httpClient))
	case "claude":
		opts := []anthropic.Option{anthropic.WithToken(apiKey), anthropic.WithModel(model), anthropic.WithHTTPClient(httpClient)}
		if apiBase != "" {
			opts = append(opts, anthropic.WithBaseURL(apiBase))
		}
		m, err = anthropic.New(opts...)
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(model)}
		if apiBase != "" {
			opts = append(opts, ollama.WithServerURL(apiBase))
		}
		m, err = ollama.New(opts...)
	case "gemini":
		m, err = googleai.New(context.Background(),
			googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(model))
	case "huggingface":
		m, err = huggingface.New(huggingface.WithToken(apiKey), huggingface.WithModel(model))
	default:
		return nil, fmt.Errorf("llm: unknown model type %q", modelType)
	}
	if err != nil {
		return nil, fmt.Errorf("llm: init %s provider: %w", modelType, err)
	}
	return &langchainProvider{model: m, name: model, transport: rt}, nil
}

// langchainProvider adapts a langchaingo model to the Provider capability.
type langchainProvider struct {
	model     llms.Model
	name      string
	transport *retryAfterTransport
}

func (p *langchainProvider) Invoke(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := p.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(cfg.LLMTemperature),
	)
	if err != nil {
		if isRateLimited(err) {
			return nil, &RateLimitError{RetryAfter: p.transport.takeRetryAfter()}
		}
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm: empty response")
	}
	choice := resp.Choices[0]
	return &Completion{
		Content:      choice.Content,
		ModelName:    p.name,
		FinishReason: choice.StopReason,
		InputTokens:  infoInt(choice.GenerationInfo, "PromptTokens"),
		OutputTokens: infoInt(choice.GenerationInfo, "CompletionTokens"),
		TotalTokens:  infoInt(choice.GenerationInfo, "TotalTokens"),
	}, nil
}

func infoInt(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// isRateLimited recognizes throttling errors surfaced by provider clients.
func isRateLimited(err error) bool {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") || strings.Contains(msg, "quota")
}

// retryAfterTransport records retry-after hints from 429 responses so the
// retry loop can honor them. Provider SDKs swallow response headers, so the
// hint is captured at the transport layer.
type retryAfterTransport struct {
	base       http.RoundTripper
	retryAfter atomic.Int64 // nanoseconds
}

func (t *retryAfterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		t.retryAfter.Store(int64(ParseRetryAfter(resp.Header)))
	}
	return resp, err
}

func (t *retryAfterTransport) takeRetryAfter() time.Duration {
	return time.Duration(t.retryAfter.Swap(0))
}

// LLMClient wraps a Provider with pacing, the infinite throttle-aware retry
// loop, and the per-call JSON log. One instance lives for the process.
type LLMClient struct {
	provider Provider
	limiter  *rate.Limiter
	logPath  string // empty = call log disabled

	mu    sync.Mutex // serializes call-log appends
	sleep func(time.Duration)
}

// NewLLMClient builds the process-wide LLM client.
// logPath may be empty to disable the call log.
func NewLLMClient(p Provider, logPath string) *LLMClient {
	return &LLMClient{
		provider: p,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 2),
		logPath:  logPath,
		sleep:    time.Sleep,
	}
}

// Complete sends a prompt and blocks until the provider answers.
// HTTP 429 sleeps for the provider's retry-after hint (default 30 s) and
// retries indefinitely; other transient errors sleep 30 s and retry.
// Only context cancellation breaks the loop.
func (c *LLMClient) Complete(ctx context.Context, prompt string) (string, error) {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		IncrLLMCalls()
		comp, err := c.provider.Invoke(ctx, prompt)
		if err == nil {
			c.logCall(prompt, comp)
			return strings.TrimSpace(comp.Content), nil
		}
		IncrLLMErrors()

		wait := transientRetryWait
		var rl *RateLimitError
		if errors.As(err, &rl) {
			if rl.RetryAfter > 0 {
				wait = rl.RetryAfter
			}
			slog.Warn("llm rate limited", slog.Duration("wait", wait))
		} else {
			slog.Warn("llm transient error", slog.Any("error", err), slog.Duration("wait", wait))
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.sleep(wait)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
}

// callLogEntry is one line of the LLM call log.
type callLogEntry struct {
	Model        string  `json:"model"`
	Time         string  `json:"time"`
	Prompt       string  `json:"prompt"`
	Reply        string  `json:"reply"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	TotalCost    float64 `json:"total_cost"`
}

// logCall appends one JSON line describing the call. Failures are logged and
// ignored — the call log is diagnostic, not load-bearing.
func (c *LLMClient) logCall(prompt string, comp *Completion) {
	if c.logPath == "" {
		return
	}
	entry := callLogEntry{
		Model:        comp.ModelName,
		Time:         time.Now().Format("2006-01-02 15:04:05"),
		Prompt:       prompt,
		Reply:        comp.Content,
		InputTokens:  comp.InputTokens,
		OutputTokens: comp.OutputTokens,
		TotalTokens:  comp.TotalTokens,
		TotalCost: float64(comp.InputTokens)*promptPricePerToken +
			float64(comp.OutputTokens)*completionPricePerToken,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	f, err := os.OpenFile(c.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Debug("llm call log open failed", slog.Any("error", err))
		return
	}
	defer f.Close()
	f.Write(append(data, '\n')) //nolint:errcheck
}

// CallLLM sends a prompt through the configured client and strips code fences
// from the reply.
func CallLLM(ctx context.Context, prompt string) (string, error) {
	resp, err := cfg.LLMClient.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return StripFences(resp), nil
}
