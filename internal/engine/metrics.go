package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	LLMCalls              atomic.Int64
	LLMErrors             atomic.Int64
	GuestFetches          atomic.Int64
	PagesVisited          atomic.Int64
	QuestionsAnswered     atomic.Int64
	AnswerCacheHits       atomic.Int64
	AnswerCacheMisses     atomic.Int64
	PDFsRendered          atomic.Int64
	ApplicationsSubmitted atomic.Int64
	ApplicationsFailed    atomic.Int64
	ApplicationsSkipped   atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including summary-cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"llm_calls":              metrics.LLMCalls.Load(),
		"llm_errors":             metrics.LLMErrors.Load(),
		"guest_fetches":          metrics.GuestFetches.Load(),
		"pages_visited":          metrics.PagesVisited.Load(),
		"questions_answered":     metrics.QuestionsAnswered.Load(),
		"answer_cache_hits":      metrics.AnswerCacheHits.Load(),
		"answer_cache_misses":    metrics.AnswerCacheMisses.Load(),
		"pdfs_rendered":          metrics.PDFsRendered.Load(),
		"applications_submitted": metrics.ApplicationsSubmitted.Load(),
		"applications_failed":    metrics.ApplicationsFailed.Load(),
		"applications_skipped":   metrics.ApplicationsSkipped.Load(),
		"summary_cache_hits":     hits,
		"summary_cache_misses":   misses,
	}
}

// FormatMetrics returns metrics as a simple text block for the run summary.
func FormatMetrics() string {
	m := GetMetrics()
	keys := []string{
		"llm_calls", "llm_errors",
		"guest_fetches", "pages_visited",
		"questions_answered", "answer_cache_hits", "answer_cache_misses",
		"pdfs_rendered",
		"applications_submitted", "applications_failed", "applications_skipped",
		"summary_cache_hits", "summary_cache_misses",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the engine and its sub-packages.
func IncrLLMCalls()              { metrics.LLMCalls.Add(1) }
func IncrLLMErrors()             { metrics.LLMErrors.Add(1) }
func IncrGuestFetches()          { metrics.GuestFetches.Add(1) }
func IncrPagesVisited()          { metrics.PagesVisited.Add(1) }
func IncrQuestionsAnswered()     { metrics.QuestionsAnswered.Add(1) }
func IncrAnswerCacheHits()       { metrics.AnswerCacheHits.Add(1) }
func IncrAnswerCacheMisses()     { metrics.AnswerCacheMisses.Add(1) }
func IncrPDFsRendered()          { metrics.PDFsRendered.Add(1) }
func IncrApplicationsSubmitted() { metrics.ApplicationsSubmitted.Add(1) }
func IncrApplicationsFailed()    { metrics.ApplicationsFailed.Add(1) }
func IncrApplicationsSkipped()   { metrics.ApplicationsSkipped.Add(1) }
