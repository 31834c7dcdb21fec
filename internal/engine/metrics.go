package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests          atomic.Int64
	SearchErrors            atomic.Int64
	DirectDDGRequests       atomic.Int64
	DirectStartpageRequests atomic.Int64
	TwitterRequests         atomic.Int64
	LLMCalls                atomic.Int64
	LLMErrors               atomic.Int64
	SchemaErrors            atomic.Int64
	FetchRequests           atomic.Int64
	FetchErrors             atomic.Int64
	Runs                    atomic.Int64
	RunErrors               atomic.Int64
	CandidatesParsed        atomic.Int64
	CandidatesUnscored      atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"search_requests", "search_errors", "direct_ddg_requests", "direct_startpage_requests",
	"twitter_requests",
	"llm_calls", "llm_errors", "schema_errors",
	"fetch_requests", "fetch_errors",
	"runs", "run_errors",
	"candidates_parsed", "candidates_unscored",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"search_requests":           metrics.SearchRequests.Load(),
		"search_errors":             metrics.SearchErrors.Load(),
		"direct_ddg_requests":       metrics.DirectDDGRequests.Load(),
		"direct_startpage_requests": metrics.DirectStartpageRequests.Load(),
		"twitter_requests":          metrics.TwitterRequests.Load(),
		"llm_calls":                 metrics.LLMCalls.Load(),
		"llm_errors":                metrics.LLMErrors.Load(),
		"schema_errors":             metrics.SchemaErrors.Load(),
		"fetch_requests":            metrics.FetchRequests.Load(),
		"fetch_errors":              metrics.FetchErrors.Load(),
		"runs":                      metrics.Runs.Load(),
		"run_errors":                metrics.RunErrors.Load(),
		"candidates_parsed":         metrics.CandidatesParsed.Load(),
		"candidates_unscored":       metrics.CandidatesUnscored.Load(),
		"cache_hits":                hits,
		"cache_misses":              misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the connections and connserver packages.
func IncrSchemaErrors()       { metrics.SchemaErrors.Add(1) }
func IncrRuns()               { metrics.Runs.Add(1) }
func IncrRunErrors()          { metrics.RunErrors.Add(1) }
func IncrCandidatesParsed()   { metrics.CandidatesParsed.Add(1) }
func IncrCandidatesUnscored() { metrics.CandidatesUnscored.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
