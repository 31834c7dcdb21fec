package connections

import (
	"time"

	"github.com/anatolykoptev/go_connect/internal/engine"
)

// prefetchLimit bounds parallel page fetches for one query.
const prefetchLimit = 4

// Finder runs connection discovery over an LLM, a searcher and a page fetcher.
type Finder struct {
	llm    LLM
	search Searcher
	fetch  Fetcher

	stepRetry     engine.RetryConfig
	prefetchLimit int
}

// Option configures a Finder.
type Option func(*Finder)

// WithStepRetry overrides the backoff used for the anchor and goal steps.
func WithStepRetry(rc engine.RetryConfig) Option {
	return func(f *Finder) { f.stepRetry = rc }
}

// WithPrefetchLimit sets how many pages are fetched in parallel per query.
func WithPrefetchLimit(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.prefetchLimit = n
		}
	}
}

// NewFinder builds a Finder. All three collaborators are required.
func NewFinder(llm LLM, search Searcher, fetch Fetcher, opts ...Option) *Finder {
	f := &Finder{
		llm:    llm,
		search: search,
		fetch:  fetch,
		stepRetry: engine.RetryConfig{
			MaxRetries:  2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     4 * time.Second,
			Multiplier:  2.0,
		},
		prefetchLimit: prefetchLimit,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}
