package connections

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_connect/internal/engine"
)

// fakeLLM routes completions to per-step handlers by system prompt.
type fakeLLM struct {
	mu       sync.Mutex
	calls    map[string]int
	users    map[string][]string
	handlers map[string]func(user string) (string, error)
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		calls:    make(map[string]int),
		users:    make(map[string][]string),
		handlers: make(map[string]func(string) (string, error)),
	}
}

func (f *fakeLLM) on(step string, h func(user string) (string, error)) *fakeLLM {
	f.handlers[step] = h
	return f
}

func (f *fakeLLM) reply(step, raw string) *fakeLLM {
	return f.on(step, func(string) (string, error) { return raw, nil })
}

func (f *fakeLLM) Complete(_ context.Context, system, user string) (string, error) {
	step := stepOf(system)
	f.mu.Lock()
	f.calls[step]++
	f.users[step] = append(f.users[step], user)
	h := f.handlers[step]
	f.mu.Unlock()
	if h == nil {
		return "", fmt.Errorf("no handler for step %q", step)
	}
	return h(user)
}

func (f *fakeLLM) count(step string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[step]
}

func (f *fakeLLM) prompts(step string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.users[step]...)
}

func stepOf(system string) string {
	switch {
	case system == anchorSystemPrompt:
		return stepAnchors
	case system == goalSystemPrompt:
		return stepGoal
	case strings.HasPrefix(system, "You plan web search queries"):
		return stepQueries
	case system == candidateSystemPrompt:
		return stepCandidate
	case system == alignmentSystemPrompt:
		return stepAlignment
	case system == accessibilitySystemPrompt:
		return stepAccessibility
	case system == writeupSystemPrompt:
		return stepWriteup
	}
	return "unknown"
}

// promptURL extracts the "URL: " line from a candidate prompt.
func promptURL(user string) string {
	for _, line := range strings.Split(user, "\n") {
		if u, ok := strings.CutPrefix(line, "URL: "); ok {
			return u
		}
	}
	return ""
}

// fakeSearcher returns results by query.
type fakeSearcher struct {
	mu      sync.Mutex
	results func(query string) []SearchResult
	queries []string
}

func (s *fakeSearcher) Search(_ context.Context, query string, maxResults int) ([]SearchResult, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	if s.results == nil {
		return nil, nil
	}
	res := s.results(query)
	if len(res) > maxResults {
		res = res[:maxResults]
	}
	return res, nil
}

func (s *fakeSearcher) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// fakeFetcher serves page text by URL.
type fakeFetcher struct {
	pages map[string]string
}

func (f fakeFetcher) Fetch(_ context.Context, url string) string {
	return f.pages[url]
}

func fastRetry() Option {
	return WithStepRetry(engine.RetryConfig{
		MaxRetries:  2,
		InitialWait: time.Millisecond,
		MaxWait:     time.Millisecond,
		Multiplier:  1,
	})
}

func keptRecord(c Candidate, matches []string, confidence, score float64) CandidateRecord {
	return CandidateRecord{
		Candidate:     c,
		DirectMatches: DirectMatchResult{DirectMatches: matches},
		Alignment:     &Alignment{Confidence: confidence},
		Accessibility: &Accessibility{Keep: true, AccessibilityScore: score},
		SourceURL:     c.IdentityURL(),
		CanonicalURL:  CanonicalURL(c.IdentityURL()),
	}
}

func person(name, url string) *Person {
	return &Person{Name: name, VerifiedProfileURL: url}
}

func program(name, url string) *Program {
	return &Program{Name: name, WebsiteURL: url}
}
