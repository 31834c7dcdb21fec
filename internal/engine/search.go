package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// ErrProviderUnavailable marks a search provider with no usable configuration.
var ErrProviderUnavailable = errors.New("search provider unavailable")

// SearchResult is one ordered web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type searxngResult struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
}

type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

// WebSearcher queries SearXNG and, when enabled, DuckDuckGo directly as a fallback.
// Person searches may also draw on a social PeopleSource.
// Calls are rate limited and cached.
type WebSearcher struct {
	searxngURL string
	client     *http.Client
	browser    *BrowserClient
	directDDG  bool
	ddgRegion  string
	directSP   bool
	people     PeopleSource
	limiter    *rate.Limiter
	warnOnce   sync.Once
}

// NewWebSearcher builds a searcher from engine configuration.
func NewWebSearcher(c Config) *WebSearcher {
	rps := c.SearchRPS
	if rps <= 0 {
		rps = 2
	}
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	s := &WebSearcher{
		searxngURL: strings.TrimRight(c.SearxngURL, "/"),
		client:     client,
		browser:    c.BrowserClient,
		directDDG:  c.DirectDDG,
		ddgRegion:  c.DDGRegion,
		directSP:   c.DirectStartpage,
		limiter:    rate.NewLimiter(rate.Limit(rps), 2),
	}
	if src := NewTwitterPeopleSource(c.TwitterClient); src != nil {
		s.people = src
	}
	return s
}

// WithPeopleSource sets the source SearchPeople tops results up from.
func (s *WebSearcher) WithPeopleSource(src PeopleSource) *WebSearcher {
	s.people = src
	return s
}

// SearchPeople runs Search and, when a people source is configured and web
// results fall short of maxResults, appends people from that source.
// A failing people source only logs; the web results are still returned.
func (s *WebSearcher) SearchPeople(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	results, err := s.Search(ctx, query, maxResults)
	if s.people == nil || len(results) >= maxResults {
		return results, err
	}

	cacheKey := CacheKey("people", query, strconv.Itoa(maxResults))
	social, ok := CacheLoadJSON[[]SearchResult](ctx, cacheKey)
	if !ok {
		var perr error
		social, perr = s.people.SearchPeople(ctx, query, maxResults)
		if perr != nil {
			slog.Warn("search: people source failed", slog.String("query", query), slog.Any("error", perr))
			return results, err
		}
		if len(social) > 0 {
			CacheStoreJSON(ctx, cacheKey, social)
		}
	}

	merged := dedupByURL(append(slices.Clone(results), social...))
	if len(merged) > maxResults {
		merged = merged[:maxResults]
	}
	if len(merged) > 0 {
		return merged, nil
	}
	return nil, err
}

// Search returns up to maxResults ordered results for query.
// With no configured provider it returns an empty list and a nil error.
func (s *WebSearcher) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	ddgEnabled := s.directDDG && s.browser != nil
	spEnabled := s.directSP && s.browser != nil
	if s.searxngURL == "" && !ddgEnabled && !spEnabled {
		s.warnOnce.Do(func() {
			slog.Warn("search: no provider configured, returning empty results", slog.Any("error", ErrProviderUnavailable))
		})
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	cacheKey := CacheKey("search", query, strconv.Itoa(maxResults))
	if cached, ok := CacheLoadJSON[[]SearchResult](ctx, cacheKey); ok {
		return cached, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var results []SearchResult
	var searchErr error
	if s.searxngURL != "" {
		results, searchErr = s.searchSearXNG(ctx, query)
		if searchErr != nil {
			metrics.SearchErrors.Add(1)
			slog.Warn("search: searxng failed", slog.String("query", query), slog.Any("error", searchErr))
		}
	}

	if len(results) == 0 && ddgEnabled {
		direct, err := SearchDDGDirect(ctx, s.browser, DDGQuery{Text: query, Region: s.ddgRegion, MaxResults: maxResults})
		if err != nil {
			slog.Debug("ddg direct failed", slog.Any("error", err))
			if searchErr == nil {
				searchErr = err
			}
		} else {
			results = direct
		}
	}

	if len(results) == 0 && spEnabled {
		direct, err := SearchStartpageDirect(ctx, s.browser, query)
		if err != nil {
			slog.Debug("startpage direct failed", slog.Any("error", err))
			if searchErr == nil {
				searchErr = err
			}
		} else {
			results = direct
		}
	}

	results = dedupByURL(results)
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	if len(results) == 0 {
		return nil, searchErr
	}

	CacheStoreJSON(ctx, cacheKey, results)
	return results, nil
}

// searchSearXNG queries the SearXNG instance and returns results in rank order.
func (s *WebSearcher) searchSearXNG(ctx context.Context, query string) ([]SearchResult, error) {
	u, err := url.Parse(s.searxngURL + "/search")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	metrics.SearchRequests.Add(1)

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		return s.client.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searxng status %d", resp.StatusCode)
	}

	var data searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(data.Results))
	for _, r := range data.Results {
		if r.URL == "" {
			continue
		}
		out = append(out, SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return out, nil
}

// dedupByURL drops repeated URLs, keeping first occurrence order.
func dedupByURL(results []SearchResult) []SearchResult {
	seen := make(map[string]bool, len(results))
	out := results[:0:0]
	for _, r := range results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
	}
	return out
}
