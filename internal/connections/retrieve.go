package connections

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/anatolykoptev/go_connect/internal/engine"
)

// Pool sizes at which a retrieval pass stops early.
const (
	earlyExitKeptDirect = 8
	earlyExitKeptAny    = 12
)

// Retrieve runs one retrieval pass: search each planned query, fetch and parse
// new results, gate them against the anchors and score what passes the gate.
//
// Pages for one query are fetched in parallel; everything else runs in
// search-result order on the calling goroutine, which alone owns the
// seen-URL set. The returned state carries new slices for the pool and the
// processed URLs.
func (f *Finder) Retrieve(ctx context.Context, st GraphState) (GraphState, error) {
	next := st
	next.Iteration = st.Iteration + 1

	pool := slices.Clone(st.Candidates)
	processed := slices.Clone(st.ProcessedURLs)
	seen := make(map[string]bool, len(processed))
	for _, u := range processed {
		seen[u] = true
	}
	identities := make(map[string]bool, len(pool))
	for _, r := range pool {
		identities[r.CanonicalURL] = true
	}

	queries := interleaveQueries(st.Queries, st.Budgets.MaxQueriesPerIteration)
	searched := 0

queryLoop:
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if poolSaturated(pool) {
			break
		}

		searched++
		results, err := f.searchQuery(ctx, q, st.Budgets.MaxURLsPerQuery)
		if err != nil {
			slog.Warn("retrieve: search failed", slog.String("query", q.Text), slog.Any("error", err))
			continue
		}

		fresh := freshResults(results, seen, st.Queries.ExcludeTerms, st.Budgets.MaxURLsPerQuery)
		pages := f.prefetch(ctx, fresh)

		for i, r := range fresh {
			if poolSaturated(pool) {
				break queryLoop
			}
			key := CanonicalURL(r.URL)
			seen[key] = true
			processed = append(processed, key)

			rec, ok := f.processResult(ctx, st, q, r, pages[i], identities)
			if !ok {
				continue
			}
			identities[rec.CanonicalURL] = true
			pool = append(pool, rec)
		}
	}

	slog.Info("retrieve: pass complete",
		slog.Int("iteration", next.Iteration),
		slog.Int("broaden_level", st.BroadenLevel),
		slog.Int("queries", searched),
		slog.Int("pool", len(pool)),
		slog.Int("new", len(pool)-len(st.Candidates)))

	next.Candidates = pool
	next.ProcessedURLs = processed
	return next, nil
}

// searchQuery sends person queries to a PeopleSearcher when the searcher is one.
func (f *Finder) searchQuery(ctx context.Context, q plannedQuery, maxResults int) ([]SearchResult, error) {
	if ps, ok := f.search.(PeopleSearcher); ok && q.Type == TypePerson {
		return ps.SearchPeople(ctx, q.Text, maxResults)
	}
	return f.search.Search(ctx, q.Text, maxResults)
}

// freshResults drops results already processed this run, repeats within the
// list and results whose title or snippet contain an exclude term.
func freshResults(results []SearchResult, seen map[string]bool, exclude []string, limit int) []SearchResult {
	local := make(map[string]bool, len(results))
	var out []SearchResult
	for _, r := range results {
		if len(out) >= limit {
			break
		}
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		key := CanonicalURL(r.URL)
		if seen[key] || local[key] {
			continue
		}
		if containsAnyFold(r.Title+" "+r.Snippet, exclude) {
			continue
		}
		local[key] = true
		out = append(out, r)
	}
	return out
}

// prefetch fetches pages concurrently. Fetch never fails; an unreachable page is "".
func (f *Finder) prefetch(ctx context.Context, results []SearchResult) []string {
	pages := make([]string, len(results))
	var g errgroup.Group
	g.SetLimit(f.prefetchLimit)
	for i, r := range results {
		g.Go(func() error {
			pages[i] = f.fetch.Fetch(ctx, r.URL)
			return nil
		})
	}
	_ = g.Wait()
	return pages
}

// processResult parses one page into a gated record. Returns false when no
// usable candidate was found or the candidate is already in the pool.
func (f *Finder) processResult(ctx context.Context, st GraphState, q plannedQuery, r SearchResult, page string, known map[string]bool) (CandidateRecord, bool) {
	user := fmt.Sprintf(candidateUserPrompt, q.Text, r.Title, r.URL, r.Snippet, page)
	env, err := completeJSON[candidateEnvelope](ctx, f.llm, stepCandidate, candidateSystemPrompt, user)
	if err != nil {
		slog.Warn("retrieve: candidate parse failed", slog.String("url", r.URL), slog.Any("error", err))
		return CandidateRecord{}, false
	}
	cand := env.candidate()
	if cand == nil {
		return CandidateRecord{}, false
	}
	if !st.Preferences.Allows(cand.Type()) {
		slog.Debug("retrieve: candidate type not requested", slog.String("type", string(cand.Type())), slog.String("url", r.URL))
		return CandidateRecord{}, false
	}

	switch c := cand.(type) {
	case *Person:
		if strings.TrimSpace(c.VerifiedProfileURL) == "" {
			c.VerifiedProfileURL = r.URL
		}
	case *Program:
		if strings.TrimSpace(c.WebsiteURL) == "" {
			c.WebsiteURL = r.URL
		}
	}
	engine.IncrCandidatesParsed()

	identity := CanonicalURL(cand.IdentityURL())
	if known[identity] {
		slog.Debug("retrieve: duplicate candidate", slog.String("identity", identity))
		return CandidateRecord{}, false
	}

	rec := CandidateRecord{
		Candidate:     cand,
		DirectMatches: ComputeDirectMatches(st.Anchors, cand),
		SourceURL:     r.URL,
		SearchQuery:   q.Text,
		CanonicalURL:  identity,
	}

	if !rec.DirectMatches.HasMatch() && st.BroadenLevel < 1 {
		engine.IncrCandidatesUnscored()
		return rec, true
	}

	if rec.Alignment, err = f.ScoreAlignment(ctx, st.Goal, cand); err != nil {
		slog.Warn("retrieve: alignment failed", slog.String("url", r.URL), slog.Any("error", err))
	}
	if rec.Accessibility, err = f.FilterAccessibility(ctx, st.EducationLevel, cand); err != nil {
		slog.Warn("retrieve: accessibility failed", slog.String("url", r.URL), slog.Any("error", err))
	}
	return rec, true
}

// poolSaturated reports whether the pool has enough kept candidates to stop early.
func poolSaturated(pool []CandidateRecord) bool {
	keptDirect, keptAny := 0, 0
	for _, r := range pool {
		if !r.Kept() {
			continue
		}
		keptAny++
		if r.DirectMatches.HasMatch() {
			keptDirect++
		}
	}
	return keptDirect >= earlyExitKeptDirect || keptAny >= earlyExitKeptAny
}
