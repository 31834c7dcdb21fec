package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	twitter "github.com/anatolykoptev/go-twitter"
)

// PeopleSource finds people directly rather than through web pages.
type PeopleSource interface {
	SearchPeople(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// socialPost is the part of a tweet person search needs.
type socialPost struct {
	ID       string
	AuthorID string
	Text     string
}

// TwitterPeopleSource turns X/Twitter timeline search into person results,
// one per author, identified by the author's profile URL.
type TwitterPeopleSource struct {
	client *twitter.Client
}

// NewTwitterPeopleSource wraps a go-twitter client. Returns nil for a nil client.
func NewTwitterPeopleSource(c *twitter.Client) *TwitterPeopleSource {
	if c == nil {
		return nil
	}
	return &TwitterPeopleSource{client: c}
}

// SearchPeople searches recent posts for query and returns up to limit authors.
func (s *TwitterPeopleSource) SearchPeople(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	metrics.TwitterRequests.Add(1)

	// Several posts often share one author.
	tweets, err := s.client.SearchTimeline(ctx, query, limit*3)
	if err != nil {
		return nil, fmt.Errorf("twitter search: %w", err)
	}
	posts := make([]socialPost, 0, len(tweets))
	for _, t := range tweets {
		posts = append(posts, socialPost{ID: t.ID, AuthorID: t.AuthorID, Text: t.Text})
	}
	results := peopleFromPosts(posts, limit)
	slog.Debug("twitter people search", slog.String("query", query),
		slog.Int("posts", len(posts)), slog.Int("people", len(results)))
	return results, nil
}

// peopleFromPosts keeps the first post of each author, in order.
func peopleFromPosts(posts []socialPost, limit int) []SearchResult {
	seen := make(map[string]bool, len(posts))
	var out []SearchResult
	for _, p := range posts {
		if len(out) >= limit {
			break
		}
		text := strings.TrimSpace(p.Text)
		if p.AuthorID == "" || text == "" || seen[p.AuthorID] {
			continue
		}
		seen[p.AuthorID] = true

		title, _, _ := strings.Cut(text, "\n")
		out = append(out, SearchResult{
			Title:   TruncateAtWord(title, 120),
			URL:     "https://x.com/i/user/" + p.AuthorID,
			Snippet: fmt.Sprintf("Post https://x.com/i/status/%s: %s", p.ID, TruncateAtWord(text, 400)),
		})
	}
	return out
}
