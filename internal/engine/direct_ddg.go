package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultDDGRegion is the DuckDuckGo "kl" value for no region preference.
const DefaultDDGRegion = "wt-wt"

var vqdPatterns = []*regexp.Regexp{
	regexp.MustCompile(`vqd='([^']+)'`),
	regexp.MustCompile(`vqd="([^"]+)"`),
	regexp.MustCompile(`vqd=([a-zA-Z0-9_-]+)`),
}

// ddgHit is one entry of the d.js JSON feed.
type ddgHit struct {
	Title    string `json:"t"`
	Abstract string `json:"a"` // HTML
	URL      string `json:"u"`
	AltURL   string `json:"c"`
}

// DDGQuery is one direct DuckDuckGo search.
type DDGQuery struct {
	Text       string
	Region     string // "kl" value; DefaultDDGRegion when empty
	MaxResults int    // parsing stops here; <= 0 means no limit
}

// SearchDDGDirect queries DuckDuckGo with the browser client. The HTML lite
// endpoint is tried first; the d.js feed is used when it fails or is empty.
func SearchDDGDirect(ctx context.Context, bc *BrowserClient, q DDGQuery) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Region == "" {
		q.Region = DefaultDDGRegion
	}
	metrics.DirectDDGRequests.Add(1)

	results, err := ddgSearchHTML(bc, q)
	if err == nil && len(results) > 0 {
		slog.Debug("ddg direct results", slog.String("via", "html"), slog.Int("count", len(results)))
		return results, nil
	}
	if err != nil {
		slog.Debug("ddg html failed, trying d.js", slog.Any("error", err))
	}

	vqd, err := ddgToken(bc, q.Text)
	if err != nil {
		return nil, fmt.Errorf("ddg vqd: %w", err)
	}
	results, err = ddgSearchDJS(bc, q, vqd)
	if err != nil {
		return nil, fmt.Errorf("ddg d.js: %w", err)
	}
	slog.Debug("ddg direct results", slog.String("via", "d.js"), slog.Int("count", len(results)))
	return results, nil
}

func ddgForm(q DDGQuery) url.Values {
	return url.Values{
		"q":  {q.Text},
		"kl": {q.Region},
		"df": {""},
	}
}

func ddgSearchHTML(bc *BrowserClient, q DDGQuery) ([]SearchResult, error) {
	headers := ChromeHeaders()
	headers["referer"] = "https://html.duckduckgo.com/"
	headers["content-type"] = "application/x-www-form-urlencoded"

	data, _, status, err := bc.Do("POST", "https://html.duckduckgo.com/html/", headers, strings.NewReader(ddgForm(q).Encode()))
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, fmt.Errorf("ddg html status %d", status)
	}
	return parseDDGHTML(data, q.MaxResults)
}

// parseDDGHTML reads results from the HTML lite page, skipping ads, and stops
// after limit results.
func parseDDGHTML(data []byte, limit int) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}

	var results []SearchResult
	doc.Find(".result, .web-result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a, .result__title a, a.result-link").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		target := ddgUnwrapURL(href)
		if title == "" || target == "" {
			return true
		}
		results = append(results, SearchResult{
			Title:   title,
			URL:     target,
			Snippet: strings.TrimSpace(s.Find(".result__snippet, .result__body").First().Text()),
		})
		return limit <= 0 || len(results) < limit
	})
	return results, nil
}

// ddgUnwrapURL resolves DDG redirect links (//duckduckgo.com/l/?uddg=...).
// Relative links resolve to "".
func ddgUnwrapURL(href string) string {
	if strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if target := u.Query().Get("uddg"); target != "" {
				return target
			}
		}
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return ""
}

// ddgToken fetches the vqd token the d.js feed requires.
func ddgToken(bc *BrowserClient, query string) (string, error) {
	headers := ChromeHeaders()
	headers["referer"] = "https://duckduckgo.com/"

	data, _, status, err := bc.Do("GET", "https://duckduckgo.com/?"+url.Values{"q": {query}}.Encode(), headers, nil)
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", fmt.Errorf("ddg homepage status %d", status)
	}
	if vqd := extractVQD(string(data)); vqd != "" {
		return vqd, nil
	}
	return "", fmt.Errorf("vqd token not found in response (%d bytes)", len(data))
}

func extractVQD(body string) string {
	for _, pat := range vqdPatterns {
		if m := pat.FindStringSubmatch(body); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

func ddgSearchDJS(bc *BrowserClient, q DDGQuery, vqd string) ([]SearchResult, error) {
	params := ddgForm(q)
	params.Set("vqd", vqd)
	params.Set("l", "us-en")
	params.Set("o", "json")

	headers := ChromeHeaders()
	headers["referer"] = "https://duckduckgo.com/"
	headers["accept"] = "application/json, text/javascript, */*; q=0.01"

	data, _, status, err := bc.Do("GET", "https://links.duckduckgo.com/d.js?"+params.Encode(), headers, nil)
	if err != nil {
		return nil, err
	}
	if status != 200 && status != 202 {
		return nil, fmt.Errorf("ddg d.js status %d", status)
	}
	return parseDDGResponse(data, q.MaxResults)
}

// parseDDGResponse reads the d.js feed, bare or wrapped in JSONP, and stops
// after limit results. DDG's own links (ads, internal pages) are dropped.
func parseDDGResponse(data []byte, limit int) ([]SearchResult, error) {
	body := strings.TrimSpace(string(data))
	if start := strings.Index(body, "["); start >= 0 {
		if end := strings.LastIndex(body, "]"); end > start {
			body = body[start : end+1]
		}
	}

	var hits []ddgHit
	if err := json.Unmarshal([]byte(body), &hits); err != nil {
		return nil, fmt.Errorf("ddg json parse: %w (first 200 bytes: %s)", err, Truncate(body, 200))
	}

	var results []SearchResult
	for _, h := range hits {
		if limit > 0 && len(results) >= limit {
			break
		}
		target := h.URL
		if target == "" {
			target = h.AltURL
		}
		if target == "" || h.Title == "" || strings.HasPrefix(target, "https://duckduckgo.com/") {
			continue
		}
		results = append(results, SearchResult{
			Title:   CleanHTML(h.Title),
			URL:     target,
			Snippet: CleanHTML(h.Abstract),
		})
	}
	return results, nil
}
