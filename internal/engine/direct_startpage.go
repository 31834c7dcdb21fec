package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SearchStartpageDirect queries Startpage directly using browser TLS fingerprint.
// Used after DuckDuckGo when both SearXNG and DDG come back empty.
func SearchStartpageDirect(ctx context.Context, bc *BrowserClient, query string) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	metrics.DirectStartpageRequests.Add(1)

	form := url.Values{}
	form.Set("query", query)
	form.Set("cat", "web")
	form.Set("language", "english")

	headers := ChromeHeaders()
	headers["referer"] = "https://www.startpage.com/"
	headers["content-type"] = "application/x-www-form-urlencoded"
	headers["accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	data, _, status, err := bc.Do("POST", "https://www.startpage.com/sp/search", headers, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("startpage request: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("startpage status %d", status)
	}

	results, err := parseStartpageHTML(data)
	if err != nil {
		return nil, fmt.Errorf("startpage parse: %w", err)
	}

	slog.Debug("startpage direct results", slog.Int("count", len(results)), slog.String("query", query))
	return results, nil
}

// parseStartpageHTML extracts search results from Startpage HTML response.
func parseStartpageHTML(data []byte) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}

	var results []SearchResult

	// <div class="w-gl__result"> or older <div class="result">
	doc.Find(".w-gl__result, .result").Each(func(i int, s *goquery.Selection) {
		link := s.Find("a.w-gl__result-title, h3 a, a.result-link").First()
		title := strings.TrimSpace(link.Text())
		href, exists := link.Attr("href")
		if !exists || title == "" || href == "" {
			return
		}
		// ads and internal redirects
		if strings.Contains(href, "startpage.com/do/") {
			return
		}

		desc := s.Find("p.w-gl__description, .w-gl__description, p.result-description").First()
		results = append(results, SearchResult{
			Title:   title,
			URL:     href,
			Snippet: strings.TrimSpace(desc.Text()),
		})
	})

	return results, nil
}
