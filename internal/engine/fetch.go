package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// maxBodyBytes caps how much of a page is read before extraction.
const maxBodyBytes = 4 << 20

// fetchRetryConfig keeps page fetches inside the fetch timeout.
var fetchRetryConfig = RetryConfig{
	MaxRetries:  1,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     2 * time.Second,
	Multiplier:  2.0,
}

var (
	multiSpaceRe = regexp.MustCompile(`[ \t]+`)
	multiBlankRe = regexp.MustCompile(`\n{3,}`)
)

// PageFetcher downloads a page and reduces it to plain text.
// Every failure degrades to an empty string.
type PageFetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxChars int
}

// NewPageFetcher builds a fetcher from engine configuration.
func NewPageFetcher(c Config) *PageFetcher {
	timeout := c.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxChars := c.MaxContentChars
	if maxChars <= 0 {
		maxChars = 12000
	}
	return &PageFetcher{
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
		maxChars: maxChars,
	}
}

// Fetch returns the page text for rawURL, or "" on any failure.
func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) string {
	cacheKey := CacheKey("page", rawURL)
	if data, ok := CacheGetBytes(ctx, cacheKey); ok {
		return string(data)
	}

	metrics.FetchRequests.Add(1)
	text, err := f.fetch(ctx, rawURL)
	if err != nil {
		metrics.FetchErrors.Add(1)
		slog.Debug("fetch failed", slog.String("url", rawURL), slog.Any("error", err))
		return ""
	}
	if text != "" {
		CacheSetBytes(ctx, cacheKey, []byte(text))
	}
	return text
}

func (f *PageFetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := RetryHTTP(ctx, fetchRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", RandomUserAgent())
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		return f.client.Do(req)
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}

	return TruncateRunes(PageText(body, resp.Header.Get("Content-Type")), f.maxChars, ""), nil
}

// PageText converts a response body to text. Plain text bodies skip HTML
// extraction and only have their whitespace normalized.
func PageText(body []byte, contentType string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "text/plain" {
		return normalizeText(string(body))
	}
	return ExtractPageText(body)
}

// ExtractPageText strips scripts, styles and chrome from an HTML page and returns
// the main content as text. Falls back to bluemonday tag stripping when the
// document cannot be parsed.
func ExtractPageText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return normalizeText(bluemonday.StrictPolicy().Sanitize(string(body)))
	}

	removeSelectors := []string{
		"script", "style", "noscript", "iframe", "svg", "template",
		"header", "footer", "nav", "aside", "form",
		"[role=navigation]", "[role=banner]", "[role=contentinfo]",
	}
	doc.Find(strings.Join(removeSelectors, ", ")).Remove()

	content := doc.Find("article, main, [role=main]").First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}
	if content.Length() == 0 {
		content = doc.Selection
	}

	html, err := content.Html()
	if err == nil {
		if md, err := htmltomarkdown.ConvertString(html); err == nil && strings.TrimSpace(md) != "" {
			return normalizeText(md)
		}
	}
	return normalizeText(content.Text())
}

// normalizeText collapses runs of spaces and blank lines.
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(multiSpaceRe.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = multiBlankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
