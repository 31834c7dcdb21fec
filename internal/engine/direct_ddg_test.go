package engine

import (
	"fmt"
	"strings"
	"testing"
)

// ddgLitePage renders n organic results plus one ad in the HTML lite layout.
func ddgLitePage(n int) []byte {
	var b strings.Builder
	b.WriteString(`<html><body>`)
	b.WriteString(`<div class="result result--ad"><a class="result__a" href="https://ads.example/buy">Sponsored</a></div>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<div class="result">
			<a class="result__a" href="//duckduckgo.com/l/?uddg=https%%3A%%2F%%2Fexample.com%%2Fpeople%%2F%d&rut=x">Engineer %d at Acme</a>
			<a class="result__snippet">Alumni profile %d.</a>
		</div>`, i, i, i)
	}
	b.WriteString(`</body></html>`)
	return []byte(b.String())
}

func TestParseDDGHTML(t *testing.T) {
	tests := []struct {
		name      string
		page      []byte
		limit     int
		wantCount int
	}{
		{"limit stops parsing", ddgLitePage(8), 3, 3},
		{"limit above available", ddgLitePage(2), 5, 2},
		{"no limit", ddgLitePage(6), 0, 6},
		{"no results", []byte(`<html><body><p>No results.</p></body></html>`), 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := parseDDGHTML(tt.page, tt.limit)
			if err != nil {
				t.Fatalf("parseDDGHTML() error = %v", err)
			}
			if len(results) != tt.wantCount {
				t.Fatalf("got %d results, want %d", len(results), tt.wantCount)
			}
			for i, r := range results {
				if r.URL != fmt.Sprintf("https://example.com/people/%d", i) {
					t.Errorf("result %d URL = %q (ads must be skipped, redirects unwrapped)", i, r.URL)
				}
				if r.Snippet != fmt.Sprintf("Alumni profile %d.", i) {
					t.Errorf("result %d snippet = %q", i, r.Snippet)
				}
			}
		})
	}
}

func TestParseDDGResponse(t *testing.T) {
	feed := `DDG.pageLayout.load('d',[
		{"t":"<b>Jane</b> Doe","a":"Mentor at <b>Acme</b>","u":"https://example.com/jane","c":""},
		{"t":"Ad","a":"","u":"https://duckduckgo.com/y.js?ad_provider=x","c":""},
		{"t":"","a":"untitled","u":"https://example.com/untitled","c":""},
		{"t":"Alt link","a":"","u":"","c":"https://example.org/alt"},
		{"t":"Third","a":"","u":"https://example.net/third","c":""}
	]);`

	t.Run("jsonp with filtering", func(t *testing.T) {
		results, err := parseDDGResponse([]byte(feed), 0)
		if err != nil {
			t.Fatalf("parseDDGResponse() error = %v", err)
		}
		want := []string{"https://example.com/jane", "https://example.org/alt", "https://example.net/third"}
		if len(results) != len(want) {
			t.Fatalf("got %d results, want %d", len(results), len(want))
		}
		for i, u := range want {
			if results[i].URL != u {
				t.Errorf("result %d URL = %q, want %q", i, results[i].URL, u)
			}
		}
		if results[0].Title != "Jane Doe" || results[0].Snippet != "Mentor at Acme" {
			t.Errorf("HTML not stripped: %+v", results[0])
		}
	})

	t.Run("limit", func(t *testing.T) {
		results, err := parseDDGResponse([]byte(feed), 2)
		if err != nil {
			t.Fatalf("parseDDGResponse() error = %v", err)
		}
		if len(results) != 2 || results[1].URL != "https://example.org/alt" {
			t.Errorf("got %+v", results)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := parseDDGResponse([]byte(`not json at all`), 5); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestDDGForm(t *testing.T) {
	form := ddgForm(DDGQuery{Text: "Acme Corp alumni", Region: "us-en"})
	if got := form.Get("kl"); got != "us-en" {
		t.Errorf("kl = %q, want us-en", got)
	}
	if got := form.Encode(); !strings.Contains(got, "q=Acme+Corp+alumni") {
		t.Errorf("encoded form %q missing query", got)
	}
}

func TestExtractVQD(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`some html vqd='4-123456789_abc' more`, "4-123456789_abc"},
		{`vqd="4-987654321_xyz"`, "4-987654321_xyz"},
		{`nrj('/d.js?q=test&vqd=4-abcdef123&kl=wt-wt')`, "4-abcdef123"},
		{`<html>no token here</html>`, ""},
	}
	for _, tt := range tests {
		if got := extractVQD(tt.body); got != tt.want {
			t.Errorf("extractVQD(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestDDGUnwrapURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa&rut=abc", "https://example.com/a"},
		{"https://example.com/direct", "https://example.com/direct"},
		{"httpfoo", ""},
		{"/relative/path", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ddgUnwrapURL(tt.input); got != tt.want {
			t.Errorf("ddgUnwrapURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
