package engine

import "testing"

func TestParseStartpageHTML(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		wantCount int
		wantFirst SearchResult
	}{
		{
			name: "standard results",
			html: `<html><body>
				<div class="w-gl__result">
					<a class="w-gl__result-title" href="https://example.com/1">First Result</a>
					<p class="w-gl__description">First description text.</p>
				</div>
				<div class="w-gl__result">
					<a class="w-gl__result-title" href="https://example.com/2">Second Result</a>
					<p class="w-gl__description">Second description text.</p>
				</div>
			</body></html>`,
			wantCount: 2,
		},
		{
			name: "fallback selectors",
			html: `<html><body>
				<div class="result">
					<h3><a href="https://example.com/3">Third Result</a></h3>
					<p class="result-description">Third description.</p>
				</div>
			</body></html>`,
			wantCount: 1,
		},
		{
			name: "skip empty href",
			html: `<html><body>
				<div class="w-gl__result">
					<a class="w-gl__result-title" href="">No URL</a>
					<p class="w-gl__description">Missing URL.</p>
				</div>
			</body></html>`,
			wantCount: 0,
		},
		{
			name: "skip startpage internal links",
			html: `<html><body>
				<div class="w-gl__result">
					<a class="w-gl__result-title" href="https://www.startpage.com/do/something">Internal</a>
					<p class="w-gl__description">Internal link.</p>
				</div>
			</body></html>`,
			wantCount: 0,
		},
		{
			name: "snippet captured",
			html: `<html><body>
				<div class="w-gl__result">
					<a class="w-gl__result-title" href="https://example.com/jane">Jane Doe - Acme</a>
					<p class="w-gl__description">Jane interned at Acme Corp.</p>
				</div>
			</body></html>`,
			wantCount: 1,
			wantFirst: SearchResult{Title: "Jane Doe - Acme", URL: "https://example.com/jane", Snippet: "Jane interned at Acme Corp."},
		},
		{
			name:      "no results",
			html:      `<html><body><p>No results found</p></body></html>`,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := parseStartpageHTML([]byte(tt.html))
			if err != nil {
				t.Fatalf("parseStartpageHTML() error = %v", err)
			}
			if len(results) != tt.wantCount {
				t.Errorf("parseStartpageHTML() returned %d results, want %d", len(results), tt.wantCount)
			}
			if tt.wantFirst.URL != "" && len(results) > 0 && results[0] != tt.wantFirst {
				t.Errorf("first result = %+v, want %+v", results[0], tt.wantFirst)
			}
			for i, r := range results {
				if r.URL == "" || r.Title == "" {
					t.Errorf("result[%d] missing url or title: %+v", i, r)
				}
			}
		})
	}
}
