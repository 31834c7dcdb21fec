package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const profilePage = `<html><head><title>Jane Doe</title>
<style>.x { color: red }</style>
<script>var secret = "tracking";</script>
</head><body>
<nav>Home | About</nav>
<main><h1>Jane Doe</h1><p>Software Engineer at Acme Corp.</p><p>Alumna of State University.</p></main>
<footer>Copyright</footer>
</body></html>`

func TestExtractPageText(t *testing.T) {
	text := ExtractPageText([]byte(profilePage))

	for _, want := range []string{"Jane Doe", "Software Engineer at Acme Corp.", "State University"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in extracted text, got %q", want, text)
		}
	}
	for _, unwanted := range []string{"var secret", "color: red", "Home | About", "Copyright"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("unexpected %q in extracted text: %q", unwanted, text)
		}
	}
}

func TestPageTextPlain(t *testing.T) {
	body := []byte("just   some\n\n\n\ntext")
	if text := PageText(body, "text/plain; charset=utf-8"); text != "just some\n\ntext" {
		t.Errorf("plain: got %q", text)
	}
	// Parsed as HTML the line breaks collapse.
	if text := PageText(body, "text/html"); text != "just some text" {
		t.Errorf("html: got %q", text)
	}
}

func TestPageFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/profile":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(profilePage))
		case "/notes.txt":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("Jane Doe\n\n\n\nMentor at   Acme Corp"))
		case "/long":
			_, _ = w.Write([]byte("<p>" + strings.Repeat("a", 500) + "</p>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewPageFetcher(Config{FetchTimeout: 2 * time.Second, MaxContentChars: 100})
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		text := f.Fetch(ctx, srv.URL+"/profile")
		if !strings.Contains(text, "Acme Corp") {
			t.Errorf("expected page text, got %q", text)
		}
	})

	t.Run("plain text keeps paragraphs", func(t *testing.T) {
		text := f.Fetch(ctx, srv.URL+"/notes.txt")
		if text != "Jane Doe\n\nMentor at Acme Corp" {
			t.Errorf("got %q", text)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		text := f.Fetch(ctx, srv.URL+"/long")
		if n := len([]rune(text)); n > 100 {
			t.Errorf("expected at most 100 runes, got %d", n)
		}
	})

	t.Run("not found degrades to empty", func(t *testing.T) {
		if text := f.Fetch(ctx, srv.URL+"/missing"); text != "" {
			t.Errorf("expected empty text for 404, got %q", text)
		}
	})

	t.Run("network error degrades to empty", func(t *testing.T) {
		if text := f.Fetch(ctx, "http://127.0.0.1:1/unreachable"); text != "" {
			t.Errorf("expected empty text for unreachable host, got %q", text)
		}
	})
}
