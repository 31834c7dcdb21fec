package engine

import (
	"context"
	"errors"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.raw); got != tt.want {
				t.Errorf("stripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountingCompleter(t *testing.T) {
	before := GetMetrics()

	ok := CountingCompleter(CompleterFunc(func(_ context.Context, system, user string) (string, error) {
		return "```json\n{\"echo\":\"" + user + "\"}\n```", nil
	}))
	got, err := ok.Complete(context.Background(), "sys", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"echo":"hi"}` {
		t.Errorf("got %q", got)
	}

	boom := errors.New("boom")
	failing := CountingCompleter(CompleterFunc(func(context.Context, string, string) (string, error) {
		return "ignored", boom
	}))
	got, err = failing.Complete(context.Background(), "sys", "hi")
	if !errors.Is(err, boom) || got != "" {
		t.Errorf("expected boom error and empty output, got %q, %v", got, err)
	}

	after := GetMetrics()
	if after["llm_calls"]-before["llm_calls"] != 2 {
		t.Errorf("llm_calls delta = %d, want 2", after["llm_calls"]-before["llm_calls"])
	}
	if after["llm_errors"]-before["llm_errors"] != 1 {
		t.Errorf("llm_errors delta = %d, want 1", after["llm_errors"]-before["llm_errors"])
	}
}

func TestNewLLMUnknownProvider(t *testing.T) {
	if _, err := NewLLM(context.Background(), Config{LLMProvider: "bogus"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewLLMGeminiRequiresKey(t *testing.T) {
	if _, err := NewLLM(context.Background(), Config{LLMProvider: ProviderGemini}); err == nil {
		t.Error("expected error for gemini without API key")
	}
}
