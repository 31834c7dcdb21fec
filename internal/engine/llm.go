package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Completer is a chat-completion backend: system + user prompt in, raw text out.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, system, user string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// NewLLM builds the configured provider and wraps it with metrics and fence stripping.
func NewLLM(ctx context.Context, c Config) (Completer, error) {
	var (
		base Completer
		err  error
	)
	switch c.LLMProvider {
	case "", ProviderOpenAICompat:
		base = newKitCompleter(c)
	case ProviderOpenAI:
		base = newOpenAICompleter(c)
	case ProviderGemini:
		base, err = newGeminiCompleter(ctx, c)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", c.LLMProvider)
	}
	if err != nil {
		return nil, err
	}
	return CountingCompleter(base), nil
}

// CountingCompleter records llm_calls/llm_errors and strips code fences from responses.
func CountingCompleter(next Completer) Completer {
	return CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		metrics.LLMCalls.Add(1)
		resp, err := next.Complete(ctx, system, user)
		if err != nil {
			metrics.LLMErrors.Add(1)
			return "", err
		}
		return stripFences(resp), nil
	})
}

// newKitCompleter uses go-kit's OpenAI-compatible client (Gemini OpenAI endpoint by default).
func newKitCompleter(c Config) Completer {
	client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	return CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		return client.Complete(ctx, system, user)
	})
}

func newOpenAICompleter(c Config) Completer {
	oc := openai.DefaultConfig(c.LLMAPIKey)
	if c.LLMAPIBase != "" {
		oc.BaseURL = c.LLMAPIBase
	}
	oc.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	client := openai.NewClientWithConfig(oc)

	return CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.LLMModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			Temperature: float32(c.LLMTemperature),
			MaxTokens:   c.LLMMaxTokens,
		})
		if err != nil {
			return "", fmt.Errorf("openai completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("openai completion: no choices returned")
		}
		return resp.Choices[0].Message.Content, nil
	})
}

func newGeminiCompleter(ctx context.Context, c Config) (Completer, error) {
	if c.LLMAPIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.LLMAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	temperature := float32(c.LLMTemperature)
	return CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		contents := []*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: user}},
		}}
		resp, err := client.Models.GenerateContent(ctx, c.LLMModel, contents, &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
			Temperature:       &temperature,
			ResponseMIMEType:  "application/json",
		})
		if err != nil {
			return "", fmt.Errorf("gemini API call failed: %w", err)
		}
		return resp.Text(), nil
	}), nil
}
