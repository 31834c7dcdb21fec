package connections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_connect/internal/engine"
)

// recognitionPhrases mark a sentence where an entity only recognized the person.
var recognitionPhrases = []string{
	"awarded by", "award from", "recognized by", "recognised by",
	"certified by", "certification from", "certificate from",
	"scholarship from", "honored by", "honoured by", "finalist",
	"winner of", "won the", "grant from", "sponsored by",
}

// membershipStems mark a sentence that states membership or employment.
var membershipStems = []string{
	"work", "intern", "employ", "member", "join", "volunteer", "stud",
	"attend", "graduat", "founded", "lead ", "leading ", "led ", "served", "serve ",
	"president", "engineer at", "analyst at", "developer at", "researcher at",
}

var sentenceSplitRe = regexp.MustCompile(`[.!?;\n]+`)

// ExtractAnchors pulls explicit anchors from background text. Schema failures
// are retried with backoff before the error is returned.
func (f *Finder) ExtractAnchors(ctx context.Context, background string) (Anchors, error) {
	user := fmt.Sprintf(anchorUserPrompt, background)
	rc := f.stepRetry
	rc.Retryable = retryableStepError

	anchors, err := engine.RetryDo(ctx, rc, func() (Anchors, error) {
		return completeJSON[Anchors](ctx, f.llm, stepAnchors, anchorSystemPrompt, user)
	})
	if err != nil {
		return Anchors{}, err
	}

	cleaned := filterAnchors(anchors, background)
	slog.Debug("anchors extracted",
		slog.Int("companies", len(cleaned.Companies)),
		slog.Int("institutions", len(cleaned.Institutions)),
		slog.Int("organizations", len(cleaned.Organizations)),
		slog.Int("projects", len(cleaned.Projects)))
	return cleaned, nil
}

// retryableStepError retries everything except cancellation.
func retryableStepError(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// filterAnchors trims and dedups every list, drops companies, institutions and
// organizations that do not appear in the background, and drops companies and
// organizations that the background only mentions as a source of recognition.
func filterAnchors(a Anchors, background string) Anchors {
	sentences := splitSentences(background)
	lowerBG := strings.ToLower(background)

	present := func(list []string) []string {
		var out []string
		for _, s := range list {
			if strings.Contains(lowerBG, strings.ToLower(s)) {
				out = append(out, s)
			}
		}
		return out
	}
	notRecognitionOnly := func(list []string) []string {
		var out []string
		for _, s := range list {
			if recognitionOnly(s, sentences) {
				slog.Debug("anchor dropped: recognition only", slog.String("entity", s))
				continue
			}
			out = append(out, s)
		}
		return out
	}

	return Anchors{
		Companies:     notRecognitionOnly(present(dedupStrings(a.Companies))),
		Institutions:  present(dedupStrings(a.Institutions)),
		Organizations: notRecognitionOnly(present(dedupStrings(a.Organizations))),
		Projects:      dedupStrings(a.Projects),
		Locations:     dedupStrings(a.Locations),
		Keywords:      dedupStrings(a.Keywords),
	}
}

// recognitionOnly reports whether every sentence mentioning entity uses a
// recognition phrase and none states membership.
func recognitionOnly(entity string, sentences []string) bool {
	e := strings.ToLower(entity)
	mentioned := false
	for _, s := range sentences {
		if !strings.Contains(s, e) {
			continue
		}
		mentioned = true
		if containsAny(s, membershipStems) || !containsAny(s, recognitionPhrases) {
			return false
		}
	}
	return mentioned
}

func splitSentences(text string) []string {
	parts := sentenceSplitRe.Split(strings.ToLower(text), -1)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// dedupStrings trims entries and drops blanks and case-insensitive repeats.
func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
