package connections

import (
	"context"
	"fmt"
)

// ScoreAlignment rates how well a candidate fits the goal.
func (f *Finder) ScoreAlignment(ctx context.Context, goal Goal, c Candidate) (*Alignment, error) {
	user := fmt.Sprintf(alignmentUserPrompt, mustJSON(goal), candidateJSON(c))
	a, err := completeJSON[Alignment](ctx, f.llm, stepAlignment, alignmentSystemPrompt, user)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FilterAccessibility decides whether a candidate is realistically reachable.
func (f *Finder) FilterAccessibility(ctx context.Context, educationLevel string, c Candidate) (*Accessibility, error) {
	if educationLevel == "" {
		educationLevel = "unspecified"
	}
	user := fmt.Sprintf(accessibilityUserPrompt, educationLevel, candidateJSON(c))
	a, err := completeJSON[Accessibility](ctx, f.llm, stepAccessibility, accessibilitySystemPrompt, user)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// candidateJSON renders a candidate in its tagged wire form.
func candidateJSON(c Candidate) string {
	env := candidateEnvelope{Type: string(c.Type())}
	switch c := c.(type) {
	case *Person:
		env.Person = c
	case *Program:
		env.Program = c
	}
	return mustJSON(env)
}
