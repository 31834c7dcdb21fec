package connections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_connect/internal/engine"
)

// Step names used in errors and logs.
const (
	stepAnchors       = "anchors"
	stepGoal          = "goal"
	stepQueries       = "queries"
	stepCandidate     = "candidate"
	stepAlignment     = "alignment"
	stepAccessibility = "accessibility"
	stepWriteup       = "writeup"
)

// schema is implemented by every LLM step output.
type schema[T any] interface {
	*T
	validate() error
}

// completeJSON runs one LLM step: complete, extract the embedded JSON values,
// and return the first one that decodes and validates. Extraction, decode and
// validation failures are *SchemaValidationError; transport failures are
// returned wrapped.
func completeJSON[T any, PT schema[T]](ctx context.Context, llm LLM, step, system, user string) (T, error) {
	raw, err := llm.Complete(ctx, system, user)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", step, err)
	}

	fail := func(err error) (T, error) {
		engine.IncrSchemaErrors()
		var zero T
		return zero, &SchemaValidationError{Step: step, Raw: raw, Err: err}
	}

	values := engine.ExtractJSONValues(raw)
	if len(values) == 0 {
		return fail(errNoJSON)
	}
	var lastErr error
	for _, js := range values {
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			lastErr = err
			continue
		}
		if err := PT(&v).validate(); err != nil {
			lastErr = err
			continue
		}
		return v, nil
	}
	return fail(lastErr)
}

// Anchors accept any object; every list is optional.
func (a *Anchors) validate() error { return nil }

func (g *Goal) validate() error {
	if strings.TrimSpace(g.Field) == "" && len(g.TargetRoles) == 0 {
		return errors.New("goal has neither field nor target_roles")
	}
	return nil
}

func (p *QueryPlan) validate() error {
	if len(p.PersonQueries)+len(p.ProgramQueries) == 0 {
		return errors.New("query plan has no queries")
	}
	return nil
}

// candidateEnvelope is the tagged wire form of a Candidate.
type candidateEnvelope struct {
	Type    string   `json:"type"`
	Person  *Person  `json:"person"`
	Program *Program `json:"program"`
}

const candidateNone = "none"

func (e *candidateEnvelope) validate() error {
	switch CandidateType(e.Type) {
	case TypePerson:
		if e.Person == nil || strings.TrimSpace(e.Person.Name) == "" {
			return errors.New("person candidate without name")
		}
	case TypeProgram:
		if e.Program == nil || strings.TrimSpace(e.Program.Name) == "" {
			return errors.New("program candidate without name")
		}
	case candidateNone:
	default:
		return fmt.Errorf("unknown candidate type %q", e.Type)
	}
	return nil
}

// candidate returns the parsed Candidate, or nil for "none".
func (e *candidateEnvelope) candidate() Candidate {
	switch CandidateType(e.Type) {
	case TypePerson:
		return e.Person
	case TypeProgram:
		return e.Program
	}
	return nil
}

func (a *Alignment) validate() error {
	if a.Confidence < 0 || a.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", a.Confidence)
	}
	return nil
}

func (a *Accessibility) validate() error {
	if a.AccessibilityScore < 0 || a.AccessibilityScore > 1 {
		return fmt.Errorf("accessibility_score %v outside [0,1]", a.AccessibilityScore)
	}
	return nil
}

type writeup struct {
	ConnectionReason string  `json:"connection_reason"`
	OutreachMessage  *string `json:"outreach_message"`
}

func (w *writeup) validate() error {
	if strings.TrimSpace(w.ConnectionReason) == "" {
		return errors.New("empty connection_reason")
	}
	return nil
}

// mustJSON renders v for prompt input.
func mustJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
