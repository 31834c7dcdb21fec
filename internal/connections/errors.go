package connections

import (
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_connect/internal/engine"
)

// ErrProviderUnavailable is logged by searchers with no usable configuration.
// It never fails a run.
var ErrProviderUnavailable = engine.ErrProviderUnavailable

var errNoJSON = errors.New("no balanced JSON value in model output")

// SchemaValidationError reports an LLM step whose output could not be
// extracted, decoded or validated.
type SchemaValidationError struct {
	Step string
	Raw  string
	Err  error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("%s: invalid model output: %v", e.Step, e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// InsufficientCoverageError is returned when a requested candidate type has
// no eligible candidates at balance time.
type InsufficientCoverageError struct {
	Type CandidateType
}

func (e *InsufficientCoverageError) Error() string {
	return fmt.Sprintf("insufficient coverage: no eligible %s candidates found", e.Type)
}
