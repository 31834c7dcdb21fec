package connections

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_connect/internal/engine"
)

// DecomposeGoal turns a goal title into target field, roles, companies and
// seniority. Schema failures are retried with backoff before the error is returned.
func (f *Finder) DecomposeGoal(ctx context.Context, goalTitle, educationLevel string) (Goal, error) {
	if educationLevel == "" {
		educationLevel = "unspecified"
	}
	user := fmt.Sprintf(goalUserPrompt, goalTitle, educationLevel)
	rc := f.stepRetry
	rc.Retryable = retryableStepError

	goal, err := engine.RetryDo(ctx, rc, func() (Goal, error) {
		return completeJSON[Goal](ctx, f.llm, stepGoal, goalSystemPrompt, user)
	})
	if err != nil {
		return Goal{}, err
	}

	goal.TargetCompanies = dedupStrings(goal.TargetCompanies)
	goal.TargetRoles = dedupStrings(goal.TargetRoles)
	goal.HelpNeeded = dedupStrings(goal.HelpNeeded)
	return goal, nil
}
