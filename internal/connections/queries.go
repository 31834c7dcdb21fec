package connections

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// PlanQueries asks the LLM for one iteration's queries. Projects are never
// sent to the planner. Every returned query embeds an anchor term; queries
// that cannot be anchored are dropped. Errors are fatal to the run.
func (f *Finder) PlanQueries(ctx context.Context, anchors Anchors, goal Goal, broadenLevel int, prefs Preferences, maxQueries int) (QueryPlan, error) {
	planAnchors := anchors.withoutProjects()
	system := fmt.Sprintf(queryPlannerSystemPrompt, maxQueries)
	user := fmt.Sprintf(queryPlannerUserPrompt, mustJSON(planAnchors), mustJSON(goal), broadenLevel, prefs.Connections, prefs.Programs)

	plan, err := completeJSON[QueryPlan](ctx, f.llm, stepQueries, system, user)
	if err != nil {
		return QueryPlan{}, err
	}

	plan = anchorQueries(plan, planAnchors.searchTerms(), prefs)
	slog.Debug("queries planned",
		slog.Int("broaden_level", broadenLevel),
		slog.Int("person", len(plan.PersonQueries)),
		slog.Int("program", len(plan.ProgramQueries)))
	return plan, nil
}

// anchorQueries empties unrequested lists, dedups queries and forces every
// query to contain at least one anchor term.
func anchorQueries(plan QueryPlan, terms []string, prefs Preferences) QueryPlan {
	if !prefs.Connections {
		plan.PersonQueries = nil
	}
	if !prefs.Programs {
		plan.ProgramQueries = nil
	}

	lead := ""
	if len(terms) > 0 {
		lead = terms[0]
		// Prefer a planner-chosen required term when it is a real anchor.
		for _, req := range plan.RequiredAnchorTerms {
			if i := indexFold(terms, req); i >= 0 {
				lead = terms[i]
				break
			}
		}
	}

	fix := func(queries []string) []string {
		var out []string
		for _, q := range dedupStrings(queries) {
			if !containsAnyFold(q, terms) {
				if lead == "" {
					slog.Debug("query dropped: no anchor term", slog.String("query", q))
					continue
				}
				q = strconv.Quote(lead) + " " + q
			}
			out = append(out, q)
		}
		return dedupStrings(out)
	}

	plan.PersonQueries = fix(plan.PersonQueries)
	plan.ProgramQueries = fix(plan.ProgramQueries)
	plan.ExcludeTerms = dedupStrings(plan.ExcludeTerms)
	return plan
}

func containsAnyFold(s string, terms []string) bool {
	ls := strings.ToLower(s)
	for _, t := range terms {
		if t != "" && strings.Contains(ls, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func indexFold(list []string, s string) int {
	s = strings.TrimSpace(s)
	for i, v := range list {
		if strings.EqualFold(v, s) {
			return i
		}
	}
	return -1
}

// plannedQuery is one query tagged with the candidate type it targets.
type plannedQuery struct {
	Text string
	Type CandidateType
}

// interleaveQueries alternates person and program queries and caps the total.
func interleaveQueries(plan QueryPlan, limit int) []plannedQuery {
	var out []plannedQuery
	for i := 0; len(out) < limit && (i < len(plan.PersonQueries) || i < len(plan.ProgramQueries)); i++ {
		if i < len(plan.PersonQueries) {
			out = append(out, plannedQuery{Text: plan.PersonQueries[i], Type: TypePerson})
		}
		if len(out) < limit && i < len(plan.ProgramQueries) {
			out = append(out, plannedQuery{Text: plan.ProgramQueries[i], Type: TypeProgram})
		}
	}
	return out
}
