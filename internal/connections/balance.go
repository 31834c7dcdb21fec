package connections

import (
	"slices"
	"sort"
)

// BalanceScore is the deterministic selection score:
// 2.0 for any direct match + alignment confidence + 0.5 * accessibility score.
func BalanceScore(r CandidateRecord) float64 {
	score := r.confidence() + 0.5*r.accessibilityScore()
	if r.DirectMatches.HasMatch() {
		score += 2.0
	}
	return score
}

// Balance selects up to MaxConnections kept records. Each requested type is
// seeded with its best record first; remaining slots are filled by score.
// A requested type with no eligible record yields *InsufficientCoverageError.
func Balance(pool []CandidateRecord, prefs Preferences) ([]CandidateRecord, error) {
	var eligible []CandidateRecord
	for _, r := range pool {
		if r.Kept() && prefs.Allows(r.Candidate.Type()) && r.Candidate.IdentityURL() != "" {
			eligible = append(eligible, r)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return BalanceScore(eligible[i]) > BalanceScore(eligible[j])
	})

	var selected []CandidateRecord
	taken := make(map[string]bool)
	take := func(r CandidateRecord) {
		if len(selected) >= MaxConnections || taken[r.CanonicalURL] {
			return
		}
		taken[r.CanonicalURL] = true
		selected = append(selected, r)
	}

	for _, t := range prefs.Required() {
		i := slices.IndexFunc(eligible, func(r CandidateRecord) bool { return r.Candidate.Type() == t })
		if i < 0 {
			return nil, &InsufficientCoverageError{Type: t}
		}
		take(eligible[i])
	}
	for _, r := range eligible {
		take(r)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return BalanceScore(selected[i]) > BalanceScore(selected[j])
	})
	return selected, nil
}
