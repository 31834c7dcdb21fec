package connections

// minKeptDirect is the number of kept direct-match records that ends the loop.
const minKeptDirect = 5

// ShouldLoop decides the node after a retrieval pass: NodeBalance when there
// is enough evidence for every requested type or the iteration cap is
// reached, NodeBroaden otherwise.
func ShouldLoop(st GraphState) string {
	keptDirect := 0
	covered := make(map[CandidateType]bool, 2)
	for _, r := range st.Candidates {
		if !r.Kept() {
			continue
		}
		covered[r.Candidate.Type()] = true
		if r.DirectMatches.HasMatch() {
			keptDirect++
		}
	}

	typeOK := true
	for _, t := range st.Preferences.Required() {
		if !covered[t] {
			typeOK = false
			break
		}
	}

	switch {
	case keptDirect >= minKeptDirect && typeOK:
		return NodeBalance
	case st.Iteration >= st.Budgets.MaxIterations:
		return NodeBalance
	default:
		return NodeBroaden
	}
}

// Broaden raises the broaden level and grows the per-iteration budgets, all capped.
func Broaden(st GraphState) GraphState {
	st.BroadenLevel = min(st.BroadenLevel+1, maxBroadenLevel)
	st.Budgets.MaxQueriesPerIteration = min(st.Budgets.MaxQueriesPerIteration+2, maxQueriesPerIterationCap)
	st.Budgets.MaxURLsPerQuery = min(st.Budgets.MaxURLsPerQuery+2, maxURLsPerQueryCap)
	return st
}
