package connections

import "sort"

const fallbackFactor = "fallback: no direct match found"

// AssembleFallback tops up selected with kept records that have no direct
// match, ranked by 0.5*confidence + 0.5*accessibility score, until
// MaxConnections is reached or the pool runs out. Only requested types are used.
func AssembleFallback(selected []Connection, pool []CandidateRecord, anchors Anchors, prefs Preferences) []Connection {
	out := append([]Connection(nil), selected...)
	if len(out) >= MaxConnections {
		return out
	}

	taken := make(map[string]bool, len(out))
	for _, c := range out {
		taken[c.canonicalURL] = true
	}

	var extra []CandidateRecord
	for _, r := range pool {
		if r.DirectMatches.HasMatch() || !r.Kept() || !prefs.Allows(r.Candidate.Type()) {
			continue
		}
		if r.Candidate.IdentityURL() == "" || taken[r.CanonicalURL] {
			continue
		}
		extra = append(extra, r)
	}
	sort.SliceStable(extra, func(i, j int) bool {
		return fallbackScore(extra[i]) > fallbackScore(extra[j])
	})

	for _, r := range extra {
		if len(out) >= MaxConnections {
			break
		}
		if taken[r.CanonicalURL] {
			continue
		}
		taken[r.CanonicalURL] = true
		c := toConnection(r, anchors)
		c.AdditionalFactors = append(c.AdditionalFactors, fallbackFactor)
		out = append(out, c)
	}
	return out
}

func fallbackScore(r CandidateRecord) float64 {
	return 0.5*r.confidence() + 0.5*r.accessibilityScore()
}

// toConnection builds the output form of a record.
func toConnection(r CandidateRecord, anchors Anchors) Connection {
	c := Connection{
		Type:                   r.Candidate.Type(),
		DirectMatches:          append([]string{}, r.DirectMatches.DirectMatches...),
		SharedBackgroundPoints: sharedBackgroundPoints(anchors, r.DirectMatches.DirectMatches),
		AdditionalFactors:      []string{},
		Source:                 Source{URL: r.SourceURL, SearchQuery: r.SearchQuery},
		canonicalURL:           r.CanonicalURL,
	}
	switch cand := r.Candidate.(type) {
	case *Person:
		p := *cand
		c.Person = &p
	case *Program:
		p := *cand
		c.Program = &p
	}
	if r.Alignment != nil {
		c.GoalAlignment = r.Alignment.GoalAlignment
		c.AdditionalFactors = append(c.AdditionalFactors, r.Alignment.AlignmentTags...)
	}
	if r.Accessibility != nil {
		c.AdditionalFactors = append(c.AdditionalFactors, r.Accessibility.Reasons...)
	}
	return c
}
