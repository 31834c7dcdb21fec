package connections

import "strings"

// ComputeDirectMatches returns the anchors a candidate shares exactly, after
// trimming and lowercasing both sides. It performs no I/O.
//
// People match company and past companies against companies, education
// against institutions, organizations against organizations and projects
// against projects. Programs match their organization and their own name
// against companies, institutions, organizations and projects.
func ComputeDirectMatches(anchors Anchors, c Candidate) DirectMatchResult {
	var m matcher
	switch c := c.(type) {
	case *Person:
		m.match(anchors.Companies, CategoryCompany, append([]string{c.Company}, c.PastCompanies...))
		m.match(anchors.Institutions, CategoryInstitution, c.Education)
		m.match(anchors.Organizations, CategoryOrganization, c.Organizations)
		m.match(anchors.Projects, CategoryProject, c.Projects)
	case *Program:
		values := []string{c.Organization, c.Name}
		m.match(anchors.Companies, CategoryCompany, values)
		m.match(anchors.Institutions, CategoryInstitution, values)
		m.match(anchors.Organizations, CategoryOrganization, values)
		m.match(anchors.Projects, CategoryProject, values)
	}
	return m.result
}

type matcher struct {
	result       DirectMatchResult
	seenAnchor   map[string]bool
	seenCategory map[MatchCategory]bool
}

func (m *matcher) match(anchorList []string, cat MatchCategory, values []string) {
	want := make(map[string]bool, len(values))
	for _, v := range values {
		if n := normalizeMatch(v); n != "" {
			want[n] = true
		}
	}
	if len(want) == 0 {
		return
	}
	if m.seenAnchor == nil {
		m.seenAnchor = make(map[string]bool)
		m.seenCategory = make(map[MatchCategory]bool)
	}
	for _, a := range anchorList {
		n := normalizeMatch(a)
		if n == "" || !want[n] {
			continue
		}
		if !m.seenAnchor[n] {
			m.seenAnchor[n] = true
			m.result.DirectMatches = append(m.result.DirectMatches, a)
		}
		if !m.seenCategory[cat] {
			m.seenCategory[cat] = true
			m.result.MatchCategory = append(m.result.MatchCategory, cat)
		}
	}
}

func normalizeMatch(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// sharedBackgroundPoints describes each direct match with the anchor list it came from.
func sharedBackgroundPoints(anchors Anchors, matches []string) []string {
	lists := []struct {
		cat  MatchCategory
		list []string
	}{
		{CategoryCompany, anchors.Companies},
		{CategoryInstitution, anchors.Institutions},
		{CategoryOrganization, anchors.Organizations},
		{CategoryProject, anchors.Projects},
	}
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		n := normalizeMatch(match)
		point := "Shared background: " + match
		for _, l := range lists {
			if hasNormalized(l.list, n) {
				point = "Shared " + string(l.cat) + ": " + match
				break
			}
		}
		out = append(out, point)
	}
	return out
}

func hasNormalized(list []string, n string) bool {
	for _, s := range list {
		if normalizeMatch(s) == n {
			return true
		}
	}
	return false
}
