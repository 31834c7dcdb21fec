package connections

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDirectMatchesNormalization(t *testing.T) {
	anchors := Anchors{Companies: []string{"Google"}}
	for _, company := range []string{" Google ", "GOOGLE", "google"} {
		t.Run(company, func(t *testing.T) {
			got := ComputeDirectMatches(anchors, &Person{Name: "x", Company: company})
			assert.Equal(t, []string{"Google"}, got.DirectMatches)
			assert.Equal(t, []MatchCategory{CategoryCompany}, got.MatchCategory)
		})
	}
}

func TestComputeDirectMatchesBlankAnchors(t *testing.T) {
	anchors := Anchors{
		Companies:     []string{"", "  "},
		Institutions:  []string{"\t"},
		Organizations: []string{" "},
		Projects:      []string{""},
	}
	p := &Person{Name: "x", Company: "", PastCompanies: []string{" "}, Education: []string{""}, Organizations: []string{"  "}}
	got := ComputeDirectMatches(anchors, p)
	assert.False(t, got.HasMatch())
	assert.Empty(t, got.MatchCategory)

	got = ComputeDirectMatches(anchors, &Program{Name: " ", Organization: ""})
	assert.False(t, got.HasMatch())
}

func TestComputeDirectMatchesPerson(t *testing.T) {
	anchors := Anchors{
		Companies:     []string{"Acme Corp", "Globex"},
		Institutions:  []string{"State University"},
		Organizations: []string{"Women Who Code"},
		Projects:      []string{"OpenRoute"},
		Locations:     []string{"Boston"},
	}
	p := &Person{
		Name:          "Jane",
		Company:       "Initech",
		PastCompanies: []string{"globex"},
		Education:     []string{"state university"},
		Organizations: []string{"Chess Club"},
		Projects:      []string{"openroute"},
	}
	got := ComputeDirectMatches(anchors, p)
	assert.Equal(t, []string{"Globex", "State University", "OpenRoute"}, got.DirectMatches)
	assert.Equal(t, []MatchCategory{CategoryCompany, CategoryInstitution, CategoryProject}, got.MatchCategory)
}

func TestComputeDirectMatchesPersonIgnoresCrossCategory(t *testing.T) {
	// A person's education is only checked against institutions.
	anchors := Anchors{Companies: []string{"State University"}}
	got := ComputeDirectMatches(anchors, &Person{Name: "x", Education: []string{"State University"}})
	assert.False(t, got.HasMatch())
}

func TestComputeDirectMatchesProgram(t *testing.T) {
	anchors := Anchors{
		Institutions:  []string{"State University"},
		Organizations: []string{"Code for Boston"},
	}
	got := ComputeDirectMatches(anchors, &Program{Name: "Code for Boston", Organization: "State University"})
	assert.Equal(t, []string{"State University", "Code for Boston"}, got.DirectMatches)
	assert.Equal(t, []MatchCategory{CategoryInstitution, CategoryOrganization}, got.MatchCategory)
}

func TestComputeDirectMatchesDedupAnchor(t *testing.T) {
	anchors := Anchors{Companies: []string{"Acme"}, Organizations: []string{"acme"}}
	got := ComputeDirectMatches(anchors, &Program{Name: "Fellowship", Organization: "ACME"})
	assert.Equal(t, []string{"Acme"}, got.DirectMatches)
	assert.Equal(t, []MatchCategory{CategoryCompany, CategoryOrganization}, got.MatchCategory)
}

func TestSharedBackgroundPoints(t *testing.T) {
	anchors := Anchors{Companies: []string{"Acme Corp"}, Institutions: []string{"State University"}}
	got := sharedBackgroundPoints(anchors, []string{"Acme Corp", "State University", "Other"})
	assert.Equal(t, []string{
		"Shared company: Acme Corp",
		"Shared institution: State University",
		"Shared background: Other",
	}, got)
}
