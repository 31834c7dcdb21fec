package connections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleFallback(t *testing.T) {
	anchors := Anchors{Companies: []string{"Acme"}}
	direct := keptRecord(person("Direct", "https://example.com/direct"), []string{"Acme"}, 0.9, 0.9)
	selected := []Connection{toConnection(direct, anchors)}

	pool := []CandidateRecord{
		direct,
		keptRecord(person("Low", "https://example.com/low"), nil, 0.1, 0.1),
		keptRecord(person("High", "https://example.com/high"), nil, 0.9, 0.7),
		keptRecord(program("Prog", "https://prog.org"), nil, 1, 1),
		{Candidate: person("Dropped", "https://example.com/dropped"), Accessibility: &Accessibility{Keep: false}},
		{Candidate: person("Unscored", "https://example.com/unscored")},
	}

	got := AssembleFallback(selected, pool, anchors, Preferences{Connections: true})
	require.Len(t, got, 3)
	assert.Equal(t, "Direct", got[0].Name())
	assert.Equal(t, "High", got[1].Name())
	assert.Equal(t, "Low", got[2].Name())
	assert.Contains(t, got[1].AdditionalFactors, fallbackFactor)
	assert.NotContains(t, got[0].AdditionalFactors, fallbackFactor)

	// Input slice is not modified.
	assert.Len(t, selected, 1)
}

func TestAssembleFallbackFullSelection(t *testing.T) {
	var selected []Connection
	for _, r := range keptPeople(MaxConnections, true) {
		selected = append(selected, toConnection(r, Anchors{}))
	}
	pool := []CandidateRecord{keptRecord(person("Extra", "https://example.com/extra"), nil, 1, 1)}
	got := AssembleFallback(selected, pool, Anchors{}, Preferences{Connections: true})
	assert.Len(t, got, MaxConnections)
}

func TestAssembleFallbackCaps(t *testing.T) {
	pool := keptPeople(9, false)
	got := AssembleFallback(nil, pool, Anchors{}, Preferences{Connections: true})
	assert.Len(t, got, MaxConnections)
	for _, c := range got {
		assert.NotEmpty(t, c.URL())
	}
}

func TestToConnection(t *testing.T) {
	anchors := Anchors{Companies: []string{"Acme"}}
	p := &Person{Name: "Jane", Company: "Acme", VerifiedProfileURL: "https://example.com/jane"}
	rec := CandidateRecord{
		Candidate:     p,
		DirectMatches: ComputeDirectMatches(anchors, p),
		Alignment:     &Alignment{GoalAlignment: "Works in the target role", AlignmentTags: []string{"role match"}, Confidence: 0.8},
		Accessibility: &Accessibility{Keep: true, AccessibilityScore: 0.5, Reasons: []string{"mid-level"}},
		SourceURL:     "https://search.example/jane",
		SearchQuery:   `"Acme" engineer`,
		CanonicalURL:  "example.com/jane",
	}
	c := toConnection(rec, anchors)
	assert.Equal(t, TypePerson, c.Type)
	require.NotNil(t, c.Person)
	assert.Nil(t, c.Program)
	assert.Equal(t, []string{"Acme"}, c.DirectMatches)
	assert.Equal(t, []string{"Shared company: Acme"}, c.SharedBackgroundPoints)
	assert.Equal(t, []string{"role match", "mid-level"}, c.AdditionalFactors)
	assert.Equal(t, "Works in the target role", c.GoalAlignment)
	assert.Equal(t, "https://example.com/jane", c.URL())
	assert.Equal(t, Source{URL: "https://search.example/jane", SearchQuery: `"Acme" engineer`}, c.Source)

	// The output holds a copy of the candidate.
	c.Person.Name = "changed"
	assert.Equal(t, "Jane", p.Name)
}
