package connections

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceScore(t *testing.T) {
	anchors := Anchors{Companies: []string{"Acme Corp"}}
	p := &Person{Name: "Jane", Company: "Acme Corp", VerifiedProfileURL: "https://example.com/jane"}
	dm := ComputeDirectMatches(anchors, p)
	require.Equal(t, []string{"Acme Corp"}, dm.DirectMatches)

	rec := CandidateRecord{
		Candidate:     p,
		DirectMatches: dm,
		Alignment:     &Alignment{Confidence: 0.9},
		Accessibility: &Accessibility{Keep: true, AccessibilityScore: 0.6},
		CanonicalURL:  CanonicalURL(p.VerifiedProfileURL),
	}
	assert.InDelta(t, 3.2, BalanceScore(rec), 1e-9)

	other := keptRecord(person("John", "https://example.com/john"), nil, 1.0, 1.0)
	selected, err := Balance([]CandidateRecord{other, rec}, Preferences{Connections: true})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "Jane", selected[0].Candidate.DisplayName())
}

func TestBalanceScoreUnscored(t *testing.T) {
	rec := CandidateRecord{Candidate: person("x", "https://x"), DirectMatches: DirectMatchResult{DirectMatches: []string{"Acme"}}}
	assert.InDelta(t, 2.0, BalanceScore(rec), 1e-9)
}

func TestBalanceMissingPeople(t *testing.T) {
	pool := []CandidateRecord{
		keptRecord(program("Fellowship", "https://f.org"), []string{"Acme"}, 0.9, 0.9),
		// An unkept person does not count.
		{Candidate: person("Jane", "https://j"), Accessibility: &Accessibility{Keep: false}},
	}
	_, err := Balance(pool, Preferences{Connections: true, Programs: true})
	var cov *InsufficientCoverageError
	require.True(t, errors.As(err, &cov))
	assert.Equal(t, TypePerson, cov.Type)
	assert.Contains(t, err.Error(), "person")
}

func TestBalanceMissingPrograms(t *testing.T) {
	pool := keptPeople(3, true)
	_, err := Balance(pool, Preferences{Connections: true, Programs: true})
	var cov *InsufficientCoverageError
	require.True(t, errors.As(err, &cov))
	assert.Equal(t, TypeProgram, cov.Type)
}

func TestBalanceProgramsOnlyWithPeoplePool(t *testing.T) {
	_, err := Balance(keptPeople(4, true), Preferences{Programs: true})
	var cov *InsufficientCoverageError
	require.True(t, errors.As(err, &cov))
	assert.Equal(t, TypeProgram, cov.Type)
	assert.Contains(t, err.Error(), "program")
}

func TestBalanceSeedsEachTypeAndCaps(t *testing.T) {
	var pool []CandidateRecord
	for i := 0; i < 8; i++ {
		pool = append(pool, keptRecord(person(fmt.Sprintf("p%d", i), fmt.Sprintf("https://example.com/p%d", i)), []string{"Acme"}, 0.9, 0.9))
	}
	// The program scores far below every person but must still be selected.
	pool = append(pool, keptRecord(program("Fellowship", "https://f.org"), nil, 0.1, 0.1))

	selected, err := Balance(pool, Preferences{Connections: true, Programs: true})
	require.NoError(t, err)
	require.Len(t, selected, MaxConnections)

	programs := 0
	for _, r := range selected {
		if r.Candidate.Type() == TypeProgram {
			programs++
		}
		assert.NotEmpty(t, r.Candidate.IdentityURL())
	}
	assert.Equal(t, 1, programs)
	assert.Equal(t, TypeProgram, selected[len(selected)-1].Candidate.Type())
}

func TestBalanceDedupByCanonicalURL(t *testing.T) {
	a := keptRecord(person("Jane", "https://www.example.com/jane/"), []string{"Acme"}, 0.9, 0.9)
	b := keptRecord(person("Jane D.", "https://example.com/jane"), []string{"Acme"}, 0.8, 0.8)
	selected, err := Balance([]CandidateRecord{a, b}, Preferences{Connections: true})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "Jane", selected[0].Candidate.DisplayName())
}

func TestBalanceIgnoresUnrequestedType(t *testing.T) {
	pool := append(keptPeople(2, true), keptRecord(program("F", "https://f.org"), []string{"Acme"}, 1, 1))
	selected, err := Balance(pool, Preferences{Connections: true})
	require.NoError(t, err)
	for _, r := range selected {
		assert.Equal(t, TypePerson, r.Candidate.Type())
	}
}
