package connections

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_connect/internal/engine"
)

// MaxConnections caps the number of connections returned by a run.
const MaxConnections = 5

// Budget limits.
const (
	defaultMaxIterations          = 3
	defaultMaxQueriesPerIteration = 6
	defaultMaxURLsPerQuery        = 5

	maxIterationsCap          = 6
	maxQueriesPerIterationCap = 12
	maxURLsPerQueryCap        = 10
	maxBroadenLevel           = 2
)

// LLM is a chat-completion backend.
type LLM interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Searcher returns ordered web results. An unconfigured searcher returns an empty list.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// PeopleSearcher is implemented by searchers with person-specific sources.
// The retriever uses it for person queries when available.
type PeopleSearcher interface {
	SearchPeople(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// Fetcher returns the plain text of a page, or "" on failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string) string
}

// SearchResult is one ordered web search hit.
type SearchResult = engine.SearchResult

// Anchors are literal entities taken from the user's background.
type Anchors struct {
	Companies     []string `json:"companies"`
	Institutions  []string `json:"institutions"`
	Organizations []string `json:"organizations"`
	Projects      []string `json:"projects"`
	Locations     []string `json:"locations"`
	Keywords      []string `json:"keywords"`
}

// withoutProjects returns a copy with projects cleared. Projects stay in the
// run state for match scoring but never reach query planning.
func (a Anchors) withoutProjects() Anchors {
	a.Projects = nil
	return a
}

// searchTerms lists the anchor terms a query may embed, in priority order.
func (a Anchors) searchTerms() []string {
	var out []string
	for _, list := range [][]string{a.Companies, a.Institutions, a.Organizations, a.Locations, a.Keywords} {
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// SeniorityTargets separates near-peer and senior contact profiles.
type SeniorityTargets struct {
	NearPeer []string `json:"near_peer"`
	Senior   []string `json:"senior"`
}

// Goal is the decomposed career goal.
type Goal struct {
	Field            string           `json:"field"`
	TargetCompanies  []string         `json:"target_companies"`
	TargetRoles      []string         `json:"target_roles"`
	HelpNeeded       []string         `json:"help_needed"`
	SeniorityTargets SeniorityTargets `json:"seniority_targets"`
}

// QueryPlan holds one iteration's search queries.
type QueryPlan struct {
	PersonQueries       []string `json:"person_queries"`
	ProgramQueries      []string `json:"program_queries"`
	RequiredAnchorTerms []string `json:"required_anchor_terms"`
	ExcludeTerms        []string `json:"exclude_terms"`
	Notes               []string `json:"notes"`
}

// CandidateType discriminates Person and Program candidates.
type CandidateType string

const (
	TypePerson  CandidateType = "person"
	TypeProgram CandidateType = "program"
)

// Candidate is either a *Person or a *Program. The set is closed.
type Candidate interface {
	Type() CandidateType
	DisplayName() string
	// IdentityURL is the type-specific URL: verified_profile_url or website_url.
	IdentityURL() string
	candidate()
}

// Person is a potential human contact.
type Person struct {
	Name               string   `json:"name"`
	CurrentRole        string   `json:"current_role"`
	Company            string   `json:"company"`
	Education          []string `json:"education"`
	PastCompanies      []string `json:"past_companies"`
	Organizations      []string `json:"organizations"`
	Projects           []string `json:"projects"`
	VerifiedProfileURL string   `json:"verified_profile_url"`
	EvidenceSnippets   []string `json:"evidence_snippets"`
}

func (*Person) Type() CandidateType   { return TypePerson }
func (p *Person) DisplayName() string { return p.Name }
func (p *Person) IdentityURL() string { return p.VerifiedProfileURL }
func (*Person) candidate()            {}

// Program is a fellowship, internship, mentorship or similar opportunity.
type Program struct {
	Name             string   `json:"name"`
	Organization     string   `json:"organization"`
	ProgramType      string   `json:"program_type"`
	WebsiteURL       string   `json:"website_url"`
	Eligibility      []string `json:"eligibility"`
	EvidenceSnippets []string `json:"evidence_snippets"`
}

func (*Program) Type() CandidateType   { return TypeProgram }
func (p *Program) DisplayName() string { return p.Name }
func (p *Program) IdentityURL() string { return p.WebsiteURL }
func (*Program) candidate()            {}

// MatchCategory names the anchor list a direct match came from.
type MatchCategory string

const (
	CategoryCompany      MatchCategory = "company"
	CategoryInstitution  MatchCategory = "institution"
	CategoryOrganization MatchCategory = "organization"
	CategoryProject      MatchCategory = "project"
)

// DirectMatchResult is the evidence shared between a candidate and the anchors.
type DirectMatchResult struct {
	DirectMatches []string        `json:"direct_matches"`
	MatchCategory []MatchCategory `json:"match_category"`
}

// HasMatch reports whether at least one anchor matched.
func (d DirectMatchResult) HasMatch() bool { return len(d.DirectMatches) > 0 }

// Alignment is the LLM's estimate of goal fit.
type Alignment struct {
	GoalAlignment string   `json:"goal_alignment"`
	AlignmentTags []string `json:"alignment_tags"`
	Confidence    float64  `json:"confidence"`
}

// Accessibility is the LLM's estimate of how reachable a candidate is.
type Accessibility struct {
	Keep               bool     `json:"keep"`
	AccessibilityScore float64  `json:"accessibility_score"`
	Reasons            []string `json:"reasons"`
}

// CandidateRecord is one gated candidate in the run pool. Records are never
// modified after they are appended.
type CandidateRecord struct {
	Candidate     Candidate
	DirectMatches DirectMatchResult
	Alignment     *Alignment
	Accessibility *Accessibility
	SourceURL     string
	SearchQuery   string
	CanonicalURL  string
}

// Kept reports whether the accessibility step returned keep=true.
func (r CandidateRecord) Kept() bool {
	return r.Accessibility != nil && r.Accessibility.Keep
}

func (r CandidateRecord) confidence() float64 {
	if r.Alignment == nil {
		return 0
	}
	return r.Alignment.Confidence
}

func (r CandidateRecord) accessibilityScore() float64 {
	if r.Accessibility == nil {
		return 0
	}
	return r.Accessibility.AccessibilityScore
}

// Preferences selects which candidate types a run must return.
type Preferences struct {
	Connections bool `json:"connections"`
	Programs    bool `json:"programs"`
}

// Allows reports whether t was requested.
func (p Preferences) Allows(t CandidateType) bool {
	switch t {
	case TypePerson:
		return p.Connections
	case TypeProgram:
		return p.Programs
	}
	return false
}

// Required lists the requested types in a fixed order.
func (p Preferences) Required() []CandidateType {
	var out []CandidateType
	if p.Connections {
		out = append(out, TypePerson)
	}
	if p.Programs {
		out = append(out, TypeProgram)
	}
	return out
}

// Budgets bound the work of one retrieval pass.
type Budgets struct {
	MaxIterations          int `json:"max_iterations"`
	MaxQueriesPerIteration int `json:"max_queries_per_iteration"`
	MaxURLsPerQuery        int `json:"max_urls_per_query"`
}

// GraphState is the single run context threaded through the graph.
// Nodes return an updated copy; slices are replaced, never appended in place.
type GraphState struct {
	GoalTitle      string
	EducationLevel string
	BackgroundInfo string
	Preferences    Preferences

	Anchors Anchors
	Goal    Goal
	Queries QueryPlan

	Iteration    int
	BroadenLevel int
	Budgets      Budgets

	Candidates         []CandidateRecord
	ProcessedURLs      []string
	SelectedCandidates []Connection
}

// Source records where a connection was found.
type Source struct {
	URL         string `json:"url"`
	SearchQuery string `json:"search_query"`
}

// Connection is one user-facing result.
type Connection struct {
	Type                   CandidateType `json:"type"`
	Person                 *Person       `json:"person,omitempty"`
	Program                *Program      `json:"program,omitempty"`
	DirectMatches          []string      `json:"direct_matches"`
	GoalAlignment          string        `json:"goal_alignment"`
	SharedBackgroundPoints []string      `json:"shared_background_points"`
	AdditionalFactors      []string      `json:"additional_factors"`
	AIConnectionReason     string        `json:"ai_connection_reason"`
	AIOutreachMessage      *string       `json:"ai_outreach_message"`
	Source                 Source        `json:"source"`

	canonicalURL string
}

// Name returns the person or program name.
func (c Connection) Name() string {
	switch {
	case c.Person != nil:
		return c.Person.Name
	case c.Program != nil:
		return c.Program.Name
	}
	return ""
}

// URL returns the type-specific identity URL.
func (c Connection) URL() string {
	switch {
	case c.Person != nil:
		return c.Person.VerifiedProfileURL
	case c.Program != nil:
		return c.Program.WebsiteURL
	}
	return ""
}

// RunInput is the caller-facing request for one discovery run.
type RunInput struct {
	GoalTitle              string      `json:"goal_title"`
	RawBackgroundText      string      `json:"raw_background_text"`
	EducationLevel         string      `json:"education_level,omitempty"`
	Preferences            Preferences `json:"preferences"`
	MaxIterations          int         `json:"max_iterations,omitempty"`
	MaxQueriesPerIteration int         `json:"max_queries_per_iteration,omitempty"`
	MaxURLsPerQuery        int         `json:"max_urls_per_query,omitempty"`
}

// Normalize applies defaults and clamps budgets.
func (in RunInput) Normalize() RunInput {
	in.GoalTitle = strings.TrimSpace(in.GoalTitle)
	in.RawBackgroundText = strings.TrimSpace(in.RawBackgroundText)
	in.EducationLevel = strings.TrimSpace(in.EducationLevel)
	if !in.Preferences.Connections && !in.Preferences.Programs {
		in.Preferences = Preferences{Connections: true, Programs: true}
	}
	in.MaxIterations = clampBudget(in.MaxIterations, defaultMaxIterations, maxIterationsCap)
	in.MaxQueriesPerIteration = clampBudget(in.MaxQueriesPerIteration, defaultMaxQueriesPerIteration, maxQueriesPerIterationCap)
	in.MaxURLsPerQuery = clampBudget(in.MaxURLsPerQuery, defaultMaxURLsPerQuery, maxURLsPerQueryCap)
	return in
}

// ClampedBudgets names the requested budgets that exceed their caps and will
// be lowered by Normalize.
func (in RunInput) ClampedBudgets() []string {
	var out []string
	if in.MaxIterations > maxIterationsCap {
		out = append(out, fmt.Sprintf("max_iterations %d->%d", in.MaxIterations, maxIterationsCap))
	}
	if in.MaxQueriesPerIteration > maxQueriesPerIterationCap {
		out = append(out, fmt.Sprintf("max_queries_per_iteration %d->%d", in.MaxQueriesPerIteration, maxQueriesPerIterationCap))
	}
	if in.MaxURLsPerQuery > maxURLsPerQueryCap {
		out = append(out, fmt.Sprintf("max_urls_per_query %d->%d", in.MaxURLsPerQuery, maxURLsPerQueryCap))
	}
	return out
}

func clampBudget(v, def, hi int) int {
	if v <= 0 {
		return def
	}
	return min(v, hi)
}

// RunResult is the outcome of a discovery run.
type RunResult struct {
	RunID        string       `json:"run_id"`
	Connections  []Connection `json:"connections"`
	Iterations   int          `json:"iterations"`
	BroadenLevel int          `json:"broaden_level"`
	PoolSize     int          `json:"pool_size"`
}
