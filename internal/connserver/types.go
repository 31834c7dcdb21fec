// Package connserver exposes connection discovery as MCP tools.
package connserver

import "github.com/anatolykoptev/go_connect/internal/connections"

// FindConnectionsInput is the input for find_connections.
type FindConnectionsInput struct {
	GoalTitle              string `json:"goal_title" jsonschema:"Career goal, e.g. 'Backend engineer at a fintech startup'"`
	Background             string `json:"background" jsonschema:"Free-text background: resume text, schools, employers, clubs, projects"`
	EducationLevel         string `json:"education_level,omitempty" jsonschema:"Education level, e.g. high school, undergraduate, graduate"`
	WantConnections        bool   `json:"want_connections,omitempty" jsonschema:"Return people. If neither want_connections nor want_programs is set, both are returned"`
	WantPrograms           bool   `json:"want_programs,omitempty" jsonschema:"Return programs (fellowships, internships, mentorships)"`
	MaxIterations          int    `json:"max_iterations,omitempty" jsonschema:"Search passes before giving up (default 3, max 6)"`
	MaxQueriesPerIteration int    `json:"max_queries_per_iteration,omitempty" jsonschema:"Search queries per pass (default 6, max 12)"`
	MaxURLsPerQuery        int    `json:"max_urls_per_query,omitempty" jsonschema:"Results read per query (default 5, max 10)"`
}

func (in FindConnectionsInput) runInput() connections.RunInput {
	return connections.RunInput{
		GoalTitle:         in.GoalTitle,
		RawBackgroundText: in.Background,
		EducationLevel:    in.EducationLevel,
		Preferences: connections.Preferences{
			Connections: in.WantConnections,
			Programs:    in.WantPrograms,
		},
		MaxIterations:          in.MaxIterations,
		MaxQueriesPerIteration: in.MaxQueriesPerIteration,
		MaxURLsPerQuery:        in.MaxURLsPerQuery,
	}
}

// FindConnectionsOutput is the output of find_connections.
// Suggestion is set instead of connections when nothing eligible was found.
type FindConnectionsOutput struct {
	RunID        string                   `json:"run_id,omitempty"`
	Connections  []connections.Connection `json:"connections"`
	Iterations   int                      `json:"iterations"`
	BroadenLevel int                      `json:"broaden_level"`
	PoolSize     int                      `json:"pool_size"`
	Suggestion   string                   `json:"suggestion,omitempty"`
	Cached       bool                     `json:"cached,omitempty"`
}

// ConnectionRunsInput is the input for connection_runs.
type ConnectionRunsInput struct {
	RunID string `json:"run_id,omitempty" jsonschema:"Fetch a single run by ID"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max runs to list (default 20, max 100)"`
}

// RunSummary is one stored run.
type RunSummary struct {
	RunID           string                   `json:"run_id"`
	GoalTitle       string                   `json:"goal_title"`
	Iterations      int                      `json:"iterations"`
	BroadenLevel    int                      `json:"broaden_level"`
	ConnectionCount int                      `json:"connection_count"`
	Connections     []connections.Connection `json:"connections,omitempty"`
	ErrorKind       string                   `json:"error_kind,omitempty"`
	ErrorMessage    string                   `json:"error_message,omitempty"`
	CreatedAt       string                   `json:"created_at"`
}

// ConnectionRunsOutput is the output of connection_runs.
type ConnectionRunsOutput struct {
	Runs  []RunSummary `json:"runs"`
	Total int          `json:"total"`
}
