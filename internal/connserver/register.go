package connserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_connect/internal/connections"
	"github.com/anatolykoptev/go_connect/internal/store"
	"github.com/anatolykoptev/go_connect/internal/toolutil"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 2

// Tools serves the connection-discovery MCP tools.
type Tools struct {
	runner toolutil.Runner
	runs   store.RunStore // nil = history disabled
}

// NewTools builds the tool set. runs may be nil.
func NewTools(runner toolutil.Runner, runs store.RunStore) *Tools {
	return &Tools{runner: runner, runs: runs}
}

// RegisterTools registers find_connections and connection_runs on the given MCP server.
func RegisterTools(server *mcp.Server, t *Tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_connections",
		Description: "Find up to 5 people or programs that share a verifiable background with the user (same employer, school, club, or project) and can help with a career goal. Searches the web, extracts candidates from pages, keeps only candidates with evidence of a shared background, and drafts a connection reason plus an outreach message for each person. Slow: expect 30s to 3 minutes.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.findConnections)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "connection_runs",
		Description: "List recent find_connections runs (newest first) or fetch one run by run_id, including the connections it returned.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.connectionRuns)
}

func (t *Tools) findConnections(ctx context.Context, _ *mcp.CallToolRequest, input FindConnectionsInput) (*mcp.CallToolResult, FindConnectionsOutput, error) {
	if strings.TrimSpace(input.GoalTitle) == "" {
		return nil, FindConnectionsOutput{}, errors.New("goal_title is required")
	}
	if strings.TrimSpace(input.Background) == "" {
		return nil, FindConnectionsOutput{}, errors.New("background is required")
	}

	in := input.runInput()
	res, cached, err := toolutil.CachedRun(ctx, t.runner, in)
	if !cached {
		toolutil.SaveRun(ctx, t.runs, in, res, err)
	}
	if err != nil {
		text, ok := toolutil.Suggestion(err)
		if !ok {
			return nil, FindConnectionsOutput{}, err
		}
		slog.Info("find_connections: insufficient coverage", slog.Any("error", err))
		out := FindConnectionsOutput{Connections: []connections.Connection{}, Suggestion: text}
		if res != nil {
			out.RunID = res.RunID
		}
		return nil, out, nil
	}
	return nil, outputFrom(res, cached), nil
}

func (t *Tools) connectionRuns(ctx context.Context, _ *mcp.CallToolRequest, input ConnectionRunsInput) (*mcp.CallToolResult, ConnectionRunsOutput, error) {
	if t.runs == nil {
		return nil, ConnectionRunsOutput{}, errors.New("run history is not configured")
	}

	if id := strings.TrimSpace(input.RunID); id != "" {
		rec, err := t.runs.GetRun(ctx, id)
		if err != nil {
			return nil, ConnectionRunsOutput{}, err
		}
		return nil, ConnectionRunsOutput{Runs: []RunSummary{summaryFrom(rec)}, Total: 1}, nil
	}

	recs, err := t.runs.ListRuns(ctx, input.Limit)
	if err != nil {
		return nil, ConnectionRunsOutput{}, err
	}
	out := ConnectionRunsOutput{Runs: make([]RunSummary, 0, len(recs)), Total: len(recs)}
	for _, rec := range recs {
		out.Runs = append(out.Runs, summaryFrom(rec))
	}
	return nil, out, nil
}

func outputFrom(res *connections.RunResult, cached bool) FindConnectionsOutput {
	conns := res.Connections
	if conns == nil {
		conns = []connections.Connection{}
	}
	return FindConnectionsOutput{
		RunID:        res.RunID,
		Connections:  conns,
		Iterations:   res.Iterations,
		BroadenLevel: res.BroadenLevel,
		PoolSize:     res.PoolSize,
		Cached:       cached,
	}
}

func summaryFrom(rec store.RunRecord) RunSummary {
	s := RunSummary{
		RunID:           rec.ID,
		GoalTitle:       rec.GoalTitle,
		Iterations:      rec.Iterations,
		BroadenLevel:    rec.BroadenLevel,
		ConnectionCount: rec.ConnectionCount,
		ErrorKind:       rec.ErrorKind,
		ErrorMessage:    rec.ErrorMessage,
		CreatedAt:       rec.CreatedAt.Format(time.RFC3339),
	}
	if len(rec.Connections) > 0 {
		if err := json.Unmarshal(rec.Connections, &s.Connections); err != nil {
			slog.Warn("connection_runs: stored connections unreadable", slog.String("run_id", rec.ID), slog.Any("error", err))
		}
	}
	return s
}
