package connections

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/smallnest/langgraphgo/graph"

	"github.com/anatolykoptev/go_connect/internal/engine"
)

// Graph node names.
const (
	NodeAnchors     = "anchors"
	NodeGoal        = "goal"
	NodePlanQueries = "plan_queries"
	NodeRetrieve    = "retrieve"
	NodeBroaden     = "broaden"
	NodeBalance     = "balance"
	NodeFallback    = "fallback"
	NodeWriteup     = "writeup"
)

// slowRunThreshold logs runs that take longer than this.
const slowRunThreshold = 3 * time.Minute

// buildGraph wires the discovery state machine:
//
//	anchors → goal → plan_queries → retrieve ─(ShouldLoop)→ broaden → plan_queries
//	                                         └→ balance → fallback → writeup → END
//
// Nodes return a new state; ShouldLoop and Broaden hold the loop logic.
func (f *Finder) buildGraph() *graph.StateGraph[GraphState] {
	g := graph.NewStateGraph[GraphState]()

	g.AddNode(NodeAnchors, "Extract explicit anchors from the background", func(ctx context.Context, st GraphState) (GraphState, error) {
		anchors, err := f.ExtractAnchors(ctx, st.BackgroundInfo)
		if err != nil {
			return st, err
		}
		st.Anchors = anchors
		return st, nil
	})

	g.AddNode(NodeGoal, "Decompose the career goal", func(ctx context.Context, st GraphState) (GraphState, error) {
		goal, err := f.DecomposeGoal(ctx, st.GoalTitle, st.EducationLevel)
		if err != nil {
			return st, err
		}
		st.Goal = goal
		return st, nil
	})

	g.AddNode(NodePlanQueries, "Plan anchored search queries", func(ctx context.Context, st GraphState) (GraphState, error) {
		plan, err := f.PlanQueries(ctx, st.Anchors, st.Goal, st.BroadenLevel, st.Preferences, st.Budgets.MaxQueriesPerIteration)
		if err != nil {
			return st, err
		}
		st.Queries = plan
		return st, nil
	})

	g.AddNode(NodeRetrieve, "Search, fetch, parse and gate candidates", f.Retrieve)

	g.AddNode(NodeBroaden, "Relax anchor strictness and grow budgets", func(_ context.Context, st GraphState) (GraphState, error) {
		next := Broaden(st)
		slog.Info("broadening search",
			slog.Int("broaden_level", next.BroadenLevel),
			slog.Int("max_queries", next.Budgets.MaxQueriesPerIteration),
			slog.Int("max_urls", next.Budgets.MaxURLsPerQuery))
		return next, nil
	})

	g.AddNode(NodeBalance, "Select balanced connections", func(_ context.Context, st GraphState) (GraphState, error) {
		records, err := Balance(st.Candidates, st.Preferences)
		if err != nil {
			return st, err
		}
		selected := make([]Connection, 0, len(records))
		for _, r := range records {
			selected = append(selected, toConnection(r, st.Anchors))
		}
		st.SelectedCandidates = selected
		return st, nil
	})

	g.AddNode(NodeFallback, "Top up with non-direct-match candidates", func(_ context.Context, st GraphState) (GraphState, error) {
		st.SelectedCandidates = AssembleFallback(st.SelectedCandidates, st.Candidates, st.Anchors, st.Preferences)
		return st, nil
	})

	g.AddNode(NodeWriteup, "Write connection reasons and outreach", func(ctx context.Context, st GraphState) (GraphState, error) {
		st.SelectedCandidates = f.GenerateWriteups(ctx, st.GoalTitle, st.SelectedCandidates)
		return st, nil
	})

	g.SetEntryPoint(NodeAnchors)
	g.AddEdge(NodeAnchors, NodeGoal)
	g.AddEdge(NodeGoal, NodePlanQueries)
	g.AddEdge(NodePlanQueries, NodeRetrieve)
	g.AddConditionalEdge(NodeRetrieve, func(_ context.Context, st GraphState) string {
		return ShouldLoop(st)
	})
	g.AddEdge(NodeBroaden, NodePlanQueries)
	g.AddEdge(NodeBalance, NodeFallback)
	g.AddEdge(NodeFallback, NodeWriteup)
	g.AddEdge(NodeWriteup, graph.END)
	return g
}

// Run executes one discovery run. Once the input is accepted a failed run
// still returns a result carrying its RunID and no connections.
func (f *Finder) Run(ctx context.Context, in RunInput) (*RunResult, error) {
	if clamped := in.ClampedBudgets(); len(clamped) > 0 {
		slog.Warn("run: budgets lowered to caps", slog.Any("budgets", clamped))
	}
	in = in.Normalize()
	if in.GoalTitle == "" {
		return nil, errors.New("goal title is required")
	}
	if in.RawBackgroundText == "" {
		return nil, errors.New("background text is required")
	}

	runnable, err := f.buildGraph().Compile()
	if err != nil {
		return nil, err
	}

	initial := GraphState{
		GoalTitle:      in.GoalTitle,
		EducationLevel: in.EducationLevel,
		BackgroundInfo: in.RawBackgroundText,
		Preferences:    in.Preferences,
		Budgets: Budgets{
			MaxIterations:          in.MaxIterations,
			MaxQueriesPerIteration: in.MaxQueriesPerIteration,
			MaxURLsPerQuery:        in.MaxURLsPerQuery,
		},
	}

	runID := uuid.NewString()
	engine.IncrRuns()
	slog.Info("run started", slog.String("run_id", runID), slog.String("goal", in.GoalTitle),
		slog.Bool("connections", in.Preferences.Connections), slog.Bool("programs", in.Preferences.Programs))

	var final GraphState
	err = engine.TrackOperation(ctx, "connections.run", slowRunThreshold, func(ctx context.Context) error {
		var invokeErr error
		final, invokeErr = runnable.Invoke(ctx, initial)
		return invokeErr
	})
	if err != nil {
		engine.IncrRunErrors()
		slog.Warn("run failed", slog.String("run_id", runID), slog.Any("error", err))
		return &RunResult{RunID: runID, Connections: []Connection{}}, err
	}

	conns := final.SelectedCandidates
	if conns == nil {
		conns = []Connection{}
	}
	slog.Info("run complete", slog.String("run_id", runID),
		slog.Int("connections", len(conns)),
		slog.Int("iterations", final.Iteration),
		slog.Int("broaden_level", final.BroadenLevel),
		slog.Int("pool", len(final.Candidates)))

	return &RunResult{
		RunID:        runID,
		Connections:  conns,
		Iterations:   final.Iteration,
		BroadenLevel: final.BroadenLevel,
		PoolSize:     len(final.Candidates),
	}, nil
}
