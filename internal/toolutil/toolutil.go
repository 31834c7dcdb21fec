// Package toolutil provides helpers shared by the MCP tools and the CLI:
// cached runs, run-history records and error-to-suggestion translation.
package toolutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/anatolykoptev/go_connect/internal/connections"
	"github.com/anatolykoptev/go_connect/internal/engine"
	"github.com/anatolykoptev/go_connect/internal/store"
)

// Runner executes one discovery run.
type Runner interface {
	Run(ctx context.Context, in connections.RunInput) (*connections.RunResult, error)
}

// RunKey is the cache key for a normalized run input.
func RunKey(in connections.RunInput) string {
	in = in.Normalize()
	return engine.CacheKey("find_connections",
		engine.NormalizeKey(in.GoalTitle),
		engine.NormalizeKey(in.RawBackgroundText),
		engine.NormalizeKey(in.EducationLevel),
		strconv.FormatBool(in.Preferences.Connections),
		strconv.FormatBool(in.Preferences.Programs),
		strconv.Itoa(in.MaxIterations),
		strconv.Itoa(in.MaxQueriesPerIteration),
		strconv.Itoa(in.MaxURLsPerQuery),
	)
}

// CachedRun returns a cached result for in when one exists, otherwise runs and
// caches successful results. The bool reports a cache hit.
func CachedRun(ctx context.Context, r Runner, in connections.RunInput) (*connections.RunResult, bool, error) {
	key := RunKey(in)
	if res, ok := engine.CacheLoadJSON[connections.RunResult](ctx, key); ok {
		slog.Debug("run cache hit", slog.String("run_id", res.RunID))
		return &res, true, nil
	}
	res, err := r.Run(ctx, in)
	if err != nil {
		return res, false, err
	}
	engine.CacheStoreJSON(ctx, key, *res)
	return res, false, nil
}

// Suggestion turns an insufficient-coverage error into advice for the user.
// ok is false for every other error.
func Suggestion(err error) (text string, ok bool) {
	var cov *connections.InsufficientCoverageError
	if !errors.As(err, &cov) {
		return "", false
	}
	kind := "people"
	if cov.Type == connections.TypeProgram {
		kind = "programs"
	}
	return fmt.Sprintf("No eligible %s were found with evidence of a shared background. "+
		"Try a broader goal, add more detail to your background (schools, employers, clubs), "+
		"or run again later.", kind), true
}

// ErrorKind classifies a run error for the run history.
func ErrorKind(err error) string {
	var cov *connections.InsufficientCoverageError
	var schemaErr *connections.SchemaValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cov):
		return store.ErrorKindCoverage
	case errors.As(err, &schemaErr):
		return store.ErrorKindSchema
	}
	return store.ErrorKindOther
}

// Record builds the run-history entry for one finished run.
func Record(in connections.RunInput, res *connections.RunResult, runErr error) store.RunRecord {
	in = in.Normalize()
	if res == nil {
		res = &connections.RunResult{}
	}
	rec := store.RunRecord{
		ID:              res.RunID,
		GoalTitle:       in.GoalTitle,
		EducationLevel:  in.EducationLevel,
		WantConnections: in.Preferences.Connections,
		WantPrograms:    in.Preferences.Programs,
		Iterations:      res.Iterations,
		BroadenLevel:    res.BroadenLevel,
		PoolSize:        res.PoolSize,
		ConnectionCount: len(res.Connections),
		ErrorKind:       ErrorKind(runErr),
		CreatedAt:       time.Now(),
	}
	if runErr != nil {
		rec.ErrorMessage = runErr.Error()
	}
	if len(res.Connections) > 0 {
		if data, err := json.Marshal(res.Connections); err == nil {
			rec.Connections = data
		}
	}
	return rec
}

// SaveRun records a finished run. Runs without an ID (rejected input) and a
// nil store are ignored; storage failures are logged, never returned.
func SaveRun(ctx context.Context, s store.RunStore, in connections.RunInput, res *connections.RunResult, runErr error) {
	if s == nil || res == nil || res.RunID == "" {
		return
	}
	if err := s.SaveRun(ctx, Record(in, res, runErr)); err != nil {
		slog.Warn("run history save failed", slog.String("run_id", res.RunID), slog.Any("error", err))
	}
}
