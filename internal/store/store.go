// Package store persists completed connection-discovery runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by GetRun for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Error kinds recorded on failed runs.
const (
	ErrorKindCoverage = "insufficient_coverage"
	ErrorKindSchema   = "schema_validation"
	ErrorKindOther    = "error"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// RunRecord is one persisted run.
type RunRecord struct {
	ID              string          `json:"id"`
	GoalTitle       string          `json:"goal_title"`
	EducationLevel  string          `json:"education_level,omitempty"`
	WantConnections bool            `json:"want_connections"`
	WantPrograms    bool            `json:"want_programs"`
	Iterations      int             `json:"iterations"`
	BroadenLevel    int             `json:"broaden_level"`
	PoolSize        int             `json:"pool_size"`
	ConnectionCount int             `json:"connection_count"`
	Connections     json.RawMessage `json:"connections,omitempty"`
	ErrorKind       string          `json:"error_kind,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RunStore saves and lists runs. Implementations are safe for concurrent use.
type RunStore interface {
	SaveRun(ctx context.Context, rec RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	GetRun(ctx context.Context, id string) (RunRecord, error)
	Close() error
}

// prepare fills the fields every backend needs before insert.
func prepare(rec RunRecord) (RunRecord, error) {
	if rec.ID == "" {
		return rec, errors.New("save run: id is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if len(rec.Connections) == 0 {
		rec.Connections = json.RawMessage("[]")
	}
	return rec, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}

// Open picks PostgreSQL when databaseURL is set and SQLite otherwise.
func Open(ctx context.Context, databaseURL, sqlitePath string) (RunStore, error) {
	if databaseURL != "" {
		s, err := ConnectPG(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := OpenSQLite(sqlitePath)
	if err != nil {
		return nil, err
	}
	return s, nil
}
