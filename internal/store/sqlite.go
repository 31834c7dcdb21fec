package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Fixed-width UTC timestamps so created_at sorts as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteColumns = `id, goal_title, education_level, want_connections, want_programs,
	iterations, broaden_level, pool_size, connection_count, connections,
	error_kind, error_message, created_at`

// SQLiteStore keeps runs in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultSQLitePath is used when SQLITE_PATH is empty.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_connect", "runs.db")
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sqlite store: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite store: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS connection_runs (
		id               TEXT PRIMARY KEY,
		goal_title       TEXT NOT NULL,
		education_level  TEXT NOT NULL DEFAULT '',
		want_connections INTEGER NOT NULL,
		want_programs    INTEGER NOT NULL,
		iterations       INTEGER NOT NULL DEFAULT 0,
		broaden_level    INTEGER NOT NULL DEFAULT 0,
		pool_size        INTEGER NOT NULL DEFAULT 0,
		connection_count INTEGER NOT NULL DEFAULT 0,
		connections      TEXT NOT NULL DEFAULT '[]',
		error_kind       TEXT NOT NULL DEFAULT '',
		error_message    TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL
	)`)
	return err
}

// SaveRun inserts rec.
func (s *SQLiteStore) SaveRun(ctx context.Context, rec RunRecord) error {
	rec, err := prepare(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO connection_runs (`+sqliteColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.GoalTitle, rec.EducationLevel, rec.WantConnections, rec.WantPrograms,
		rec.Iterations, rec.BroadenLevel, rec.PoolSize, rec.ConnectionCount, string(rec.Connections),
		rec.ErrorKind, rec.ErrorMessage, rec.CreatedAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite store: insert: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM connection_runs ORDER BY created_at DESC LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: list: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite store: list: %w", err)
	}
	return out, nil
}

// GetRun loads one run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM connection_runs WHERE id = ?`, id)
	rec, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrNotFound
	}
	return rec, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (RunRecord, error) {
	var (
		rec     RunRecord
		conns   string
		created string
	)
	err := row.Scan(
		&rec.ID, &rec.GoalTitle, &rec.EducationLevel, &rec.WantConnections, &rec.WantPrograms,
		&rec.Iterations, &rec.BroadenLevel, &rec.PoolSize, &rec.ConnectionCount, &conns,
		&rec.ErrorKind, &rec.ErrorMessage, &created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("sqlite store: scan: %w", err)
	}
	rec.Connections = json.RawMessage(conns)
	if rec.CreatedAt, err = time.Parse(sqliteTimeLayout, created); err != nil {
		return rec, fmt.Errorf("sqlite store: parse created_at %q: %w", created, err)
	}
	return rec, nil
}
