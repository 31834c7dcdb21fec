package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var schemaFS embed.FS

const pgColumns = `id, goal_title, education_level, want_connections, want_programs,
	iterations, broaden_level, pool_size, connection_count, connections,
	error_kind, error_message, created_at`

// DBPool is the subset of *pgxpool.Pool the store uses.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PGStore keeps runs in PostgreSQL.
type PGStore struct {
	pool DBPool
}

// NewPGStore wraps an existing pool. Call Migrate before first use.
func NewPGStore(pool DBPool) *PGStore {
	return &PGStore{pool: pool}
}

// ConnectPG creates a pgx pool, pings it and runs schema migrations.
func ConnectPG(ctx context.Context, databaseURL string) (*PGStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := NewPGStore(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("run store postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

// Migrate applies the embedded schema files in name order.
func (s *PGStore) Migrate(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// SaveRun inserts rec.
func (s *PGStore) SaveRun(ctx context.Context, rec RunRecord) error {
	rec, err := prepare(rec)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO connection_runs (`+pgColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.GoalTitle, rec.EducationLevel, rec.WantConnections, rec.WantPrograms,
		rec.Iterations, rec.BroadenLevel, rec.PoolSize, rec.ConnectionCount, []byte(rec.Connections),
		rec.ErrorKind, rec.ErrorMessage, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres store: insert: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *PGStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgColumns+` FROM connection_runs ORDER BY created_at DESC LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanPG(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: list: %w", err)
	}
	return out, nil
}

// GetRun loads one run by ID.
func (s *PGStore) GetRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgColumns+` FROM connection_runs WHERE id = $1`, id)
	rec, err := scanPG(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return RunRecord{}, ErrNotFound
	}
	return rec, err
}

// Close releases the pool.
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPG(row pgx.Row) (RunRecord, error) {
	var (
		rec   RunRecord
		conns []byte
	)
	err := row.Scan(
		&rec.ID, &rec.GoalTitle, &rec.EducationLevel, &rec.WantConnections, &rec.WantPrograms,
		&rec.Iterations, &rec.BroadenLevel, &rec.PoolSize, &rec.ConnectionCount, &conns,
		&rec.ErrorKind, &rec.ErrorMessage, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("postgres store: scan: %w", err)
	}
	rec.Connections = json.RawMessage(conns)
	return rec, nil
}
