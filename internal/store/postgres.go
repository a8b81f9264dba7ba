package store

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/market-pulse/internal/model"
)

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	slug         TEXT NOT NULL,
	query        TEXT NOT NULL,
	status       TEXT NOT NULL,
	final_score  INTEGER NOT NULL DEFAULT 0,
	band         TEXT NOT NULL DEFAULT '',
	quality      INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	snapshot     TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_runs_slug ON runs(slug);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

// Pool is the subset of pgxpool.Pool the store uses. Narrow so tests can
// substitute a mock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore is the shared-deployment run store.
type PostgresStore struct {
	pool Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres connects to Postgres at the given URL.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "store: connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping postgres")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "store: migrate")
	}
	return nil
}

// CreateRun inserts a new run in running status.
func (s *PostgresStore) CreateRun(ctx context.Context, slug, query string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		Slug:      slug,
		Query:     query,
		Status:    model.RunStatusRunning,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, slug, query, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.Slug, run.Query, run.Status, run.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "store: create run")
	}
	return run, nil
}

// CompleteRun records the outcome of a finished run.
func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, score int, band string, quality int, snapshot []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, final_score = $2, band = $3, quality = $4, snapshot = $5, completed_at = $6 WHERE id = $7`,
		model.RunStatusComplete, score, band, quality, string(snapshot), time.Now().UTC(), runID)
	if err != nil {
		return eris.Wrap(err, "store: complete run")
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

// FailRun marks a run failed with its error message.
func (s *PostgresStore) FailRun(ctx context.Context, runID, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, completed_at = $3 WHERE id = $4`,
		model.RunStatusFailed, errMsg, time.Now().UTC(), runID)
	if err != nil {
		return eris.Wrap(err, "store: fail run")
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun returns the most recent run for a slug.
func (s *PostgresStore) GetRun(ctx context.Context, slug string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, slug, query, status, final_score, band, quality, error, snapshot, created_at, completed_at
		 FROM runs WHERE slug = $1 ORDER BY created_at DESC LIMIT 1`, slug)

	run, err := scanRun(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, eris.Wrap(err, "store: get run")
	}
	return run, nil
}

// ListRuns returns runs matching the filter, most recent first. Snapshots are
// omitted from listings.
func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, slug, query, status, final_score, band, quality, error, '', created_at, completed_at FROM runs`
	var args []any
	var conds []string

	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Slug != "" {
		args = append(args, filter.Slug)
		conds = append(conds, "slug = $"+strconv.Itoa(len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
		if filter.Offset > 0 {
			args = append(args, filter.Offset)
			query += " OFFSET $" + strconv.Itoa(len(args))
		}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate runs")
	}
	return runs, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
