package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/market-pulse/internal/model"
)

const sqliteMigration = `
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
	created_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_slug ON runs(slug);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

// SQLiteStore is the default single-file run store.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens (creating if needed) a SQLite database at the given path.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "store: apply %s", pragma)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate applies the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "store: migrate")
	}
	return nil
}

// CreateRun inserts a new run in running status.
func (s *SQLiteStore) CreateRun(ctx context.Context, slug, query string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		Slug:      slug,
		Query:     query,
		Status:    model.RunStatusRunning,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, slug, query, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Slug, run.Query, run.Status, run.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "store: create run")
	}
	return run, nil
}

// CompleteRun records the outcome of a finished run.
func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, score int, band string, quality int, snapshot []byte) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, final_score = ?, band = ?, quality = ?, snapshot = ?, completed_at = ? WHERE id = ?`,
		model.RunStatusComplete, score, band, quality, string(snapshot), time.Now().UTC(), runID)
	if err != nil {
		return eris.Wrap(err, "store: complete run")
	}
	return checkRowsAffected(res, "complete run")
}

// FailRun marks a run failed with its error message.
func (s *SQLiteStore) FailRun(ctx context.Context, runID, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		model.RunStatusFailed, errMsg, time.Now().UTC(), runID)
	if err != nil {
		return eris.Wrap(err, "store: fail run")
	}
	return checkRowsAffected(res, "fail run")
}

// GetRun returns the most recent run for a slug.
func (s *SQLiteStore) GetRun(ctx context.Context, slug string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, slug, query, status, final_score, band, quality, error, snapshot, created_at, completed_at
		 FROM runs WHERE slug = ? ORDER BY created_at DESC LIMIT 1`, slug)

	run, err := scanRun(row)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, eris.Wrap(err, "store: get run")
	}
	return run, nil
}

// ListRuns returns runs matching the filter, most recent first. Snapshots are
// omitted from listings.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, slug, query, status, final_score, band, quality, error, '', created_at, completed_at FROM runs`
	var args []any
	var conds []string

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Slug != "" {
		conds = append(conds, "slug = ?")
		args = append(args, filter.Slug)
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
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return eris.Wrap(err, "store: close")
	}
	return nil
}

// scannable abstracts *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var run model.Run
	var snapshot string
	var completedAt sql.NullTime

	err := row.Scan(&run.ID, &run.Slug, &run.Query, &run.Status, &run.FinalScore,
		&run.Band, &run.Quality, &run.Error, &snapshot, &run.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if snapshot != "" {
		run.Snapshot = []byte(snapshot)
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

func checkRowsAffected(res sql.Result, action string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "store: %s rows affected", action)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}
