// Package store persists analysis runs. SQLite is the default backend;
// Postgres is available for shared deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/market-pulse/internal/config"
	"github.com/sells-group/market-pulse/internal/model"
)

// RunFilter narrows ListRuns output.
type RunFilter struct {
	Status model.RunStatus
	Slug   string
	Limit  int
	Offset int
}

// Store defines run persistence operations.
type Store interface {
	Migrate(ctx context.Context) error
	CreateRun(ctx context.Context, slug, query string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, score int, band string, quality int, snapshot []byte) error
	FailRun(ctx context.Context, runID, errMsg string) error
	// GetRun returns the most recent run for a slug.
	GetRun(ctx context.Context, slug string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	Close() error
}

// ErrRunNotFound is returned when a slug has no persisted run.
var ErrRunNotFound = eris.New("run not found")

// Open builds the configured store backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
