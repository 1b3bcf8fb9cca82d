// Package store persists run history: one row per run, per processed
// prospect and per delivery outcome.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/model"
)

// Default values for listing and the SQLite file.
const (
	DefaultListLimit = 20
	DefaultSQLite    = "outreach.db"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for run history.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, source string, dryRun bool) (*model.Run, error)
	FinishRun(ctx context.Context, runID string, totals model.RunTotals) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Per-prospect records
	SaveResult(ctx context.Context, runID string, result *model.ProcessingResult) error
	SaveDelivery(ctx context.Context, runID string, outcome model.DeliveryOutcome) error
	ListResults(ctx context.Context, runID string) ([]model.StoredResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store selected by cfg.Driver, migrated and ready. The
// "none" driver yields a nil Store and no error.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(cfg.Driver) {
	case "", "none":
		return nil, nil
	case "sqlite":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = DefaultSQLite
		}
		s, err = NewSQLite(dsn)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, eris.New("store: postgres requires store.database_url")
		}
		s, err = NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	zap.L().Info("store: ready", zap.String("driver", cfg.Driver))
	return s, nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
