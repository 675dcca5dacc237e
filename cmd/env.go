package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/biotrust-cli/internal/fda"
	"github.com/sells-group/biotrust-cli/internal/promise"
)

// Env bundles the stores and services commands operate on.
type Env struct {
	Promises promise.Store
	FDA      fda.Store
	Tracker  *promise.Tracker
	Analyzer *fda.Analyzer
}

// Close releases both stores.
func (e *Env) Close() {
	if err := e.Promises.Close(); err != nil {
		zap.L().Warn("close promise store", zap.Error(err))
	}
	if err := e.FDA.Close(); err != nil {
		zap.L().Warn("close fda store", zap.Error(err))
	}
}

// initEnv opens the configured store backend and runs migrations. Both
// domains share one database; the sqlite backends share one file.
func initEnv(ctx context.Context) (*Env, error) {
	if err := cfg.Validate("cli"); err != nil {
		return nil, err
	}

	var (
		promises promise.Store
		fdaStore fda.Store
		err      error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		if promises, err = promise.NewSQLite(cfg.Store.SQLitePath); err != nil {
			return nil, err
		}
		if fdaStore, err = fda.NewSQLite(cfg.Store.SQLitePath); err != nil {
			return nil, err
		}
	case "postgres":
		if promises, err = promise.NewPostgres(ctx, cfg.Store.DatabaseURL, nil); err != nil {
			return nil, err
		}
		if fdaStore, err = fda.NewPostgres(ctx, cfg.Store.DatabaseURL); err != nil {
			return nil, err
		}
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}

	if err := promises.Migrate(ctx); err != nil {
		return nil, err
	}
	if err := fdaStore.Migrate(ctx); err != nil {
		return nil, err
	}

	return &Env{
		Promises: promises,
		FDA:      fdaStore,
		Tracker:  promise.NewTracker(promises),
		Analyzer: fda.NewAnalyzer(fdaStore),
	}, nil
}
