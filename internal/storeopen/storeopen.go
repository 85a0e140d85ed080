// Package storeopen builds the configured store backend. Both binaries open
// exactly one store at startup and share it for the life of the process.
package storeopen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vflfantasy/vfl-data/internal/config"
	"github.com/vflfantasy/vfl-data/internal/db"
	"github.com/vflfantasy/vfl-data/internal/store"
	"github.com/vflfantasy/vfl-data/internal/store/memory"
	"github.com/vflfantasy/vfl-data/internal/store/mongostore"
	"github.com/vflfantasy/vfl-data/internal/store/postgres"
)

// Open connects to cfg.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		logger.Info("Connecting to Postgres...")
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info("Postgres connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
		return postgres.New(pool), nil

	case config.BackendMongo:
		logger.Info("Connecting to MongoDB...", "database", cfg.MongoDatabase)
		st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		logger.Info("MongoDB connected", "database", cfg.MongoDatabase)
		return st, nil

	case config.BackendMemory:
		logger.Warn("Using in-memory store; data is lost on exit")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
