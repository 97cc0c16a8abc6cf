package app

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store/drivers/postgres"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store/drivers/sqlite"
)

// OpenStore connects the configured driver. Migrations are not applied.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		s, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return s, nil
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
		s, err := sqlite.NewStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return s, nil
	}
}

// OpenMigratedStore opens the store and brings its schema up to date.
func OpenMigratedStore(ctx context.Context, cfg Config) (store.Store, error) {
	s, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.ApplyMigrations(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return s, nil
}
