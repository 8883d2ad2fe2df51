package main

import (
	"context"
	"fmt"

	"github.com/greenretrofit/retrofit-backend/internal/adapter/repository/memory"
	"github.com/greenretrofit/retrofit-backend/internal/adapter/repository/postgres"
	"github.com/greenretrofit/retrofit-backend/internal/adapter/repository/redis"
	"github.com/greenretrofit/retrofit-backend/internal/adapter/repository/sqlite"
	"github.com/greenretrofit/retrofit-backend/internal/config"
	"github.com/greenretrofit/retrofit-backend/internal/domain"
)

// openStore builds the snapshot store selected by STORE_DRIVER and its close function
func openStore(ctx context.Context, cfg *config.Config) (domain.SnapshotStore, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.NewSnapshotStore(), func() error { return nil }, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, cfg.SnapshotKey)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.DriverRedis:
		store, err := redis.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SnapshotKey)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewSnapshotRepository(db, cfg.SnapshotKey)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
