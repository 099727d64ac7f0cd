package storage

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"natively/internal/app/host/config"
	"natively/internal/domain/kv"
	"natively/internal/infrastructure/migration"
	"natively/internal/infrastructure/storage/bolt"
	"natively/internal/infrastructure/storage/memory"
	"natively/internal/infrastructure/storage/postgres"
	"natively/internal/infrastructure/storage/sealed"
	"natively/internal/infrastructure/storage/sqlite"
)

// Open выбирает драйвер по конфигурации. При заданном секрете чувствительные ключи шифруются.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (kv.Driver, error) {
	var (
		driver kv.Driver
		err    error
	)

	switch cfg.StorageDriver {
	case config.DriverSQLite:
		driver, err = sqlite.New(cfg.SQLitePath(), migration.DefaultEngine)
	case config.DriverBolt:
		driver, err = bolt.Open(cfg.BoltPath())
	case config.DriverPostgres:
		driver, err = postgres.New(ctx, cfg.DatabaseURI, migration.DefaultEngine, log)
	case config.DriverMemory:
		driver = memory.New()
	default:
		return nil, fmt.Errorf("неизвестный драйвер хранилища: %s", cfg.StorageDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия хранилища %s: %w", cfg.StorageDriver, err)
	}

	if cfg.SecureStoreSecret != "" {
		driver = sealed.New(driver, cfg.SecureStoreSecret, kv.SensitiveKeys())
	}

	log.Debug("Хранилище открыто", "driver", cfg.StorageDriver, "sealed", cfg.SecureStoreSecret != "")
	return driver, nil
}
