package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"asthma-care-server/internal/config"
	"asthma-care-server/internal/store"
)

// backends are the stores behind the staff pages and the public link.
type backends struct {
	store  store.Store
	public store.Reader
	close  func() error
}

// openBackends opens the configured system of record. With Google Sheets the
// public link reads the credential-free CSV export; the other drivers serve
// both views from the same store.
func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	noop := func() error { return nil }

	switch cfg.Store.Driver {
	case config.DriverSheets:
		s, err := store.NewSheetsStore(ctx, cfg.Store.SheetID, logger, store.ServiceAccount(cfg.Store.CredentialsFile)...)
		if err != nil {
			return nil, err
		}
		public := store.NewCSVExportReader(cfg.Store.CSVBaseURL, map[store.Table]string{
			store.Patients: cfg.Store.PatientsGID,
			store.Visits:   cfg.Store.VisitsGID,
		}, logger)
		return &backends{store: s, public: public, close: noop}, nil

	case config.DriverXLSX:
		s := store.NewXLSXStore(cfg.Store.XLSXPath)
		return &backends{store: s, public: s, close: noop}, nil

	case config.DriverMySQL:
		db, err := store.OpenMySQL(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		s := store.NewSQLStore(db)
		return &backends{store: s, public: s, close: sqlDB.Close}, nil
	}
	return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.Store.Driver)
}

// openCache returns the key-value store behind the table caches.
func openCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.KVStore, func() error, error) {
	if cfg.Cache.Backend != "redis" {
		return store.NewMemoryKVStore(), func() error { return nil }, nil
	}
	client := store.NewRedisClient(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Cache.RedisAddr, err)
	}
	logger.Info("Table cache on redis", zap.String("addr", cfg.Cache.RedisAddr))
	return store.NewRedisKVStore(client), client.Close, nil
}
