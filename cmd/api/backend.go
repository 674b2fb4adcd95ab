package main

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-cart/api/controllers"
	"github.com/angelmondragon/storefront-cart/internal/cart"
	"github.com/angelmondragon/storefront-cart/internal/storage"
	"github.com/angelmondragon/storefront-cart/pkg/config"
	"github.com/angelmondragon/storefront-cart/pkg/db"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
	"github.com/angelmondragon/storefront-cart/pkg/redis"
)

// backend is the key-value store carts persist to plus its lifecycle hooks.
type backend struct {
	kv     cart.KV
	pinger controllers.Pinger
	close  func() error
}

func openBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*backend, error) {
	switch driver := cfg.Persistence.NormalizedDriver(); driver {
	case config.DriverMemory:
		mem := storage.NewMemory()
		return &backend{kv: mem, pinger: mem, close: func() error { return nil }}, nil

	case config.DriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, err
		}
		kv := storage.NewRedis(client, cfg.Redis.TTL)
		return &backend{kv: kv, pinger: kv, close: client.Close}, nil

	case config.DriverSQLite, config.DriverPostgres:
		client, err := db.New(ctx, driver, cfg.DB, logg)
		if err != nil {
			return nil, err
		}
		kv := storage.NewSQL(client)
		if cfg.DB.AutoMigrate {
			if err := kv.Migrate(ctx); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("migrate cart storage: %w", err)
			}
		}
		return &backend{kv: kv, pinger: client, close: client.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported persistence driver %q", driver)
	}
}
