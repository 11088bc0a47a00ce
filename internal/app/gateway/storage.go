package gateway

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	"github.com/nastyazhadan/order-gateway/internal/infrastructure/memory"
	"github.com/nastyazhadan/order-gateway/internal/infrastructure/pebble"
	"github.com/nastyazhadan/order-gateway/internal/infrastructure/postgres"
	redisCache "github.com/nastyazhadan/order-gateway/internal/infrastructure/redis"
	"github.com/nastyazhadan/order-gateway/internal/migrations"
	"github.com/nastyazhadan/order-gateway/internal/services/order"
	"github.com/nastyazhadan/order-gateway/shared/config"
	"github.com/nastyazhadan/order-gateway/shared/infra/db"
	"github.com/nastyazhadan/order-gateway/shared/infra/health"
	"github.com/nastyazhadan/order-gateway/shared/infra/redis"
)

type orderStore interface {
	SaveOrder(ctx context.Context, order models.Order) error
	ExistsByClOrdID(ctx context.Context, clOrdID string) (bool, error)
	MaxOrderID(ctx context.Context) (uint64, error)
	SaveTrades(ctx context.Context, trades []models.Trade) error
	MaxTradeID(ctx context.Context) (uint64, error)
}

type storage struct {
	store      orderStore
	repository order.Repository
	checks     map[string]health.Check
}

func provideStorage(
	ctx context.Context,
	lifeCycle fx.Lifecycle,
	cfg config.Config,
) (*storage, error) {
	s, err := openStore(ctx, lifeCycle, cfg)
	if err != nil {
		return nil, err
	}

	s.repository = s.store
	if cfg.Redis.Enabled {
		s.repository = withClOrdIDCache(lifeCycle, cfg, s)
	}

	return s, nil
}

func openStore(
	ctx context.Context,
	lifeCycle fx.Lifecycle,
	cfg config.Config,
) (*storage, error) {
	checks := make(map[string]health.Check)

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := db.SetupDB(ctx, cfg.Storage.DBURI, cfg.Storage.DBMaxConns, migrations.FS)
		if err != nil {
			return nil, fmt.Errorf("db.SetupDB: %w", err)
		}
		checks["postgres"] = pool.Ping

		lifeCycle.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				pool.Close()
				return nil
			},
		})

		return &storage{store: postgres.NewOrderStore(pool), checks: checks}, nil

	case config.StoragePebble:
		store, err := pebble.NewOrderStore(pebble.Options{Dir: cfg.Storage.PebbleDir})
		if err != nil {
			return nil, err
		}

		lifeCycle.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return store.Close()
			},
		})

		return &storage{store: store, checks: checks}, nil

	default:
		return &storage{store: memory.NewOrderStore(), checks: checks}, nil
	}
}

func withClOrdIDCache(
	lifeCycle fx.Lifecycle,
	cfg config.Config,
	storage *storage,
) order.Repository {
	client := redis.NewClient(redis.Config{
		Address:           cfg.Redis.Address,
		Password:          cfg.Redis.Password,
		DB:                cfg.Redis.DB,
		ConnectionTimeout: cfg.Redis.ConnectionTimeout,
	})
	storage.checks["redis"] = client.Ping

	lifeCycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return redisCache.NewClOrdIDCache(storage.store, client, cfg.Redis.ClOrdIDTTL)
}
