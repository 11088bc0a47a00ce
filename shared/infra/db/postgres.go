package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/nastyazhadan/order-gateway/shared/infra/db/migrator"
	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
)

// SetupDB opens a pool against dbURI and brings the orders schema up to date
// over that pool. maxConns <= 0 keeps the pgx default.
func SetupDB(ctx context.Context, dbURI string, maxConns int32, migrationsFS fs.FS) (*pgxpool.Pool, error) {
	pool, err := newPgxPool(ctx, dbURI, maxConns)
	if err != nil {
		return nil, fmt.Errorf("newPgxPool: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	if err := Migrate(ctx, sqlDB, migrationsFS); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func Migrate(ctx context.Context, sqlDB *sql.DB, migrationsFS fs.FS) error {
	dbMigrator, err := migrator.NewMigrator(sqlDB, migrationsFS)
	if err != nil {
		return fmt.Errorf("migrator.NewMigrator: %w", err)
	}

	version, err := dbMigrator.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrator.Up: %w", err)
	}

	zapLogger.Info(ctx, "orders schema migrated", zap.Int64("version", version))
	return nil
}

func newPgxPool(ctx context.Context, dbURI string, maxConns int32) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURI)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return pool, nil
}
