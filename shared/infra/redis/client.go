package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
)

type Config struct {
	Address           string
	Password          string
	DB                int
	ConnectionTimeout time.Duration
}

type RedisClient interface {
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

type client struct {
	rdb               *goredis.Client
	connectionTimeout time.Duration
}

func NewClient(cfg Config) *client {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.ConnectionTimeout,
	})

	return &client{
		rdb:               rdb,
		connectionTimeout: cfg.ConnectionTimeout,
	}
}

// withTimeout bounds every command by the connection timeout.
func (c *client) withTimeout(ctx context.Context, command string, fn func(ctx context.Context) error) error {
	if c.connectionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.connectionTimeout)
		defer cancel()
	}

	if err := fn(ctx); err != nil {
		zapLogger.Debug(ctx, "redis command failed",
			zap.String("command", command),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (c *client) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.withTimeout(ctx, "SET", func(ctx context.Context) error {
		return c.rdb.Set(ctx, key, value, ttl).Err()
	})
}

func (c *client) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := c.withTimeout(ctx, "EXISTS", func(ctx context.Context) error {
		count, err := c.rdb.Exists(ctx, key).Result()
		if err != nil {
			return err
		}

		exists = count > 0
		return nil
	})

	return exists, err
}

func (c *client) Ping(ctx context.Context) error {
	return c.withTimeout(ctx, "PING", func(ctx context.Context) error {
		return c.rdb.Ping(ctx).Err()
	})
}

func (c *client) Close() error {
	return c.rdb.Close()
}
