package redis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	"github.com/nastyazhadan/order-gateway/shared/infra/redis"
	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
)

const clOrdIDKeyPrefix = "order:clordid:"

type Repository interface {
	SaveOrder(ctx context.Context, order models.Order) error
	ExistsByClOrdID(ctx context.Context, clOrdID string) (bool, error)
}

// ClOrdIDCache answers ClOrdID existence checks from redis before falling back
// to the wrapped repository. A redis failure never fails the request.
type ClOrdIDCache struct {
	next   Repository
	client redis.RedisClient
	ttl    time.Duration
}

func NewClOrdIDCache(next Repository, client redis.RedisClient, ttl time.Duration) *ClOrdIDCache {
	return &ClOrdIDCache{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

func (c *ClOrdIDCache) SaveOrder(ctx context.Context, order models.Order) error {
	const op = "ClOrdIDCache.SaveOrder"

	if err := c.next.SaveOrder(ctx, order); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.remember(ctx, order.ClOrdID)
	return nil
}

func (c *ClOrdIDCache) ExistsByClOrdID(ctx context.Context, clOrdID string) (bool, error) {
	const op = "ClOrdIDCache.ExistsByClOrdID"

	cached, err := c.client.Exists(ctx, clOrdIDKeyPrefix+clOrdID)
	if err != nil {
		zapLogger.Warn(ctx, "clordid cache unavailable",
			zap.String("op", op),
			zap.Error(err),
		)
	}
	if cached {
		return true, nil
	}

	exists, err := c.next.ExistsByClOrdID(ctx, clOrdID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		c.remember(ctx, clOrdID)
	}

	return exists, nil
}

func (c *ClOrdIDCache) remember(ctx context.Context, clOrdID string) {
	if err := c.client.SetWithTTL(ctx, clOrdIDKeyPrefix+clOrdID, 1, c.ttl); err != nil {
		zapLogger.Warn(ctx, "clordid cache write failed",
			zap.String("clordid", clOrdID),
			zap.Error(err),
		)
	}
}
