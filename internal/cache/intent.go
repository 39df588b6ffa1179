// Package cache holds the Redis-backed short-lived state shared between
// instances: the payment-intent dedup cache and request cooldowns.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodcart_back_end/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const IntentCacheTTL = 5 * time.Minute

// IntentCache remembers the intent created for an identical checkout attempt
// so that a double-submitted form returns the same order. It is an
// optimization only: every Redis failure is logged and treated as a miss.
type IntentCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

func NewIntentCache(client redis.Cmdable, logger zerolog.Logger) *IntentCache {
	return &IntentCache{
		client: client,
		ttl:    IntentCacheTTL,
		logger: logger.With().Str("component", "intent_cache").Logger(),
	}
}

// IntentKey identifies a checkout attempt within a one-minute bucket.
func IntentKey(userID, restaurantID string, amountMinor int64, itemCount int, now time.Time) string {
	return fmt.Sprintf("intent:%s:%s:%d:%d:%d", userID, restaurantID, amountMinor, itemCount, now.Unix()/60)
}

func orderKey(orderID string) string {
	return "intent:order:" + orderID
}

func (c *IntentCache) Get(ctx context.Context, key string) (*models.PaymentIntentResult, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("intent cache lookup failed")
		}
		return nil, false
	}

	var res models.PaymentIntentResult
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding malformed intent cache entry")
		return nil, false
	}
	return &res, true
}

func (c *IntentCache) Put(ctx context.Context, key string, res *models.PaymentIntentResult) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, c.ttl)
		pipe.Set(ctx, orderKey(res.OrderID), key, c.ttl)
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("order_id", res.OrderID).Msg("failed to cache payment intent")
	}
}

// Forget evicts the entry that points at orderID, once the order has moved on
// from pending.
func (c *IntentCache) Forget(ctx context.Context, orderID string) {
	key, err := c.client.Get(ctx, orderKey(orderID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("order_id", orderID).Msg("intent cache lookup failed")
		}
		return
	}

	if err := c.client.Del(ctx, key, orderKey(orderID)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("order_id", orderID).Msg("failed to evict payment intent")
	}
}
