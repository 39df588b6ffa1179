package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldown allows one action per id per window.
type Cooldown struct {
	client redis.Cmdable
	prefix string
	window time.Duration
}

func NewCooldown(client redis.Cmdable, prefix string, window time.Duration) *Cooldown {
	return &Cooldown{client: client, prefix: prefix, window: window}
}

// Acquire reports whether the action may proceed now, starting a new window
// when it does.
func (c *Cooldown) Acquire(ctx context.Context, id string) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.prefix+":"+id, time.Now().Unix(), c.window).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown %s: %w", c.prefix, err)
	}
	return ok, nil
}

func (c *Cooldown) Reset(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.prefix+":"+id).Err()
}
