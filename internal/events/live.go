package events

import (
	"context"
	"encoding/json"
	"fmt"

	"foodcart_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

func RestaurantChannel(restaurantID string) string {
	return "orders:restaurant:" + restaurantID
}

func UserChannel(userID string) string {
	return "orders:user:" + userID
}

// LiveFeed fans order events out over Redis pub/sub so that every instance
// can push them to its connected clients.
type LiveFeed struct {
	client *redis.Client
}

func NewLiveFeed(client *redis.Client) *LiveFeed {
	return &LiveFeed{client: client}
}

func (f *LiveFeed) Publish(ctx context.Context, event models.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode live event: %w", err)
	}

	pipe := f.client.Pipeline()
	pipe.Publish(ctx, RestaurantChannel(event.RestaurantID), body)
	pipe.Publish(ctx, UserChannel(event.UserID), body)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish live event: %w", err)
	}
	return nil
}

func (f *LiveFeed) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return f.client.Subscribe(ctx, channels...)
}
