// Package events moves order status changes from the request path to their
// side effects: history, customer notification and the live feed.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/queue"

	"github.com/rs/zerolog"
)

type Publisher struct {
	broker queue.Broker
	logger zerolog.Logger
}

func NewPublisher(broker queue.Broker, logger zerolog.Logger) *Publisher {
	return &Publisher{
		broker: broker,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

// Publish enqueues the event. A failure is logged and swallowed; the status
// change it describes has already been committed.
func (p *Publisher) Publish(ctx context.Context, event models.OrderEvent) {
	if err := p.publish(ctx, event); err != nil {
		p.logger.Error().Err(err).
			Str("order_id", event.OrderID).
			Str("to", string(event.To)).
			Msg("failed to publish order event")
	}
}

func (p *Publisher) publish(ctx context.Context, event models.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	return p.broker.Publish(ctx, queue.QueueOrderEvents, body)
}
