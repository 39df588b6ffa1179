package events

import (
	"context"
	"encoding/json"
	"fmt"

	"foodcart_back_end/internal/history"
	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/queue"

	"github.com/rs/zerolog"
)

type Notifier interface {
	SendOrderStatus(ctx context.Context, event models.OrderEvent) error
}

type Feed interface {
	Publish(ctx context.Context, event models.OrderEvent) error
}

// Worker consumes order events. Recording history is the only step whose
// failure causes a redelivery; notification and live updates are best effort.
type Worker struct {
	broker   queue.Broker
	history  history.Store
	notifier Notifier
	feed     Feed
	logger   zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewWorker(broker queue.Broker, store history.Store, notifier Notifier, feed Feed, logger zerolog.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		broker:   broker,
		history:  store,
		notifier: notifier,
		feed:     feed,
		logger:   logger.With().Str("component", "order_event_worker").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (w *Worker) Start() error {
	w.logger.Info().Msg("starting order event worker")
	return w.broker.Subscribe(w.ctx, queue.QueueOrderEvents, w.HandleMessage)
}

func (w *Worker) Stop() {
	w.logger.Info().Msg("stopping order event worker")
	w.cancel()
}

func (w *Worker) HandleMessage(ctx context.Context, message []byte) error {
	var event models.OrderEvent
	if err := json.Unmarshal(message, &event); err != nil {
		// A malformed message will never succeed; do not retry it.
		w.logger.Error().Err(err).Msg("discarding malformed order event")
		return nil
	}

	log := w.logger.With().
		Str("order_id", event.OrderID).
		Str("from", string(event.From)).
		Str("to", string(event.To)).
		Logger()

	if err := w.history.Append(ctx, event); err != nil {
		log.Error().Err(err).Msg("failed to record order history")
		return fmt.Errorf("record order history: %w", err)
	}

	if w.notifier != nil {
		if err := w.notifier.SendOrderStatus(ctx, event); err != nil {
			log.Warn().Err(err).Msg("failed to notify customer")
		}
	}

	if w.feed != nil {
		if err := w.feed.Publish(ctx, event); err != nil {
			log.Warn().Err(err).Msg("failed to push live update")
		}
	}

	log.Debug().Msg("order event processed")
	return nil
}
