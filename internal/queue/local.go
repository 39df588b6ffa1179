package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LocalBroker delivers messages in process. It is used when no RabbitMQ URL
// is configured and keeps the same retry semantics, minus durability.
type LocalBroker struct {
	handlers   map[string][]MessageHandler
	maxRetries int
	retryDelay time.Duration
	logger     zerolog.Logger

	mu       sync.RWMutex
	inflight sync.WaitGroup
	closed   bool
}

func NewLocalBroker(retryDelay time.Duration, logger zerolog.Logger) *LocalBroker {
	return &LocalBroker{
		handlers:   make(map[string][]MessageHandler),
		maxRetries: DefaultMaxRetries,
		retryDelay: retryDelay,
		logger:     logger.With().Str("component", "local_broker").Logger(),
	}
}

func (b *LocalBroker) Publish(_ context.Context, queueName string, message []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	body := append([]byte(nil), message...)
	for _, h := range b.handlers[queueName] {
		b.inflight.Add(1)
		go b.deliver(queueName, h, body)
	}
	return nil
}

func (b *LocalBroker) deliver(queueName string, h MessageHandler, body []byte) {
	defer b.inflight.Done()

	// Deliveries outlive the publishing request.
	ctx := context.Background()

	for attempt := 0; ; attempt++ {
		err := h(ctx, body)
		if err == nil {
			return
		}
		if attempt >= b.maxRetries {
			b.logger.Error().Err(err).Str("queue", queueName).Int("attempts", attempt+1).Msg("dropping message after retries")
			return
		}
		b.logger.Warn().Err(err).Str("queue", queueName).Int("retry", attempt+1).Msg("message handling failed, retrying")
		time.Sleep(b.retryDelay * time.Duration(1<<attempt))
	}
}

func (b *LocalBroker) Subscribe(_ context.Context, queueName string, handler MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.handlers[queueName] = append(b.handlers[queueName], handler)
	return nil
}

// Close stops accepting messages and waits for in-flight deliveries.
func (b *LocalBroker) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.inflight.Wait()
	return nil
}
