package queue

import (
	"context"
	"errors"
)

type Broker interface {
	Publish(ctx context.Context, queueName string, message []byte) error
	Subscribe(ctx context.Context, queueName string, handler MessageHandler) error
	Close() error
}

type MessageHandler func(ctx context.Context, message []byte) error

const (
	QueueOrderEvents    = "order-events"
	QueueOrderEventsDLQ = "order-events-dlq"
)

const DefaultMaxRetries = 3

var ErrClosed = errors.New("broker closed")
