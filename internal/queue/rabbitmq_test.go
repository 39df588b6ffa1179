package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAcknowledger struct {
	acks     int
	requeued int
}

func (a *recordingAcknowledger) Ack(uint64, bool) error {
	a.acks++
	return nil
}

func (a *recordingAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	if requeue {
		a.requeued++
	}
	return nil
}

func (a *recordingAcknowledger) Reject(uint64, bool) error { return nil }

type sentMessage struct {
	queue string
	msg   amqp.Publishing
}

func newTestRabbitMQBroker(publishErr error) (*RabbitMQBroker, *[]sentMessage) {
	var sent []sentMessage
	b := &RabbitMQBroker{
		maxRetries: 2,
		retryDelay: time.Millisecond,
		logger:     zerolog.Nop(),
	}
	b.republish = func(_ context.Context, queueName string, msg amqp.Publishing) error {
		if publishErr != nil {
			return publishErr
		}
		sent = append(sent, sentMessage{queue: queueName, msg: msg})
		return nil
	}
	return b, &sent
}

func TestRabbitMQBroker_HandleMessage(t *testing.T) {
	failing := func(context.Context, []byte) error { return errors.New("history store down") }

	tests := []struct {
		name         string
		handler      MessageHandler
		retries      int32
		publishErr   error
		wantAcks     int
		wantRequeued int
		wantQueue    string
		wantRetry    int32
	}{
		{
			name:     "Success is acked",
			handler:  func(context.Context, []byte) error { return nil },
			wantAcks: 1,
		},
		{
			name:      "Failure is republished with a retry count",
			handler:   failing,
			wantAcks:  1,
			wantQueue: QueueOrderEvents,
			wantRetry: 1,
		},
		{
			name:      "Exhausted retries go to the dead letter queue",
			handler:   failing,
			retries:   2,
			wantAcks:  1,
			wantQueue: QueueOrderEventsDLQ,
			wantRetry: 2,
		},
		{
			name:         "Failed retry publish requeues the original",
			handler:      failing,
			publishErr:   errors.New("channel closed"),
			wantRequeued: 1,
		},
		{
			name:         "Failed dead letter publish requeues the original",
			handler:      failing,
			retries:      2,
			publishErr:   errors.New("channel closed"),
			wantRequeued: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, sent := newTestRabbitMQBroker(tt.publishErr)
			ack := &recordingAcknowledger{}
			msg := amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(`{"orderId":"o1"}`)}
			if tt.retries > 0 {
				msg.Headers = amqp.Table{"x-retry-count": tt.retries}
			}

			b.handleMessage(context.Background(), msg, tt.handler, QueueOrderEvents)

			assert.Equal(t, tt.wantAcks, ack.acks)
			assert.Equal(t, tt.wantRequeued, ack.requeued)
			if tt.wantQueue == "" {
				assert.Empty(t, *sent)
				return
			}
			require.Len(t, *sent, 1)
			assert.Equal(t, tt.wantQueue, (*sent)[0].queue)
			assert.Equal(t, tt.wantRetry, (*sent)[0].msg.Headers["x-retry-count"])
			assert.Equal(t, msg.Body, (*sent)[0].msg.Body)
		})
	}
}

func TestRabbitMQBroker_HandleMessageRequeuesOnShutdown(t *testing.T) {
	b, sent := newTestRabbitMQBroker(nil)
	b.retryDelay = time.Hour
	ack := &recordingAcknowledger{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b.handleMessage(ctx, amqp.Delivery{Acknowledger: ack, DeliveryTag: 1}, func(context.Context, []byte) error {
		return errors.New("boom")
	}, QueueOrderEvents)

	assert.Zero(t, ack.acks)
	assert.Equal(t, 1, ack.requeued)
	assert.Empty(t, *sent)
}
