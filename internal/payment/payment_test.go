package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

func TestMockBackend_CreatePaymentIntent(t *testing.T) {
	b := NewMock(zerolog.Nop())

	intent, err := b.CreatePaymentIntent(context.Background(), IntentParams{AmountMinor: 1250, Currency: "usd"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(intent.ID, "pi_mock_"))
	assert.True(t, strings.HasPrefix(intent.ClientSecret, intent.ID+"_secret_"))

	_, err = b.CreatePaymentIntent(context.Background(), IntentParams{AmountMinor: 0})
	assert.ErrorIs(t, err, ErrDeclined)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.CreatePaymentIntent(ctx, IntentParams{AmountMinor: 100})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockBackend_ParseWebhook(t *testing.T) {
	b := NewMock(zerolog.Nop())

	event, err := b.ParseWebhook([]byte(`{"id":"evt_1","type":"checkout.session.completed","orderId":"abc","amountTotal":2575}`), "")
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "abc", event.OrderID)
	assert.Equal(t, int64(2575), event.AmountTotalMinor)

	_, err = b.ParseWebhook([]byte(`not json`), "")
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = b.ParseWebhook([]byte(`{"id":"evt_2"}`), "")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

const checkoutCompletedPayload = `{
  "id": "evt_test_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {
    "object": {
      "id": "cs_test_1",
      "object": "checkout.session",
      "amount_total": 2575,
      "payment_intent": "pi_test_1",
      "metadata": {"orderId": "6650f1c2a1b2c3d4e5f60718"}
    }
  }
}`

const intentSucceededPayload = `{
  "id": "evt_test_2",
  "object": "event",
  "type": "payment_intent.succeeded",
  "data": {
    "object": {
      "id": "pi_test_2",
      "object": "payment_intent",
      "amount": 1900,
      "metadata": {}
    }
  }
}`

func TestStripeBackend_ParseWebhook(t *testing.T) {
	const secret = "whsec_test"
	b := NewStripe(StripeConfig{SecretKey: "sk_test_x", WebhookSecret: secret}, zerolog.Nop())

	sign := func(payload string) string {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   []byte(payload),
			Secret:    secret,
			Timestamp: time.Now(),
		})
		return signed.Header
	}

	t.Run("checkout session completed", func(t *testing.T) {
		event, err := b.ParseWebhook([]byte(checkoutCompletedPayload), sign(checkoutCompletedPayload))
		require.NoError(t, err)
		assert.Equal(t, EventCheckoutCompleted, event.Type)
		assert.Equal(t, "6650f1c2a1b2c3d4e5f60718", event.OrderID)
		assert.Equal(t, "pi_test_1", event.PaymentIntentID)
		assert.Equal(t, int64(2575), event.AmountTotalMinor)
	})

	t.Run("payment intent succeeded", func(t *testing.T) {
		event, err := b.ParseWebhook([]byte(intentSucceededPayload), sign(intentSucceededPayload))
		require.NoError(t, err)
		assert.Equal(t, EventPaymentSucceeded, event.Type)
		assert.Equal(t, "pi_test_2", event.PaymentIntentID)
	})

	t.Run("bad signature", func(t *testing.T) {
		_, err := b.ParseWebhook([]byte(checkoutCompletedPayload), "t=1,v1=deadbeef")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("unsigned without secret", func(t *testing.T) {
		open := NewStripe(StripeConfig{SecretKey: "sk_test_x"}, zerolog.Nop())
		event, err := open.ParseWebhook([]byte(intentSucceededPayload), "")
		require.NoError(t, err)
		assert.Equal(t, "pi_test_2", event.PaymentIntentID)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "card error", err: &stripe.Error{Type: stripe.ErrorTypeCard, Msg: "card declined"}, want: ErrDeclined},
		{name: "rate limited", err: &stripe.Error{HTTPStatusCode: http.StatusTooManyRequests}, want: ErrDeclined},
		{name: "invalid request", err: &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusBadRequest, Msg: "Amount must be at least 50 cents"}, want: ErrDeclined},
		{name: "server error", err: &stripe.Error{HTTPStatusCode: http.StatusBadGateway}, want: ErrUnavailable},
		{name: "transport error", err: errors.New("dial tcp: connection refused"), want: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}

	unknown := classify(&stripe.Error{Type: stripe.ErrorTypeAPI})
	assert.NotErrorIs(t, unknown, ErrDeclined)
	assert.NotErrorIs(t, unknown, ErrUnavailable)
	assert.Contains(t, fmt.Sprint(unknown), "stripe")
}
