package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MockBackend never calls the network. Intents and sessions get fabricated
// ids; webhooks are plain JSON Events and are not signed.
type MockBackend struct {
	logger zerolog.Logger
}

func NewMock(logger zerolog.Logger) *MockBackend {
	return &MockBackend{
		logger: logger.With().Str("component", "payment_mock").Logger(),
	}
}

func (b *MockBackend) Name() string { return "mock" }

func (b *MockBackend) CreatePaymentIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.AmountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrDeclined)
	}

	id := "pi_mock_" + compactID()
	b.logger.Debug().Str("payment_intent_id", id).Int64("amount", p.AmountMinor).Msg("mock payment intent created")

	return &Intent{ID: id, ClientSecret: id + "_secret_" + compactID()}, nil
}

func (b *MockBackend) CreateCheckoutSession(ctx context.Context, p SessionParams) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := "cs_mock_" + compactID()
	return &Session{ID: id, URL: p.SuccessURL}, nil
}

func (b *MockBackend) ParseWebhook(payload []byte, _ string) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrInvalidPayload)
	}
	return &event, nil
}

func compactID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
