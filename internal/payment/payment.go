// Package payment talks to the card processor. A Backend creates payment
// intents and hosted checkout sessions and turns webhook deliveries into
// Events the order workflow understands.
package payment

import (
	"context"
	"errors"
)

// Webhook event types the order workflow acts on.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentSucceeded  = "payment_intent.succeeded"
)

var (
	ErrDeclined         = errors.New("payment declined by processor")
	ErrUnavailable      = errors.New("payment processor unavailable")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
)

type Backend interface {
	Name() string
	CreatePaymentIntent(ctx context.Context, p IntentParams) (*Intent, error)
	CreateCheckoutSession(ctx context.Context, p SessionParams) (*Session, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// IntentParams describes a charge. Amounts are in minor units.
type IntentParams struct {
	AmountMinor int64
	Currency    string
	Email       string
	Metadata    map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
}

type SessionLine struct {
	Name           string
	Image          string
	UnitPriceMinor int64
	Quantity       int64
}

type SessionParams struct {
	Lines      []SessionLine
	Currency   string
	Email      string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type Session struct {
	ID  string
	URL string
}

// Event is a verified webhook delivery. OrderID comes from session metadata,
// PaymentIntentID from the intent the event refers to.
type Event struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	OrderID          string `json:"orderId,omitempty"`
	PaymentIntentID  string `json:"paymentIntentId,omitempty"`
	AmountTotalMinor int64  `json:"amountTotal,omitempty"`
}
