package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v83"
	checkoutsession "github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type StripeBackend struct {
	webhookSecret string
	logger        zerolog.Logger
}

func NewStripe(cfg StripeConfig, logger zerolog.Logger) *StripeBackend {
	stripe.Key = cfg.SecretKey
	return &StripeBackend{
		webhookSecret: cfg.WebhookSecret,
		logger:        logger.With().Str("component", "stripe").Logger(),
	}
}

func (b *StripeBackend) Name() string { return "stripe" }

// CreatePaymentIntent does not observe ctx cancellation; callers race it
// against their own deadline.
func (b *StripeBackend) CreatePaymentIntent(_ context.Context, p IntentParams) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.AmountMinor),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if p.Email != "" {
		params.ReceiptEmail = stripe.String(p.Email)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, classify(err)
	}

	b.logger.Info().
		Str("payment_intent_id", intent.ID).
		Int64("amount", p.AmountMinor).
		Str("currency", p.Currency).
		Msg("payment intent created")

	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func (b *StripeBackend) CreateCheckoutSession(_ context.Context, p SessionParams) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	if p.Email != "" {
		params.CustomerEmail = stripe.String(p.Email)
	}

	for _, line := range p.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(line.Name),
		}
		if line.Image != "" {
			product.Images = []*string{stripe.String(line.Image)}
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(p.Currency),
				UnitAmount:  stripe.Int64(line.UnitPriceMinor),
				ProductData: product,
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, classify(err)
	}

	b.logger.Info().Str("session_id", sess.ID).Int("lines", len(p.Lines)).Msg("checkout session created")

	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

// ParseWebhook verifies the Stripe-Signature header. Without a webhook secret
// deliveries are accepted unsigned, which is only meant for local testing.
func (b *StripeBackend) ParseWebhook(payload []byte, signature string) (*Event, error) {
	var event stripe.Event

	if b.webhookSecret == "" {
		b.logger.Warn().Msg("STRIPE_WEBHOOK_SECRET not set, accepting unsigned webhook")
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	} else {
		var err error
		event, err = webhook.ConstructEventWithOptions(payload, signature, b.webhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	}

	return decodeStripeEvent(event)
}

func decodeStripeEvent(event stripe.Event) (*Event, error) {
	out := &Event{ID: event.ID, Type: string(event.Type)}

	switch out.Type {
	case EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: checkout session: %v", ErrInvalidPayload, err)
		}
		out.OrderID = sess.Metadata["orderId"]
		out.AmountTotalMinor = sess.AmountTotal
		if sess.PaymentIntent != nil {
			out.PaymentIntentID = sess.PaymentIntent.ID
		}
	case EventPaymentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: payment intent: %v", ErrInvalidPayload, err)
		}
		out.PaymentIntentID = pi.ID
		out.AmountTotalMinor = pi.Amount
		out.OrderID = pi.Metadata["orderId"]
	}

	return out, nil
}

// classify maps processor failures onto ErrDeclined and ErrUnavailable.
func classify(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case stripeErr.Type == stripe.ErrorTypeCard,
		stripeErr.HTTPStatusCode == http.StatusTooManyRequests,
		stripeErr.HTTPStatusCode == http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s", ErrDeclined, stripeErr.Msg)
	case stripeErr.HTTPStatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrUnavailable, stripeErr.Msg)
	case stripeErr.HTTPStatusCode >= http.StatusBadRequest:
		// amount below the processor minimum, bad currency and the like
		return fmt.Errorf("%w: %s", ErrDeclined, stripeErr.Msg)
	default:
		return fmt.Errorf("stripe: %w", err)
	}
}
