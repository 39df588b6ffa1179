package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderService covers checkout, payment confirmation and the order status
// workflow.
type OrderService interface {
	// CreatePaymentIntent creates a pending order and the processor intent
	// the client confirms the card payment against.
	CreatePaymentIntent(ctx context.Context, actor models.Actor, req models.PaymentIntentRequest) (*models.PaymentIntentResult, error)

	// CreateCheckoutSession creates a pending order priced from the
	// restaurant's menus and a hosted checkout page for it.
	CreateCheckoutSession(ctx context.Context, actor models.Actor, req models.CheckoutSessionRequest) (*models.CheckoutSessionResult, error)

	// HandlePaymentEvent confirms the order a verified webhook refers to.
	// Redelivered events are a no-op.
	HandlePaymentEvent(ctx context.Context, event *payment.Event) error

	ConfirmOrder(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error)
	CancelOrder(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, actor models.Actor, orderID, status string) (*models.Order, error)

	Get(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error)
	ListMine(ctx context.Context, actor models.Actor) ([]models.Order, error)
	ListForRestaurant(ctx context.Context, actor models.Actor) ([]models.Order, error)
	History(ctx context.Context, actor models.Actor, orderID string) ([]models.OrderEvent, error)

	// CancelStale cancels orders still pending at cutoff and returns how many
	// were cancelled.
	CancelStale(ctx context.Context, cutoff time.Time) (int, error)
}

type RestaurantService interface {
	Create(ctx context.Context, actor models.Actor, in models.RestaurantInput, image *models.Upload) (*models.Restaurant, error)
	Update(ctx context.Context, actor models.Actor, in models.RestaurantInput, image *models.Upload) (*models.Restaurant, error)
	Mine(ctx context.Context, actor models.Actor) (*models.RestaurantDetail, error)
	Get(ctx context.Context, id string) (*models.RestaurantDetail, error)
	List(ctx context.Context) ([]models.Restaurant, error)
	Search(ctx context.Context, q models.RestaurantSearch) (*models.RestaurantSearchResult, error)
	RepairDuplicates(ctx context.Context) (int64, error)
}

type MenuService interface {
	Create(ctx context.Context, actor models.Actor, in models.MenuInput, image *models.Upload) (*models.Menu, error)
	Get(ctx context.Context, id string) (*models.Menu, error)
	Update(ctx context.Context, actor models.Actor, id string, in models.MenuInput, image *models.Upload) (*models.Menu, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

type OwnerRequestService interface {
	Request(ctx context.Context, actor models.Actor, in models.OwnerRequestInput) (*models.OwnerRequest, error)
	VerifyOTP(ctx context.Context, actor models.Actor, otp string) (*models.OwnerRequest, error)
	ResendOTP(ctx context.Context, actor models.Actor) error
	Mine(ctx context.Context, actor models.Actor) (models.OwnerRequestStatus, *models.OwnerRequest, error)
	List(ctx context.Context, status string) ([]models.OwnerRequest, error)
	UpdateStatus(ctx context.Context, id, decision string) (*models.OwnerRequest, error)
}

type UserService interface {
	Profile(ctx context.Context, actor models.Actor) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, actor models.Actor, in models.ProfileInput) (*models.UserProfile, error)
}

// IntentCache is the payment-intent dedup cache.
type IntentCache interface {
	Get(ctx context.Context, key string) (*models.PaymentIntentResult, bool)
	Put(ctx context.Context, key string, res *models.PaymentIntentResult)
	Forget(ctx context.Context, orderID string)
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.OrderEvent)
}

type OwnerMailer interface {
	SendOTP(ctx context.Context, to, name, otp string, validFor time.Duration) error
	SendOwnerApproved(ctx context.Context, req *models.OwnerRequest) error
	SendOwnerRejected(ctx context.Context, req *models.OwnerRequest) error
}

type Cooldown interface {
	Acquire(ctx context.Context, id string) (bool, error)
}

func badRequest(format string, args ...any) *models.AppError {
	return models.NewAppError(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

func parseID(hex string, notFound *models.AppError) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return id, nil
}

// withTimeout runs fn and gives up after d. fn keeps running in the
// background if it ignores ctx; its late result is discarded.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// paymentErr maps a processor failure onto the client-facing error.
func paymentErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, payment.ErrUnavailable):
		return models.ErrPaymentTimeout.Wrap(err)
	case errors.Is(err, payment.ErrDeclined):
		return models.ErrPaymentDeclined.Wrap(err)
	default:
		return fmt.Errorf("payment processor: %w", err)
	}
}
