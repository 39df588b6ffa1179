package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodcart_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// OrderSelector identifies the order a status change applies to. Zero fields
// are ignored; at least one of ID or PaymentIntentID must be set.
type OrderSelector struct {
	ID              primitive.ObjectID
	UserID          primitive.ObjectID
	PaymentIntentID string
}

// StatusChange is a compare-and-set on the order status: it only applies while
// the stored status is one of From.
type StatusChange struct {
	From        []models.OrderStatus
	To          models.OrderStatus
	TotalAmount *float64
}

// OrderRepository defines data access for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Order, error)

	// ChangeStatus applies change to the selected order and returns the order
	// as it was before the update, or nil when nothing matched.
	ChangeStatus(ctx context.Context, sel OrderSelector, change StatusChange) (*models.Order, error)

	SetCheckoutSession(ctx context.Context, id primitive.ObjectID, sessionID string) error

	// ListStalePending returns orders still pending that were created before cutoff.
	ListStalePending(ctx context.Context, cutoff time.Time, limit int64) ([]models.Order, error)
}

// RestaurantRepository defines data access for restaurants.
type RestaurantRepository interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Restaurant, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Restaurant, error)
	List(ctx context.Context) ([]models.Restaurant, error)
	Search(ctx context.Context, q models.RestaurantSearch) (*models.RestaurantSearchResult, error)
	Create(ctx context.Context, restaurant *models.Restaurant) error
	Update(ctx context.Context, restaurant *models.Restaurant) error
	AddMenu(ctx context.Context, restaurantID, menuID primitive.ObjectID) error
	RemoveMenu(ctx context.Context, restaurantID, menuID primitive.ObjectID) error

	// RemoveDuplicates keeps the most recently created restaurant per owner
	// and deletes the rest, returning how many were deleted.
	RemoveDuplicates(ctx context.Context) (int64, error)
}

// MenuRepository defines data access for menu entries.
type MenuRepository interface {
	Create(ctx context.Context, menu *models.Menu) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Menu, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Menu, error)
	Update(ctx context.Context, menu *models.Menu) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserRepository defines data access for user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, in models.ProfileInput) (*models.User, error)
	SetAdmin(ctx context.Context, id primitive.ObjectID, admin bool) error
}

// OwnerRequestRepository defines data access for restaurant owner requests.
type OwnerRequestRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.OwnerRequest, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.OwnerRequest, error)
	List(ctx context.Context, status models.OwnerRequestStatus) ([]models.OwnerRequest, error)
	Create(ctx context.Context, req *models.OwnerRequest) error
	Update(ctx context.Context, req *models.OwnerRequest) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// storeErr maps connectivity failures onto ErrStoreUnavailable and wraps
// everything else with the failing operation.
func storeErr(op string, err error) error {
	if isUnavailable(err) {
		return models.ErrStoreUnavailable.Wrap(fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	if errors.Is(err, mongo.ErrClientDisconnected) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var selErr topology.ServerSelectionError
	return errors.As(err, &selErr)
}
