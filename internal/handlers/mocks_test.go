package handlers

import (
	"context"
	"io"
	"time"

	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/payment"

	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreatePaymentIntent(ctx context.Context, actor models.Actor, req models.PaymentIntentRequest) (*models.PaymentIntentResult, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentIntentResult), args.Error(1)
}

func (m *MockOrderService) CreateCheckoutSession(ctx context.Context, actor models.Actor, req models.CheckoutSessionRequest) (*models.CheckoutSessionResult, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckoutSessionResult), args.Error(1)
}

func (m *MockOrderService) HandlePaymentEvent(ctx context.Context, event *payment.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockOrderService) order(args mock.Arguments) (*models.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ConfirmOrder(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error) {
	return m.order(m.Called(ctx, actor, orderID))
}

func (m *MockOrderService) CancelOrder(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error) {
	return m.order(m.Called(ctx, actor, orderID))
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, actor models.Actor, orderID, status string) (*models.Order, error) {
	return m.order(m.Called(ctx, actor, orderID, status))
}

func (m *MockOrderService) Get(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error) {
	return m.order(m.Called(ctx, actor, orderID))
}

func (m *MockOrderService) ListMine(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderService) ListForRestaurant(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderService) History(ctx context.Context, actor models.Actor, orderID string) ([]models.OrderEvent, error) {
	args := m.Called(ctx, actor, orderID)
	events, _ := args.Get(0).([]models.OrderEvent)
	return events, args.Error(1)
}

func (m *MockOrderService) CancelStale(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

type MockRestaurantService struct {
	mock.Mock
	lastImage []byte
}

func (m *MockRestaurantService) capture(image *models.Upload) {
	m.lastImage = nil
	if image != nil {
		m.lastImage, _ = io.ReadAll(image.Body)
	}
}

func (m *MockRestaurantService) Create(ctx context.Context, actor models.Actor, in models.RestaurantInput, image *models.Upload) (*models.Restaurant, error) {
	m.capture(image)
	args := m.Called(ctx, actor, in, image != nil)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

func (m *MockRestaurantService) Update(ctx context.Context, actor models.Actor, in models.RestaurantInput, image *models.Upload) (*models.Restaurant, error) {
	m.capture(image)
	args := m.Called(ctx, actor, in, image != nil)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

func (m *MockRestaurantService) Mine(ctx context.Context, actor models.Actor) (*models.RestaurantDetail, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RestaurantDetail), args.Error(1)
}

func (m *MockRestaurantService) Get(ctx context.Context, id string) (*models.RestaurantDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RestaurantDetail), args.Error(1)
}

func (m *MockRestaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Restaurant), args.Error(1)
}

func (m *MockRestaurantService) Search(ctx context.Context, q models.RestaurantSearch) (*models.RestaurantSearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RestaurantSearchResult), args.Error(1)
}

func (m *MockRestaurantService) RepairDuplicates(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockOwnerRequestService struct {
	mock.Mock
}

func (m *MockOwnerRequestService) req(args mock.Arguments) (*models.OwnerRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OwnerRequest), args.Error(1)
}

func (m *MockOwnerRequestService) Request(ctx context.Context, actor models.Actor, in models.OwnerRequestInput) (*models.OwnerRequest, error) {
	return m.req(m.Called(ctx, actor, in))
}

func (m *MockOwnerRequestService) VerifyOTP(ctx context.Context, actor models.Actor, otp string) (*models.OwnerRequest, error) {
	return m.req(m.Called(ctx, actor, otp))
}

func (m *MockOwnerRequestService) ResendOTP(ctx context.Context, actor models.Actor) error {
	return m.Called(ctx, actor).Error(0)
}

func (m *MockOwnerRequestService) Mine(ctx context.Context, actor models.Actor) (models.OwnerRequestStatus, *models.OwnerRequest, error) {
	args := m.Called(ctx, actor)
	req, _ := args.Get(1).(*models.OwnerRequest)
	return args.Get(0).(models.OwnerRequestStatus), req, args.Error(2)
}

func (m *MockOwnerRequestService) List(ctx context.Context, status string) ([]models.OwnerRequest, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]models.OwnerRequest), args.Error(1)
}

func (m *MockOwnerRequestService) UpdateStatus(ctx context.Context, id, decision string) (*models.OwnerRequest, error) {
	return m.req(m.Called(ctx, id, decision))
}

type MockMenuService struct {
	mock.Mock
}

func (m *MockMenuService) menu(args mock.Arguments) (*models.Menu, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Menu), args.Error(1)
}

func (m *MockMenuService) Create(ctx context.Context, actor models.Actor, in models.MenuInput, image *models.Upload) (*models.Menu, error) {
	return m.menu(m.Called(ctx, actor, in, image != nil))
}

func (m *MockMenuService) Get(ctx context.Context, id string) (*models.Menu, error) {
	return m.menu(m.Called(ctx, id))
}

func (m *MockMenuService) Update(ctx context.Context, actor models.Actor, id string, in models.MenuInput, image *models.Upload) (*models.Menu, error) {
	return m.menu(m.Called(ctx, actor, id, in, image != nil))
}

func (m *MockMenuService) Delete(ctx context.Context, actor models.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Profile(ctx context.Context, actor models.Actor) (*models.UserProfile, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, actor models.Actor, in models.ProfileInput) (*models.UserProfile, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}
