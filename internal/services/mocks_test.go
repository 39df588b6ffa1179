package services

import (
	"context"
	"time"

	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/payment"
	"foodcart_back_end/internal/repository"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Order, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) ChangeStatus(ctx context.Context, sel repository.OrderSelector, change repository.StatusChange) (*models.Order, error) {
	args := m.Called(ctx, sel, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) SetCheckoutSession(ctx context.Context, id primitive.ObjectID, sessionID string) error {
	return m.Called(ctx, id, sessionID).Error(0)
}

func (m *MockOrderRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int64) ([]models.Order, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).([]models.Order), args.Error(1)
}

type MockRestaurantRepository struct {
	mock.Mock
}

func (m *MockRestaurantRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRestaurantRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Restaurant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Restaurant, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) List(ctx context.Context) ([]models.Restaurant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) Search(ctx context.Context, q models.RestaurantSearch) (*models.RestaurantSearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RestaurantSearchResult), args.Error(1)
}

func (m *MockRestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	args := m.Called(ctx, restaurant)
	if restaurant.ID.IsZero() {
		restaurant.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockRestaurantRepository) Update(ctx context.Context, restaurant *models.Restaurant) error {
	return m.Called(ctx, restaurant).Error(0)
}

func (m *MockRestaurantRepository) AddMenu(ctx context.Context, restaurantID, menuID primitive.ObjectID) error {
	return m.Called(ctx, restaurantID, menuID).Error(0)
}

func (m *MockRestaurantRepository) RemoveMenu(ctx context.Context, restaurantID, menuID primitive.ObjectID) error {
	return m.Called(ctx, restaurantID, menuID).Error(0)
}

func (m *MockRestaurantRepository) RemoveDuplicates(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockMenuRepository struct {
	mock.Mock
}

func (m *MockMenuRepository) Create(ctx context.Context, menu *models.Menu) error {
	args := m.Called(ctx, menu)
	if menu.ID.IsZero() {
		menu.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockMenuRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Menu, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Menu), args.Error(1)
}

func (m *MockMenuRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Menu, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Menu), args.Error(1)
}

func (m *MockMenuRepository) Update(ctx context.Context, menu *models.Menu) error {
	return m.Called(ctx, menu).Error(0)
}

func (m *MockMenuRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, in models.ProfileInput) (*models.User, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetAdmin(ctx context.Context, id primitive.ObjectID, admin bool) error {
	return m.Called(ctx, id, admin).Error(0)
}

type MockOwnerRequestRepository struct {
	mock.Mock
}

func (m *MockOwnerRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.OwnerRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OwnerRequest), args.Error(1)
}

func (m *MockOwnerRequestRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.OwnerRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OwnerRequest), args.Error(1)
}

func (m *MockOwnerRequestRepository) List(ctx context.Context, status models.OwnerRequestStatus) ([]models.OwnerRequest, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]models.OwnerRequest), args.Error(1)
}

func (m *MockOwnerRequestRepository) Create(ctx context.Context, req *models.OwnerRequest) error {
	args := m.Called(ctx, req)
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockOwnerRequestRepository) Update(ctx context.Context, req *models.OwnerRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockOwnerRequestRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

// MockBackend is a payment backend whose calls are scripted per test.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) CreatePaymentIntent(ctx context.Context, p payment.IntentParams) (*payment.Intent, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockBackend) CreateCheckoutSession(ctx context.Context, p payment.SessionParams) (*payment.Session, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}

func (m *MockBackend) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}

type MockIntentCache struct {
	mock.Mock
}

func (m *MockIntentCache) Get(ctx context.Context, key string) (*models.PaymentIntentResult, bool) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.PaymentIntentResult), args.Bool(1)
}

func (m *MockIntentCache) Put(ctx context.Context, key string, res *models.PaymentIntentResult) {
	m.Called(ctx, key, res)
}

func (m *MockIntentCache) Forget(ctx context.Context, orderID string) {
	m.Called(ctx, orderID)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	events []models.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event models.OrderEvent) {
	p.events = append(p.events, event)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Append(ctx context.Context, e models.OrderEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockHistory) List(ctx context.Context, orderID string) ([]models.OrderEvent, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]models.OrderEvent), args.Error(1)
}

type MockMailer struct {
	mock.Mock
	lastOTP string
}

func (m *MockMailer) SendOTP(ctx context.Context, to, name, otp string, validFor time.Duration) error {
	m.lastOTP = otp
	return m.Called(ctx, to, name, otp, validFor).Error(0)
}

func (m *MockMailer) SendOwnerApproved(ctx context.Context, req *models.OwnerRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockMailer) SendOwnerRejected(ctx context.Context, req *models.OwnerRequest) error {
	return m.Called(ctx, req).Error(0)
}

type MockCooldown struct {
	mock.Mock
}

func (m *MockCooldown) Acquire(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, folder string, up models.Upload) (string, error) {
	args := m.Called(ctx, folder, up)
	return args.String(0), args.Error(1)
}

type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Index(ctx context.Context, r *models.Restaurant) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockIndex) Search(ctx context.Context, q models.RestaurantSearch) ([]primitive.ObjectID, int64, error) {
	args := m.Called(ctx, q)
	ids, _ := args.Get(0).([]primitive.ObjectID)
	return ids, args.Get(1).(int64), args.Error(2)
}
