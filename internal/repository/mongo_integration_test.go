package repository

import (
	"context"
	"testing"
	"time"

	"foodcart_back_end/internal/database"
	"foodcart_back_end/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// setupTestStorage starts a MongoDB container and returns a connected storage.
func setupTestStorage(t *testing.T) *database.Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	storage, err := database.NewMongo(database.MongoConfig{
		URI:      uri,
		Database: "foodcart_test",
		Timeout:  30 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = storage.Close(context.Background())
	})

	require.NoError(t, storage.CreateIndexes(ctx))
	return storage
}

func newPendingOrder(user, restaurant primitive.ObjectID) *models.Order {
	items := []models.CartItem{{MenuID: primitive.NewObjectID().Hex(), Name: "Margherita", Price: 9.5, Quantity: 2}}
	return &models.Order{
		User:       user,
		Restaurant: restaurant,
		DeliveryDetails: models.DeliveryDetails{
			Name: "Jo", Email: "jo@example.com", Address: "221B Baker Street", City: "London",
		},
		CartItems:       items,
		TotalAmount:     models.CartTotal(items),
		Status:          models.StatusPending,
		PaymentIntentID: "pi_test_" + primitive.NewObjectID().Hex(),
	}
}

func TestOrderRepository_ChangeStatusIntegration(t *testing.T) {
	storage := setupTestStorage(t)
	repo := NewOrderRepository(storage.Database(), zerolog.Nop())
	ctx := context.Background()

	user, restaurant := primitive.NewObjectID(), primitive.NewObjectID()
	order := newPendingOrder(user, restaurant)
	require.NoError(t, repo.Create(ctx, order))

	t.Run("confirm by payment intent", func(t *testing.T) {
		before, err := repo.ChangeStatus(ctx,
			OrderSelector{PaymentIntentID: order.PaymentIntentID},
			StatusChange{From: []models.OrderStatus{models.StatusPending}, To: models.StatusConfirmed},
		)
		require.NoError(t, err)
		require.NotNil(t, before)
		assert.Equal(t, models.StatusPending, before.Status)

		stored, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, stored.Status)
	})

	t.Run("redelivery matches nothing", func(t *testing.T) {
		before, err := repo.ChangeStatus(ctx,
			OrderSelector{PaymentIntentID: order.PaymentIntentID},
			StatusChange{From: []models.OrderStatus{models.StatusPending}, To: models.StatusConfirmed},
		)
		require.NoError(t, err)
		assert.Nil(t, before)
	})

	t.Run("wrong user matches nothing", func(t *testing.T) {
		before, err := repo.ChangeStatus(ctx,
			OrderSelector{ID: order.ID, UserID: primitive.NewObjectID()},
			StatusChange{From: []models.OrderStatus{models.StatusConfirmed}, To: models.StatusCancelled},
		)
		require.NoError(t, err)
		assert.Nil(t, before)
	})

	t.Run("total amount is updated", func(t *testing.T) {
		total := 25.75
		before, err := repo.ChangeStatus(ctx,
			OrderSelector{ID: order.ID},
			StatusChange{From: []models.OrderStatus{models.StatusConfirmed}, To: models.StatusPreparing, TotalAmount: &total},
		)
		require.NoError(t, err)
		require.NotNil(t, before)

		stored, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPreparing, stored.Status)
		assert.Equal(t, 25.75, stored.TotalAmount)
	})

	t.Run("lists for user and restaurant", func(t *testing.T) {
		mine, err := repo.ListByUser(ctx, user)
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		theirs, err := repo.ListByRestaurant(ctx, restaurant)
		require.NoError(t, err)
		assert.Len(t, theirs, 1)
	})
}

func TestOrderRepository_ListStalePendingIntegration(t *testing.T) {
	storage := setupTestStorage(t)
	repo := NewOrderRepository(storage.Database(), zerolog.Nop())
	ctx := context.Background()

	old := newPendingOrder(primitive.NewObjectID(), primitive.NewObjectID())
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Create(ctx, old))

	fresh := newPendingOrder(primitive.NewObjectID(), primitive.NewObjectID())
	require.NoError(t, repo.Create(ctx, fresh))

	stale, err := repo.ListStalePending(ctx, time.Now().Add(-24*time.Hour), 100)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, old.ID, stale[0].ID)
}

func TestRestaurantRepositoryIntegration(t *testing.T) {
	storage := setupTestStorage(t)
	repo := NewRestaurantRepository(storage.Database(), zerolog.Nop())
	ctx := context.Background()

	owner := primitive.NewObjectID()
	r := &models.Restaurant{
		User:                  owner,
		RestaurantName:        "Luigi's",
		City:                  "London",
		Country:               "United Kingdom",
		DeliveryPrice:         2.5,
		EstimatedDeliveryTime: 30,
		Cuisines:              []string{"Italian", "Pizza"},
	}
	require.NoError(t, repo.Create(ctx, r))

	t.Run("one restaurant per owner", func(t *testing.T) {
		err := repo.Create(ctx, &models.Restaurant{User: owner, RestaurantName: "Second"})
		assert.ErrorIs(t, err, models.ErrRestaurantExists)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := repo.Exists(ctx, r.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Exists(ctx, primitive.NewObjectID())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("search", func(t *testing.T) {
		res, err := repo.Search(ctx, models.RestaurantSearch{City: "london", Cuisines: []string{"pizza"}, Page: 1})
		require.NoError(t, err)
		require.Len(t, res.Data, 1)
		assert.Equal(t, int64(1), res.Pagination.Total)

		res, err = repo.Search(ctx, models.RestaurantSearch{City: "kingdom", Query: "sushi"})
		require.NoError(t, err)
		assert.Empty(t, res.Data)
	})

	t.Run("menus", func(t *testing.T) {
		menuID := primitive.NewObjectID()
		require.NoError(t, repo.AddMenu(ctx, r.ID, menuID))

		stored, err := repo.GetByUser(ctx, owner)
		require.NoError(t, err)
		assert.True(t, stored.HasMenu(menuID))

		require.NoError(t, repo.RemoveMenu(ctx, r.ID, menuID))
		stored, err = repo.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.False(t, stored.HasMenu(menuID))
	})
}

func TestRestaurantRepository_RemoveDuplicatesIntegration(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	// Duplicates can only exist in a collection without the unique index.
	coll := storage.Database().Collection(database.CollectionRestaurants)
	require.NoError(t, coll.Drop(ctx))

	owner := primitive.NewObjectID()
	newest := primitive.NewObjectID()
	edited := primitive.NewObjectID()
	now := time.Now()
	_, err := coll.InsertMany(ctx, []interface{}{
		bson.M{"_id": primitive.NewObjectID(), "user": owner, "createdAt": now.Add(-48 * time.Hour), "lastUpdated": now.Add(-2 * time.Hour)},
		bson.M{"_id": newest, "user": owner, "createdAt": now, "lastUpdated": now.Add(-time.Hour)},
		// created earlier but edited last, still a duplicate
		bson.M{"_id": edited, "user": owner, "createdAt": now.Add(-24 * time.Hour), "lastUpdated": now},
		bson.M{"_id": primitive.NewObjectID(), "user": primitive.NewObjectID(), "createdAt": now, "lastUpdated": now},
	})
	require.NoError(t, err)

	repo := NewRestaurantRepository(storage.Database(), zerolog.Nop())
	removed, err := repo.RemoveDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	kept, err := repo.GetByUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, newest, kept.ID)

	_, err = repo.GetByID(ctx, edited)
	assert.ErrorIs(t, err, models.ErrRestaurantNotFound)

	require.NoError(t, storage.CreateIndexes(ctx))
}

func TestStorage_MigrateLegacyOrderFieldIntegration(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	restaurant := primitive.NewObjectID()
	coll := storage.Database().Collection(database.CollectionOrders)
	res, err := coll.InsertOne(ctx, bson.M{"resturant": restaurant, "status": "pending"})
	require.NoError(t, err)

	n, err := storage.MigrateLegacyOrderField(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	repo := NewOrderRepository(storage.Database(), zerolog.Nop())
	order, err := repo.GetByID(ctx, res.InsertedID.(primitive.ObjectID))
	require.NoError(t, err)
	assert.Equal(t, restaurant, order.Restaurant)
}

func TestOwnerRequestRepositoryIntegration(t *testing.T) {
	storage := setupTestStorage(t)
	repo := NewOwnerRequestRepository(storage.Database(), zerolog.Nop())
	ctx := context.Background()

	user := primitive.NewObjectID()
	req := &models.OwnerRequest{
		User:         user,
		Name:         "Jo",
		Email:        "jo@example.com",
		Status:       models.OwnerRequestPending,
		OTPHash:      "hash",
		OTPExpiresAt: time.Now().Add(10 * time.Minute),
	}
	require.NoError(t, repo.Create(ctx, req))

	req.Status = models.OwnerRequestVerified
	req.OTPHash = ""
	require.NoError(t, repo.Update(ctx, req))

	stored, err := repo.GetByUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.OwnerRequestVerified, stored.Status)
	assert.Empty(t, stored.OTPHash)

	verified, err := repo.List(ctx, models.OwnerRequestVerified)
	require.NoError(t, err)
	assert.Len(t, verified, 1)

	pending, err := repo.List(ctx, models.OwnerRequestPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, repo.Delete(ctx, req.ID))
	_, err = repo.GetByUser(ctx, user)
	assert.ErrorIs(t, err, models.ErrOwnerRequestNotFound)
}
