package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"foodcart_back_end/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func restaurantInput() models.RestaurantInput {
	return models.RestaurantInput{
		RestaurantName:        " Luigi's ",
		City:                  "Naples",
		Country:               "Italy",
		DeliveryPrice:         2.5,
		EstimatedDeliveryTime: 30,
		Cuisines:              []string{"Pizza, Pasta", "pizza"},
	}
}

func pngUpload() *models.Upload {
	return &models.Upload{Filename: "logo.png", ContentType: "image/png", Size: 4, Body: strings.NewReader("\x89PNG")}
}

func TestRestaurantService_Create(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: primitive.NewObjectID()}

	t.Run("Success", func(t *testing.T) {
		restaurants := new(MockRestaurantRepository)
		users := new(MockUserRepository)
		images := new(MockImageStore)
		index := new(MockIndex)
		svc := NewRestaurantService(restaurants, new(MockMenuRepository), users, images, index, zerolog.Nop())

		users.On("GetByID", ctx, actor.UserID).Return(&models.User{ID: actor.UserID, Admin: true}, nil)
		restaurants.On("GetByUser", ctx, actor.UserID).Return(nil, models.ErrRestaurantNotFound)
		images.On("Upload", ctx, "restaurants", mock.Anything).Return("https://img.example.com/r.png", nil)
		restaurants.On("Create", ctx, mock.MatchedBy(func(r *models.Restaurant) bool {
			return r.RestaurantName == "Luigi's" && len(r.Cuisines) == 2 && r.ImageURL == "https://img.example.com/r.png"
		})).Return(nil)
		index.On("Index", ctx, mock.Anything).Return(errors.New("es down"))

		r, err := svc.Create(ctx, actor, restaurantInput(), pngUpload())

		require.NoError(t, err)
		assert.Equal(t, []string{"Pizza", "Pasta"}, r.Cuisines)
		restaurants.AssertExpectations(t)
		index.AssertExpectations(t)
	})

	t.Run("Not an owner", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewRestaurantService(new(MockRestaurantRepository), new(MockMenuRepository), users, new(MockImageStore), nil, zerolog.Nop())
		users.On("GetByID", ctx, actor.UserID).Return(&models.User{ID: actor.UserID}, nil)

		_, err := svc.Create(ctx, actor, restaurantInput(), pngUpload())
		assert.ErrorIs(t, err, models.ErrNotRestaurantOwner)
	})

	t.Run("Already has a restaurant", func(t *testing.T) {
		restaurants := new(MockRestaurantRepository)
		users := new(MockUserRepository)
		svc := NewRestaurantService(restaurants, new(MockMenuRepository), users, new(MockImageStore), nil, zerolog.Nop())
		users.On("GetByID", ctx, actor.UserID).Return(&models.User{ID: actor.UserID, Admin: true}, nil)
		restaurants.On("GetByUser", ctx, actor.UserID).Return(&models.Restaurant{ID: primitive.NewObjectID()}, nil)

		_, err := svc.Create(ctx, actor, restaurantInput(), pngUpload())
		assert.ErrorIs(t, err, models.ErrRestaurantExists)
	})

	t.Run("Validation errors are joined", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewRestaurantService(new(MockRestaurantRepository), new(MockMenuRepository), users, new(MockImageStore), nil, zerolog.Nop())
		users.On("GetByID", ctx, actor.UserID).Return(&models.User{ID: actor.UserID, Admin: true}, nil)

		in := restaurantInput()
		in.City = ""
		in.Cuisines = nil
		_, err := svc.Create(ctx, actor, in, pngUpload())

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Status)
		assert.Equal(t, "City is required, Cuisines array cannot be empty", appErr.Message)
	})

	t.Run("Image is required", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewRestaurantService(new(MockRestaurantRepository), new(MockMenuRepository), users, new(MockImageStore), nil, zerolog.Nop())
		users.On("GetByID", ctx, actor.UserID).Return(&models.User{ID: actor.UserID, Admin: true}, nil)

		_, err := svc.Create(ctx, actor, restaurantInput(), nil)
		assert.ErrorIs(t, err, models.ErrImageRequired)
	})
}

func TestRestaurantService_Update_KeepsImage(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: primitive.NewObjectID(), Role: models.RoleSuperAdmin}
	restaurants := new(MockRestaurantRepository)
	images := new(MockImageStore)
	svc := NewRestaurantService(restaurants, new(MockMenuRepository), new(MockUserRepository), images, nil, zerolog.Nop())

	existing := &models.Restaurant{ID: primitive.NewObjectID(), User: actor.UserID, ImageURL: "https://img.example.com/old.png"}
	restaurants.On("GetByUser", ctx, actor.UserID).Return(existing, nil)
	restaurants.On("Update", ctx, existing).Return(nil)

	r, err := svc.Update(ctx, actor, restaurantInput(), nil)

	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/old.png", r.ImageURL)
	assert.Equal(t, "Naples", r.City)
	images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestRestaurantService_Get(t *testing.T) {
	ctx := context.Background()
	restaurants := new(MockRestaurantRepository)
	menus := new(MockMenuRepository)
	svc := NewRestaurantService(restaurants, menus, new(MockUserRepository), new(MockImageStore), nil, zerolog.Nop())

	menu := models.Menu{ID: primitive.NewObjectID(), Name: "Margherita"}
	restaurant := &models.Restaurant{ID: primitive.NewObjectID(), Menus: []primitive.ObjectID{menu.ID}}
	restaurants.On("GetByID", ctx, restaurant.ID).Return(restaurant, nil)
	menus.On("ListByIDs", ctx, restaurant.Menus).Return([]models.Menu{menu}, nil)

	detail, err := svc.Get(ctx, restaurant.ID.Hex())
	require.NoError(t, err)
	require.Len(t, detail.Menus, 1)
	assert.Equal(t, "Margherita", detail.Menus[0].Name)

	_, err = svc.Get(ctx, "not-an-id")
	assert.ErrorIs(t, err, models.ErrRestaurantNotFound)
}

func TestRestaurantService_Search(t *testing.T) {
	ctx := context.Background()
	a := models.Restaurant{ID: primitive.NewObjectID(), RestaurantName: "A"}
	b := models.Restaurant{ID: primitive.NewObjectID(), RestaurantName: "B"}
	q := models.RestaurantSearch{City: "naples", Page: 1, PageSize: 10}

	t.Run("Index hits keep their order", func(t *testing.T) {
		restaurants := new(MockRestaurantRepository)
		index := new(MockIndex)
		svc := NewRestaurantService(restaurants, new(MockMenuRepository), new(MockUserRepository), new(MockImageStore), index, zerolog.Nop())

		index.On("Search", ctx, q).Return([]primitive.ObjectID{b.ID, a.ID}, int64(12), nil)
		restaurants.On("ListByIDs", ctx, []primitive.ObjectID{b.ID, a.ID}).Return([]models.Restaurant{a, b}, nil)

		res, err := svc.Search(ctx, q)

		require.NoError(t, err)
		require.Len(t, res.Data, 2)
		assert.Equal(t, "B", res.Data[0].RestaurantName)
		assert.Equal(t, models.Pagination{Total: 12, Page: 1, Pages: 2}, res.Pagination)
		restaurants.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("Falls back to mongo when the index fails", func(t *testing.T) {
		restaurants := new(MockRestaurantRepository)
		index := new(MockIndex)
		svc := NewRestaurantService(restaurants, new(MockMenuRepository), new(MockUserRepository), new(MockImageStore), index, zerolog.Nop())

		want := &models.RestaurantSearchResult{Data: []models.Restaurant{a}, Pagination: models.Pagination{Total: 1, Page: 1, Pages: 1}}
		index.On("Search", ctx, q).Return(nil, int64(0), errors.New("connection refused"))
		restaurants.On("Search", ctx, q).Return(want, nil)

		res, err := svc.Search(ctx, q)

		require.NoError(t, err)
		assert.Equal(t, want, res)
	})
}
