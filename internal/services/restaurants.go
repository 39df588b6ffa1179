package services

import (
	"context"
	"errors"
	"strings"

	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/repository"
	"foodcart_back_end/internal/search"
	"foodcart_back_end/internal/storage"
	"foodcart_back_end/internal/validation"

	"github.com/rs/zerolog"
)

type restaurantService struct {
	restaurants repository.RestaurantRepository
	menus       repository.MenuRepository
	users       repository.UserRepository
	images      storage.ImageStore
	index       search.RestaurantIndex
	logger      zerolog.Logger
}

// NewRestaurantService builds the restaurant service. index may be nil, in
// which case search runs against MongoDB only.
func NewRestaurantService(
	restaurants repository.RestaurantRepository,
	menus repository.MenuRepository,
	users repository.UserRepository,
	images storage.ImageStore,
	index search.RestaurantIndex,
	logger zerolog.Logger,
) RestaurantService {
	return &restaurantService{
		restaurants: restaurants,
		menus:       menus,
		users:       users,
		images:      images,
		index:       index,
		logger:      logger.With().Str("service", "restaurant").Logger(),
	}
}

// requireOwner returns nil when the actor may manage a restaurant: an
// approved owner or a superadmin.
func requireOwner(ctx context.Context, users repository.UserRepository, actor models.Actor) error {
	if actor.IsSuperAdmin() {
		return nil
	}
	user, err := users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.ErrNotRestaurantOwner
		}
		return err
	}
	if !user.Admin {
		return models.ErrNotRestaurantOwner
	}
	return nil
}

func (s *restaurantService) Create(ctx context.Context, actor models.Actor, in models.RestaurantInput, image *models.Upload) (*models.Restaurant, error) {
	if err := requireOwner(ctx, s.users, actor); err != nil {
		return nil, err
	}
	if errs := validation.ValidateRestaurantInput(in); len(errs) > 0 {
		return nil, badRequest("%s", strings.Join(errs, ", "))
	}
	if image == nil {
		return nil, models.ErrImageRequired
	}

	if _, err := s.restaurants.GetByUser(ctx, actor.UserID); err == nil {
		return nil, models.ErrRestaurantExists
	} else if !errors.Is(err, models.ErrRestaurantNotFound) {
		return nil, err
	}

	url, err := s.images.Upload(ctx, "restaurants", *image)
	if err != nil {
		return nil, err
	}

	restaurant := &models.Restaurant{
		User:                  actor.UserID,
		RestaurantName:        strings.TrimSpace(in.RestaurantName),
		City:                  strings.TrimSpace(in.City),
		Country:               strings.TrimSpace(in.Country),
		DeliveryPrice:         in.DeliveryPrice,
		EstimatedDeliveryTime: in.EstimatedDeliveryTime,
		Cuisines:              validation.NormalizeCuisines(in.Cuisines),
		ImageURL:              url,
	}
	if err := s.restaurants.Create(ctx, restaurant); err != nil {
		return nil, err
	}

	s.reindex(ctx, restaurant)
	s.logger.Info().Str("restaurant_id", restaurant.ID.Hex()).Str("user_id", actor.UserID.Hex()).Msg("restaurant created")
	return restaurant, nil
}

func (s *restaurantService) Update(ctx context.Context, actor models.Actor, in models.RestaurantInput, image *models.Upload) (*models.Restaurant, error) {
	if err := requireOwner(ctx, s.users, actor); err != nil {
		return nil, err
	}
	if errs := validation.ValidateRestaurantInput(in); len(errs) > 0 {
		return nil, badRequest("%s", strings.Join(errs, ", "))
	}

	restaurant, err := s.restaurants.GetByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	restaurant.RestaurantName = strings.TrimSpace(in.RestaurantName)
	restaurant.City = strings.TrimSpace(in.City)
	restaurant.Country = strings.TrimSpace(in.Country)
	restaurant.DeliveryPrice = in.DeliveryPrice
	restaurant.EstimatedDeliveryTime = in.EstimatedDeliveryTime
	restaurant.Cuisines = validation.NormalizeCuisines(in.Cuisines)

	if image != nil {
		url, err := s.images.Upload(ctx, "restaurants", *image)
		if err != nil {
			return nil, err
		}
		restaurant.ImageURL = url
	}

	if err := s.restaurants.Update(ctx, restaurant); err != nil {
		return nil, err
	}

	s.reindex(ctx, restaurant)
	return restaurant, nil
}

func (s *restaurantService) reindex(ctx context.Context, r *models.Restaurant) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, r); err != nil {
		s.logger.Warn().Err(err).Str("restaurant_id", r.ID.Hex()).Msg("failed to index restaurant")
	}
}

func (s *restaurantService) Mine(ctx context.Context, actor models.Actor) (*models.RestaurantDetail, error) {
	restaurant, err := s.restaurants.GetByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, restaurant)
}

func (s *restaurantService) Get(ctx context.Context, id string) (*models.RestaurantDetail, error) {
	oid, err := parseID(id, models.ErrRestaurantNotFound)
	if err != nil {
		return nil, err
	}
	restaurant, err := s.restaurants.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, restaurant)
}

func (s *restaurantService) detail(ctx context.Context, r *models.Restaurant) (*models.RestaurantDetail, error) {
	menus, err := s.menus.ListByIDs(ctx, r.Menus)
	if err != nil {
		return nil, err
	}
	return &models.RestaurantDetail{Restaurant: *r, Menus: menus}, nil
}

func (s *restaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	return s.restaurants.List(ctx)
}

// Search asks the index first and loads the hits from MongoDB in index order.
// Any index failure falls back to the MongoDB query.
func (s *restaurantService) Search(ctx context.Context, q models.RestaurantSearch) (*models.RestaurantSearchResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = repository.DefaultPageSize
	}

	if s.index != nil {
		ids, total, err := s.index.Search(ctx, q)
		if err == nil {
			found, err := s.restaurants.ListByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			byID := make(map[string]models.Restaurant, len(found))
			for _, r := range found {
				byID[r.ID.Hex()] = r
			}
			data := make([]models.Restaurant, 0, len(ids))
			for _, id := range ids {
				if r, ok := byID[id.Hex()]; ok {
					data = append(data, r)
				}
			}
			return &models.RestaurantSearchResult{
				Data:       data,
				Pagination: repository.NewPagination(total, q.Page, q.PageSize),
			}, nil
		}
		s.logger.Warn().Err(err).Msg("search index unavailable, falling back to mongo")
	}

	return s.restaurants.Search(ctx, q)
}

func (s *restaurantService) RepairDuplicates(ctx context.Context) (int64, error) {
	removed, err := s.restaurants.RemoveDuplicates(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Warn().Int64("removed", removed).Msg("removed duplicate restaurants")
	}
	return removed, nil
}
