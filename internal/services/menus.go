package services

import (
	"context"
	"strings"

	"foodcart_back_end/internal/models"
	"foodcart_back_end/internal/repository"
	"foodcart_back_end/internal/storage"
	"foodcart_back_end/internal/validation"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type menuService struct {
	menus       repository.MenuRepository
	restaurants repository.RestaurantRepository
	users       repository.UserRepository
	images      storage.ImageStore
	logger      zerolog.Logger
}

func NewMenuService(
	menus repository.MenuRepository,
	restaurants repository.RestaurantRepository,
	users repository.UserRepository,
	images storage.ImageStore,
	logger zerolog.Logger,
) MenuService {
	return &menuService{
		menus:       menus,
		restaurants: restaurants,
		users:       users,
		images:      images,
		logger:      logger.With().Str("service", "menu").Logger(),
	}
}

func (s *menuService) ownRestaurant(ctx context.Context, actor models.Actor) (*models.Restaurant, error) {
	if err := requireOwner(ctx, s.users, actor); err != nil {
		return nil, err
	}
	return s.restaurants.GetByUser(ctx, actor.UserID)
}

func (s *menuService) Create(ctx context.Context, actor models.Actor, in models.MenuInput, image *models.Upload) (*models.Menu, error) {
	restaurant, err := s.ownRestaurant(ctx, actor)
	if err != nil {
		return nil, err
	}
	if errs := validation.ValidateMenuInput(in); len(errs) > 0 {
		return nil, badRequest("%s", strings.Join(errs, ", "))
	}
	if image == nil {
		return nil, models.ErrImageRequired
	}

	url, err := s.images.Upload(ctx, "menus", *image)
	if err != nil {
		return nil, err
	}

	menu := &models.Menu{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Image:       url,
	}
	if err := s.menus.Create(ctx, menu); err != nil {
		return nil, err
	}

	if err := s.restaurants.AddMenu(ctx, restaurant.ID, menu.ID); err != nil {
		if derr := s.menus.Delete(ctx, menu.ID); derr != nil {
			s.logger.Error().Err(derr).Str("menu_id", menu.ID.Hex()).Msg("failed to remove orphaned menu")
		}
		return nil, err
	}

	return menu, nil
}

func (s *menuService) Get(ctx context.Context, id string) (*models.Menu, error) {
	oid, err := parseID(id, models.ErrMenuNotFound)
	if err != nil {
		return nil, err
	}
	return s.menus.GetByID(ctx, oid)
}

func (s *menuService) owned(ctx context.Context, actor models.Actor, id string) (*models.Restaurant, primitive.ObjectID, error) {
	oid, err := parseID(id, models.ErrMenuNotFound)
	if err != nil {
		return nil, oid, err
	}
	restaurant, err := s.ownRestaurant(ctx, actor)
	if err != nil {
		return nil, oid, err
	}
	if !restaurant.HasMenu(oid) {
		return nil, oid, models.ErrMenuNotOwned
	}
	return restaurant, oid, nil
}

func (s *menuService) Update(ctx context.Context, actor models.Actor, id string, in models.MenuInput, image *models.Upload) (*models.Menu, error) {
	_, oid, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if errs := validation.ValidateMenuInput(in); len(errs) > 0 {
		return nil, badRequest("%s", strings.Join(errs, ", "))
	}

	menu, err := s.menus.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	menu.Name = strings.TrimSpace(in.Name)
	menu.Description = strings.TrimSpace(in.Description)
	menu.Price = in.Price

	if image != nil {
		url, err := s.images.Upload(ctx, "menus", *image)
		if err != nil {
			return nil, err
		}
		menu.Image = url
	}

	if err := s.menus.Update(ctx, menu); err != nil {
		return nil, err
	}
	return menu, nil
}

// Delete detaches the menu from the restaurant before removing it. Orders
// keep their own snapshot of the item.
func (s *menuService) Delete(ctx context.Context, actor models.Actor, id string) error {
	restaurant, oid, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.restaurants.RemoveMenu(ctx, restaurant.ID, oid); err != nil {
		return err
	}
	return s.menus.Delete(ctx, oid)
}
