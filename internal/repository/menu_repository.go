package repository

import (
	"context"
	"errors"
	"time"

	"foodcart_back_end/internal/database"
	"foodcart_back_end/internal/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type menuRepository struct {
	collection *mongo.Collection
	logger     zerolog.Logger
}

func NewMenuRepository(db *mongo.Database, logger zerolog.Logger) MenuRepository {
	return &menuRepository{
		collection: db.Collection(database.CollectionMenus),
		logger:     logger.With().Str("repository", "menu").Logger(),
	}
}

func (r *menuRepository) Create(ctx context.Context, menu *models.Menu) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if menu.ID.IsZero() {
		menu.ID = primitive.NewObjectID()
	}
	menu.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, menu); err != nil {
		r.logger.Error().Err(err).Msg("failed to create menu")
		return storeErr("create menu", err)
	}
	return nil
}

func (r *menuRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Menu, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var menu models.Menu
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&menu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrMenuNotFound
		}
		return nil, storeErr("get menu", err)
	}
	return &menu, nil
}

func (r *menuRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Menu, error) {
	if len(ids) == 0 {
		return []models.Menu{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeErr("list menus", err)
	}

	var found []models.Menu
	if err := cursor.All(ctx, &found); err != nil {
		return nil, storeErr("decode menus", err)
	}

	// $in does not preserve order; keep the restaurant's ordering.
	byID := make(map[primitive.ObjectID]models.Menu, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	menus := make([]models.Menu, 0, len(found))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			menus = append(menus, m)
		}
	}
	return menus, nil
}

func (r *menuRepository) Update(ctx context.Context, menu *models.Menu) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":        menu.Name,
		"description": menu.Description,
		"price":       menu.Price,
		"image":       menu.Image,
	}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": menu.ID}, update)
	if err != nil {
		return storeErr("update menu", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrMenuNotFound
	}
	return nil
}

func (r *menuRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr("delete menu", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrMenuNotFound
	}
	return nil
}
