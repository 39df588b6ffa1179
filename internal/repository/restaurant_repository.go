package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"foodcart_back_end/internal/database"
	"foodcart_back_end/internal/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultPageSize = 10

type restaurantRepository struct {
	collection *mongo.Collection
	logger     zerolog.Logger
}

func NewRestaurantRepository(db *mongo.Database, logger zerolog.Logger) RestaurantRepository {
	return &restaurantRepository{
		collection: db.Collection(database.CollectionRestaurants),
		logger:     logger.With().Str("repository", "restaurant").Logger(),
	}
}

func (r *restaurantRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, storeErr("count restaurants", err)
	}
	return n > 0, nil
}

func (r *restaurantRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *restaurantRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Restaurant, error) {
	return r.findOne(ctx, bson.M{"user": userID})
}

func (r *restaurantRepository) findOne(ctx context.Context, filter bson.M) (*models.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var restaurant models.Restaurant
	if err := r.collection.FindOne(ctx, filter).Decode(&restaurant); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrRestaurantNotFound
		}
		return nil, storeErr("get restaurant", err)
	}
	return &restaurant, nil
}

func (r *restaurantRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Restaurant, error) {
	if len(ids) == 0 {
		return []models.Restaurant{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (r *restaurantRepository) List(ctx context.Context) ([]models.Restaurant, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "lastUpdated", Value: -1}}))
}

func (r *restaurantRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("list restaurants", err)
	}

	restaurants := []models.Restaurant{}
	if err := cursor.All(ctx, &restaurants); err != nil {
		return nil, storeErr("decode restaurants", err)
	}
	return restaurants, nil
}

func (r *restaurantRepository) Search(ctx context.Context, q models.RestaurantSearch) (*models.RestaurantSearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := SearchFilter(q)
	page, pageSize := normalizePage(q.Page, q.PageSize)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, storeErr("count restaurants", err)
	}

	opts := options.Find().
		SetSort(SearchSort(q.SortOption)).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("search restaurants", err)
	}

	restaurants := []models.Restaurant{}
	if err := cursor.All(ctx, &restaurants); err != nil {
		return nil, storeErr("decode restaurants", err)
	}

	return &models.RestaurantSearchResult{
		Data:       restaurants,
		Pagination: NewPagination(total, page, pageSize),
	}, nil
}

// SearchFilter builds the storefront filter: the location matches city or
// country, the query matches the name or any cuisine, and every selected
// cuisine must be present. Matching is case-insensitive.
func SearchFilter(q models.RestaurantSearch) bson.M {
	var and []bson.M

	if q.City != "" {
		loc := ciRegex(q.City)
		and = append(and, bson.M{"$or": []bson.M{{"city": loc}, {"country": loc}}})
	}

	if q.Query != "" {
		text := ciRegex(q.Query)
		and = append(and, bson.M{"$or": []bson.M{
			{"restaurantName": text},
			{"cuisines": bson.M{"$in": []primitive.Regex{text}}},
		}})
	}

	if len(q.Cuisines) > 0 {
		all := make([]primitive.Regex, 0, len(q.Cuisines))
		for _, c := range q.Cuisines {
			all = append(all, primitive.Regex{Pattern: "^" + regexp.QuoteMeta(c) + "$", Options: "i"})
		}
		and = append(and, bson.M{"cuisines": bson.M{"$all": all}})
	}

	if len(and) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": and}
}

// SearchSort maps a sort option to a sort document. Unknown options sort by
// most recently updated.
func SearchSort(option string) bson.D {
	switch option {
	case "deliveryPrice", "estimatedDeliveryTime", "restaurantName":
		return bson.D{{Key: option, Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "lastUpdated", Value: -1}, {Key: "_id", Value: 1}}
	}
}

func NewPagination(total int64, page, pageSize int) models.Pagination {
	return models.Pagination{
		Total: total,
		Page:  page,
		Pages: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

func ciRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func (r *restaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	if restaurant.ID.IsZero() {
		restaurant.ID = primitive.NewObjectID()
	}
	if restaurant.Menus == nil {
		restaurant.Menus = []primitive.ObjectID{}
	}
	restaurant.CreatedAt = now
	restaurant.LastUpdated = now

	if _, err := r.collection.InsertOne(ctx, restaurant); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrRestaurantExists
		}
		r.logger.Error().Err(err).Str("user_id", restaurant.User.Hex()).Msg("failed to create restaurant")
		return storeErr("create restaurant", err)
	}

	return nil
}

func (r *restaurantRepository) Update(ctx context.Context, restaurant *models.Restaurant) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	restaurant.LastUpdated = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"restaurantName":        restaurant.RestaurantName,
		"city":                  restaurant.City,
		"country":               restaurant.Country,
		"deliveryPrice":         restaurant.DeliveryPrice,
		"estimatedDeliveryTime": restaurant.EstimatedDeliveryTime,
		"cuisines":              restaurant.Cuisines,
		"imageUrl":              restaurant.ImageURL,
		"lastUpdated":           restaurant.LastUpdated,
	}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": restaurant.ID}, update)
	if err != nil {
		return storeErr("update restaurant", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrRestaurantNotFound
	}
	return nil
}

func (r *restaurantRepository) AddMenu(ctx context.Context, restaurantID, menuID primitive.ObjectID) error {
	return r.updateMenus(ctx, restaurantID, bson.M{"$addToSet": bson.M{"menus": menuID}})
}

func (r *restaurantRepository) RemoveMenu(ctx context.Context, restaurantID, menuID primitive.ObjectID) error {
	return r.updateMenus(ctx, restaurantID, bson.M{"$pull": bson.M{"menus": menuID}})
}

func (r *restaurantRepository) updateMenus(ctx context.Context, restaurantID primitive.ObjectID, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update["$set"] = bson.M{"lastUpdated": time.Now().UTC()}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": restaurantID}, update)
	if err != nil {
		return storeErr("update restaurant menus", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrRestaurantNotFound
	}
	return nil
}

func (r *restaurantRepository) RemoveDuplicates(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user"},
			{Key: "ids", Value: bson.D{{Key: "$push", Value: "$_id"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "count", Value: bson.D{{Key: "$gt", Value: 1}}}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, storeErr("find duplicate restaurants", err)
	}

	var groups []struct {
		User primitive.ObjectID   `bson:"_id"`
		IDs  []primitive.ObjectID `bson:"ids"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return 0, storeErr("decode duplicate restaurants", err)
	}

	var stale []primitive.ObjectID
	for _, g := range groups {
		stale = append(stale, g.IDs[1:]...)
		r.logger.Warn().
			Str("user_id", g.User.Hex()).
			Str("kept", g.IDs[0].Hex()).
			Int("removed", len(g.IDs)-1).
			Msg("removing duplicate restaurants")
	}
	if len(stale) == 0 {
		return 0, nil
	}

	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": stale}})
	if err != nil {
		return 0, storeErr("delete duplicate restaurants", err)
	}
	return res.DeletedCount, nil
}
