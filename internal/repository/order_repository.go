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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderRepository struct {
	collection *mongo.Collection
	logger     zerolog.Logger
}

func NewOrderRepository(db *mongo.Database, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		collection: db.Collection(database.CollectionOrders),
		logger:     logger.With().Str("repository", "order").Logger(),
	}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.Hex()).Msg("failed to create order")
		return storeErr("create order", err)
	}

	r.logger.Debug().Str("order_id", order.ID.Hex()).Msg("order created")
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var order models.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrOrderNotFound
		}
		return nil, storeErr("get order", err)
	}

	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.list(ctx, bson.M{"user": userID})
}

func (r *orderRepository) ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]models.Order, error) {
	return r.list(ctx, bson.M{"restaurant": restaurantID})
}

func (r *orderRepository) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("list orders", err)
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, storeErr("decode orders", err)
	}

	return orders, nil
}

func (r *orderRepository) ChangeStatus(ctx context.Context, sel OrderSelector, change StatusChange) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if sel.ID.IsZero() && sel.PaymentIntentID == "" {
		return nil, errors.New("change order status: order id or payment intent id is required")
	}

	filter := bson.M{}
	if !sel.ID.IsZero() {
		filter["_id"] = sel.ID
	}
	if !sel.UserID.IsZero() {
		filter["user"] = sel.UserID
	}
	if sel.PaymentIntentID != "" {
		filter["paymentIntentId"] = sel.PaymentIntentID
	}
	if len(change.From) > 0 {
		filter["status"] = bson.M{"$in": change.From}
	}

	set := bson.M{
		"status":    change.To,
		"updatedAt": time.Now().UTC(),
	}
	if change.TotalAmount != nil {
		set["totalAmount"] = *change.TotalAmount
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before models.Order
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("status", string(change.To)).Msg("failed to change order status")
		return nil, storeErr("change order status", err)
	}

	r.logger.Info().
		Str("order_id", before.ID.Hex()).
		Str("from", string(before.Status)).
		Str("to", string(change.To)).
		Msg("order status changed")

	return &before, nil
}

func (r *orderRepository) SetCheckoutSession(ctx context.Context, id primitive.ObjectID, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"checkoutSessionId": sessionID,
		"updatedAt":         time.Now().UTC(),
	}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return storeErr("set checkout session", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int64) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":    models.StatusPending,
		"createdAt": bson.M{"$lt": cutoff},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("list stale orders", err)
	}

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, storeErr("decode stale orders", err)
	}

	return orders, nil
}
