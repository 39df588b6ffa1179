package history

import (
	"context"
	"fmt"
	"time"

	"foodcart_back_end/internal/database"
	"foodcart_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is used when no Scylla cluster is configured.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(database.CollectionOrderHistory)}
}

func (s *MongoStore) Append(ctx context.Context, e models.OrderEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("append order history: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, orderID string) ([]models.OrderEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := s.collection.Find(ctx, bson.M{"orderId": orderID},
		options.Find().SetSort(bson.D{{Key: "at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list order history: %w", err)
	}

	events := []models.OrderEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode order history: %w", err)
	}
	return events, nil
}
