package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	CollectionOrders        = "orders"
	CollectionRestaurants   = "restaurants"
	CollectionMenus         = "menus"
	CollectionUsers         = "users"
	CollectionOwnerRequests = "ownerrequests"
	CollectionOrderHistory  = "orderhistory"
)

type Storage struct {
	client   *mongo.Client
	database *mongo.Database
	config   MongoConfig
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

func NewMongo(cfg MongoConfig) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Storage{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Storage) Database() *mongo.Database {
	return s.database
}

// CreateIndexes must run after duplicate restaurants have been repaired,
// otherwise the unique index on restaurants.user cannot be built.
func (s *Storage) CreateIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionRestaurants: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "city", Value: 1}}},
			{Keys: bson.D{{Key: "lastUpdated", Value: -1}}},
		},
		CollectionOrders: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "restaurant", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "paymentIntentId", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		CollectionOwnerRequests: {
			{Keys: bson.D{{Key: "user", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		CollectionOrderHistory: {
			{Keys: bson.D{{Key: "orderId", Value: 1}, {Key: "at", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := s.database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}

	return nil
}

// MigrateLegacyOrderField renames the misspelled "resturant" field that older
// orders were written with. It returns the number of orders rewritten.
func (s *Storage) MigrateLegacyOrderField(ctx context.Context) (int64, error) {
	filter := bson.M{
		"resturant":  bson.M{"$exists": true},
		"restaurant": bson.M{"$exists": false},
	}
	update := bson.M{"$rename": bson.M{"resturant": "restaurant"}}

	res, err := s.database.Collection(CollectionOrders).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to migrate legacy order field: %w", err)
	}

	// Orders carrying both spellings keep the correct one.
	cleanup := bson.M{"$unset": bson.M{"resturant": ""}}
	if _, err := s.database.Collection(CollectionOrders).UpdateMany(ctx, bson.M{"resturant": bson.M{"$exists": true}}, cleanup); err != nil {
		return res.ModifiedCount, fmt.Errorf("failed to drop legacy order field: %w", err)
	}

	return res.ModifiedCount, nil
}
