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

type ownerRequestRepository struct {
	collection *mongo.Collection
	logger     zerolog.Logger
}

func NewOwnerRequestRepository(db *mongo.Database, logger zerolog.Logger) OwnerRequestRepository {
	return &ownerRequestRepository{
		collection: db.Collection(database.CollectionOwnerRequests),
		logger:     logger.With().Str("repository", "owner_request").Logger(),
	}
}

func (r *ownerRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.OwnerRequest, error) {
	return r.findOne(ctx, bson.M{"_id": id}, nil)
}

// GetByUser returns the user's most recent request.
func (r *ownerRequestRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.OwnerRequest, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findOne(ctx, bson.M{"user": userID}, opts)
}

func (r *ownerRequestRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.OwnerRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.OwnerRequest
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrOwnerRequestNotFound
		}
		return nil, storeErr("get owner request", err)
	}
	return &req, nil
}

// List returns requests newest first, restricted to status when it is set.
func (r *ownerRequestRepository) List(ctx context.Context, status models.OwnerRequestStatus) ([]models.OwnerRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, storeErr("list owner requests", err)
	}

	requests := []models.OwnerRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, storeErr("decode owner requests", err)
	}
	return requests, nil
}

func (r *ownerRequestRepository) Create(ctx context.Context, req *models.OwnerRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	req.CreatedAt = now
	req.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, req); err != nil {
		r.logger.Error().Err(err).Str("user_id", req.User.Hex()).Msg("failed to create owner request")
		return storeErr("create owner request", err)
	}
	return nil
}

func (r *ownerRequestRepository) Update(ctx context.Context, req *models.OwnerRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req.UpdatedAt = time.Now().UTC()

	set := bson.M{
		"status":    req.Status,
		"updatedAt": req.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if req.OTPHash == "" {
		update["$unset"] = bson.M{"otpHash": "", "otpExpiresAt": ""}
	} else {
		set["otpHash"] = req.OTPHash
		set["otpExpiresAt"] = req.OTPExpiresAt
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": req.ID}, update)
	if err != nil {
		return storeErr("update owner request", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrOwnerRequestNotFound
	}
	return nil
}

func (r *ownerRequestRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storeErr("delete owner request", err)
	}
	return nil
}
