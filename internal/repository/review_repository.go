package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"apporbit/internal/models"
)

type ReviewRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewReviewRepository(db *mongo.Database, timeout time.Duration) *ReviewRepository {
	return &ReviewRepository{
		collection: db.Collection("reviews"),
		timeout:    timeout,
	}
}

func (r *ReviewRepository) Insert(ctx context.Context, review *models.Review) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, review)
	return translateError(err)
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"productId": productID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := make([]models.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{})
}
