package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"apporbit/internal/models"
)

type ReportRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewReportRepository(db *mongo.Database, timeout time.Duration) *ReportRepository {
	return &ReportRepository{
		collection: db.Collection("reports"),
		timeout:    timeout,
	}
}

func (r *ReportRepository) Insert(ctx context.Context, report *models.Report) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, report)
	return translateError(err)
}

func (r *ReportRepository) DeleteByProduct(ctx context.Context, productID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"productId": productID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *ReportRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"productId": productID})
}
