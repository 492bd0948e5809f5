package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureIndexes creates every index the repositories rely on. Failures are
// returned per collection so startup can log them and carry on.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) []error {
	var errs []error
	for _, ensure := range []func(context.Context, *mongo.Database, *zap.Logger) error{
		EnsureProductIndexes,
		EnsureUserIndexes,
		EnsureReportIndexes,
		EnsureReviewIndexes,
		EnsureCouponIndexes,
	} {
		if err := ensure(ctx, db, log); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func createIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger, collection string, models ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		log.Warn("index creation failed", zap.String("collection", collection), zap.Error(err))
		return fmt.Errorf("%s indexes: %w", collection, err)
	}
	log.Info("indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
	return nil
}

func EnsureProductIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return createIndexes(ctx, db, log, "products",
		mongo.IndexModel{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("status_timestamp"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "upvotes", Value: -1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("upvotes_timestamp"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "owner.email", Value: 1}},
			Options: options.Index().SetName("owner_email"),
		},
	)
}

func EnsureUserIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return createIndexes(ctx, db, log, "users",
		mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	)
}

// EnsureReportIndexes makes the (productId, reporterId) pair unique in the standalone
// collection, backing the one-report-per-reporter rule at the store level.
func EnsureReportIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return createIndexes(ctx, db, log, "reports",
		mongo.IndexModel{
			Keys:    bson.D{{Key: "productId", Value: 1}, {Key: "reporterId", Value: 1}},
			Options: options.Index().SetName("product_reporter_unique").SetUnique(true),
		},
	)
}

func EnsureReviewIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return createIndexes(ctx, db, log, "reviews",
		mongo.IndexModel{
			Keys:    bson.D{{Key: "productId", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("product_timestamp"),
		},
	)
}

func EnsureCouponIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return createIndexes(ctx, db, log, "coupons",
		mongo.IndexModel{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName("code_unique").SetUnique(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "expiry", Value: 1}},
			Options: options.Index().SetName("expiry"),
		},
	)
}
