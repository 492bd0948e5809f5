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

type UserRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewUserRepository(db *mongo.Database, timeout time.Duration) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
		timeout:    timeout,
	}
}

// Upsert creates the user on first sight and replaces profile fields afterwards.
// Role and subscription are only initialized on insert.
func (r *UserRepository) Upsert(ctx context.Context, email string, profile models.UserProfile, now time.Time) (models.UpsertResult, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{"updatedAt": now}
	if profile.Name != "" {
		set["name"] = profile.Name
	}
	if profile.PhotoURL != "" {
		set["photoURL"] = profile.PhotoURL
	}
	if profile.UID != "" {
		set["uid"] = profile.UID
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"role":         models.RoleUser,
			"isSubscribed": false,
			"createdAt":    now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return models.UpsertResult{}, translateError(err)
	}
	return models.UpsertResult{
		Matched:  result.MatchedCount,
		Modified: result.ModifiedCount,
		Upserted: result.UpsertedCount > 0,
	}, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) SetRole(ctx context.Context, id primitive.ObjectID, role string, now time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updatedAt": now}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *UserRepository) SetSubscribed(ctx context.Context, email string, now time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"isSubscribed": true, "updatedAt": now}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{})
}
