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

type CouponRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewCouponRepository(db *mongo.Database, timeout time.Duration) *CouponRepository {
	return &CouponRepository{
		collection: db.Collection("coupons"),
		timeout:    timeout,
	}
}

func (r *CouponRepository) Insert(ctx context.Context, coupon *models.Coupon) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if coupon.ID.IsZero() {
		coupon.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, coupon)
	return translateError(err)
}

// FindValidByCode returns the coupon with code whose expiry is not before now.
func (r *CouponRepository) FindValidByCode(ctx context.Context, code string, now time.Time) (*models.Coupon, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var coupon models.Coupon
	filter := bson.M{
		"code":   code,
		"expiry": bson.M{"$gte": now},
	}
	if err := r.collection.FindOne(ctx, filter).Decode(&coupon); err != nil {
		return nil, translateError(err)
	}
	return &coupon, nil
}

func (r *CouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	return r.find(ctx, bson.M{})
}

func (r *CouponRepository) ListValid(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	return r.find(ctx, bson.M{"expiry": bson.M{"$gte": now}})
}

func (r *CouponRepository) find(ctx context.Context, filter bson.M) ([]models.Coupon, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "expiry", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	coupons := make([]models.Coupon, 0)
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *CouponRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.CouponPatch) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{}
	if patch.Code != nil {
		set["code"] = *patch.Code
	}
	if patch.DiscountPercentage != nil {
		set["discountPercentage"] = *patch.DiscountPercentage
	}
	if patch.Expiry != nil {
		set["expiry"] = *patch.Expiry
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return false, translateError(err)
	}
	return result.MatchedCount > 0, nil
}

func (r *CouponRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
