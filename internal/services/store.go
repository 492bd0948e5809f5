package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"apporbit/internal/models"
	"apporbit/internal/repository"
)

// The store contracts below are satisfied by the mongo repositories in
// internal/repository and by the in-process store in internal/repository/memory.

type ProductStore interface {
	Insert(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Find(ctx context.Context, q repository.ProductQuery) ([]models.Product, error)
	Count(ctx context.Context, q repository.ProductQuery) (int64, error)
	AddVoter(ctx context.Context, id primitive.ObjectID, voter string) (*models.Product, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error)
	SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	AppendReport(ctx context.Context, id primitive.ObjectID, report models.Report) (bool, error)
}

type ReportStore interface {
	Insert(ctx context.Context, report *models.Report) error
	DeleteByProduct(ctx context.Context, productID string) (int64, error)
}

type ReviewStore interface {
	Insert(ctx context.Context, review *models.Review) error
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
	Count(ctx context.Context) (int64, error)
}

type UserStore interface {
	Upsert(ctx context.Context, email string, profile models.UserProfile, now time.Time) (models.UpsertResult, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role string, now time.Time) (bool, error)
	SetSubscribed(ctx context.Context, email string, now time.Time) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type CouponStore interface {
	Insert(ctx context.Context, coupon *models.Coupon) error
	FindValidByCode(ctx context.Context, code string, now time.Time) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	ListValid(ctx context.Context, now time.Time) ([]models.Coupon, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.CouponPatch) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Transactor runs fn atomically when the backing store supports it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock returns the current instant. Services take one so tests can pin time.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// parseObjectID returns the id or false when hex is not a well-formed ObjectID.
func parseObjectID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
