package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

const defaultTimeout = 5 * time.Second

// ProductSort selects the ordering of product listings.
type ProductSort int

const (
	// SortRecent orders by timestamp, newest first.
	SortRecent ProductSort = iota
	// SortTrending orders by upvotes, then newest first.
	SortTrending
)

// ProductQuery is the store-neutral description of a product listing.
// Zero values mean "no constraint".
type ProductQuery struct {
	Status       string
	OwnerEmail   string
	FeaturedOnly bool
	ReportedOnly bool
	Search       string
	Sort         ProductSort
	Skip         int64
	Limit        int64
}

func productFilter(q ProductQuery) bson.M {
	filter := bson.M{}

	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.OwnerEmail != "" {
		filter["owner.email"] = q.OwnerEmail
	}
	if q.FeaturedOnly {
		filter["isFeatured"] = true
	}
	if q.ReportedOnly {
		filter["reports.0"] = bson.M{"$exists": true}
	}
	if q.Search != "" {
		pattern := regexp.QuoteMeta(q.Search)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"tags": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	return filter
}

func productSort(sort ProductSort) bson.D {
	if sort == SortTrending {
		return bson.D{{Key: "upvotes", Value: -1}, {Key: "timestamp", Value: -1}}
	}
	return bson.D{{Key: "timestamp", Value: -1}}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(ErrDuplicateKey, err)
	default:
		return err
	}
}
