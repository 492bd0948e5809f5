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

type ProductRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewProductRepository(db *mongo.Database, timeout time.Duration) *ProductRepository {
	return &ProductRepository{
		collection: db.Collection("products"),
		timeout:    timeout,
	}
}

// Insert stores a new product and assigns its id.
func (r *ProductRepository) Insert(ctx context.Context, product *models.Product) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, product)
	return translateError(err)
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

func (r *ProductRepository) Find(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(productSort(q.Sort))
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := r.collection.Find(ctx, productFilter(q), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Count ignores the paging and sort fields of q.
func (r *ProductRepository) Count(ctx context.Context, q ProductQuery) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, productFilter(q))
}

// AddVoter increments upvotes and records voter in a single conditional update.
// ErrNotFound means either the product does not exist or voter already voted.
func (r *ProductRepository) AddVoter(ctx context.Context, id primitive.ObjectID, voter string) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"voters": bson.M{"$ne": voter},
	}
	update := bson.M{
		"$inc":  bson.M{"upvotes": 1},
		"$push": bson.M{"voters": voter},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&product); err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// TransitionStatus moves a product from one status to another.
// It reports false when no product with that id is in status from.
func (r *ProductRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *ProductRepository) SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isFeatured": featured}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": patchFields(patch)},
		opts,
	).Decode(&product)
	if err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

func patchFields(patch models.ProductPatch) bson.M {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Tags != nil {
		set["tags"] = models.StringList(*patch.Tags)
	}
	if patch.ExternalLink != nil {
		set["externalLink"] = *patch.ExternalLink
	}
	return set
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// AppendReport pushes report onto the product unless its reporter already has one there.
// It reports false when nothing matched (missing product or duplicate reporter).
func (r *ProductRepository) AppendReport(ctx context.Context, id primitive.ObjectID, report models.Report) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":                id,
			"reports.reporterId": bson.M{"$ne": report.ReporterID},
		},
		bson.M{"$push": bson.M{"reports": report}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}
