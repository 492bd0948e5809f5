package repository

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"apporbit/internal/database"
	"apporbit/internal/models"
)

var testClient *mongo.Client

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		return nil, err
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		return container.Terminate, err
	}

	testClient, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return container.Terminate, err
	}
	return container.Terminate, nil
}

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		os.Exit(m.Run())
	}

	terminate, err := startContainer()
	if err != nil {
		log.Printf("mongo integration tests disabled: %v", err)
		testClient = nil
	}

	code := m.Run()

	if testClient != nil {
		_ = testClient.Disconnect(context.Background())
	}
	if terminate != nil {
		if err := terminate(context.Background()); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
	os.Exit(code)
}

// startContainer turns a missing Docker daemon, which testcontainers reports by panicking,
// into an ordinary error.
func startContainer() (terminate func(context.Context, ...testcontainers.TerminateOption) error, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker unavailable: %v", r)
		}
	}()
	return setupTestDB()
}

// freshDB returns an isolated database with the production indexes applied.
func freshDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testClient == nil {
		t.Skip("mongo container not available")
	}

	db := testClient.Database("apporbit_" + uuid.NewString()[:8])
	t.Cleanup(func() { _ = db.Drop(context.Background()) })

	errs := database.EnsureIndexes(context.Background(), db, zap.NewNop())
	require.Empty(t, errs)
	return db
}

func insertProduct(t *testing.T, repo *ProductRepository, name, status string, upvotes int, at time.Time) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:      name,
		Tags:      models.StringList{"devtools"},
		Owner:     models.Owner{Name: "Owner", Email: "owner@example.com"},
		Status:    status,
		Upvotes:   upvotes,
		Voters:    []string{},
		Reports:   []models.Report{},
		Timestamp: at,
	}
	require.NoError(t, repo.Insert(context.Background(), p))
	require.False(t, p.ID.IsZero())
	return p
}

func TestMongoAddVoterIsConditional(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo := NewProductRepository(db, time.Second)
	p := insertProduct(t, repo, "Voted", models.StatusApproved, 0, time.Now())

	updated, err := repo.AddVoter(ctx, p.ID, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Upvotes)
	assert.Equal(t, []string{"a@example.com"}, updated.Voters)

	_, err = repo.AddVoter(ctx, p.ID, "a@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.AddVoter(ctx, primitive.NewObjectID(), "a@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoConcurrentVotesCountOnce(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo := NewProductRepository(db, 5*time.Second)
	p := insertProduct(t, repo, "Race", models.StatusApproved, 0, time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.AddVoter(ctx, p.ID, "same@example.com")
		}()
	}
	wg.Wait()

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Upvotes)
	assert.Len(t, got.Voters, 1)
}

func TestMongoTransitionStatusOnlyFromExpected(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo := NewProductRepository(db, time.Second)
	p := insertProduct(t, repo, "Pending", models.StatusPending, 0, time.Now())

	ok, err := repo.TransitionStatus(ctx, p.ID, models.StatusPending, models.StatusApproved)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionStatus(ctx, p.ID, models.StatusPending, models.StatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestMongoFindAndCount(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo := NewProductRepository(db, time.Second)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	insertProduct(t, repo, "Alpha Notes", models.StatusApproved, 3, base)
	insertProduct(t, repo, "Beta Board", models.StatusApproved, 9, base.Add(time.Hour))
	insertProduct(t, repo, "Gamma Notes", models.StatusApproved, 3, base.Add(2*time.Hour))
	insertProduct(t, repo, "Hidden Notes", models.StatusPending, 50, base)

	trending, err := repo.Find(ctx, ProductQuery{Status: models.StatusApproved, Sort: SortTrending, Limit: 2})
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, "Beta Board", trending[0].Name)
	assert.Equal(t, "Gamma Notes", trending[1].Name)

	search := ProductQuery{Status: models.StatusApproved, Search: "notes"}
	found, err := repo.Find(ctx, search)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	count, err := repo.Count(ctx, search)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	paged, err := repo.Find(ctx, ProductQuery{Status: models.StatusApproved, Skip: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "Alpha Notes", paged[0].Name)
}

func TestMongoDecodesLegacyTagString(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo := NewProductRepository(db, time.Second)

	id := primitive.NewObjectID()
	_, err := db.Collection("products").InsertOne(ctx, bson.M{
		"_id":    id,
		"name":   "Legacy",
		"tags":   "ai, web",
		"status": models.StatusApproved,
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"ai", "web"}, got.Tags)
}

func TestMongoAppendReportOncePerReporter(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	products := NewProductRepository(db, time.Second)
	reports := NewReportRepository(db, time.Second)
	p := insertProduct(t, products, "Reported", models.StatusApproved, 0, time.Now())

	report := models.Report{
		ID:         primitive.NewObjectID(),
		ProductID:  p.ID.Hex(),
		ReporterID: "r@example.com",
		Reason:     models.DefaultReportReason,
		Status:     models.ReportStatusPending,
		Timestamp:  time.Now().UTC(),
	}

	ok, err := products.AppendReport(ctx, p.ID, report)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, reports.Insert(ctx, &report))

	ok, err = products.AppendReport(ctx, p.ID, report)
	require.NoError(t, err)
	assert.False(t, ok)

	again := report
	again.ID = primitive.NewObjectID()
	assert.ErrorIs(t, reports.Insert(ctx, &again), ErrDuplicateKey)

	reported, err := products.Find(ctx, ProductQuery{ReportedOnly: true})
	require.NoError(t, err)
	require.Len(t, reported, 1)
	assert.Equal(t, p.ID, reported[0].ID)

	count, err := reports.CountByProduct(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	deleted, err := reports.DeleteByProduct(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	count, err = reports.CountByProduct(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMongoUserUpsertKeepsRole(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db, time.Second)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	res, err := repo.Upsert(ctx, "u@example.com", models.UserProfile{Name: "First"}, now)
	require.NoError(t, err)
	assert.True(t, res.Upserted)

	user, err := repo.FindByEmail(ctx, "u@example.com")
	require.NoError(t, err)
	ok, err := repo.SetRole(ctx, user.ID, models.RoleModerator, now)
	require.NoError(t, err)
	require.True(t, ok)

	res, err = repo.Upsert(ctx, "u@example.com", models.UserProfile{Name: "Second"}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, res.Upserted)
	assert.EqualValues(t, 1, res.Matched)

	user, err = repo.FindByEmail(ctx, "u@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Second", user.Name)
	assert.Equal(t, models.RoleModerator, user.Role)
	assert.False(t, user.IsSubscribed)
	assert.Equal(t, now, user.CreatedAt)

	ok, err = repo.SetSubscribed(ctx, "u@example.com", now)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoUserDecodesLegacySubscribedField(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db, time.Second)

	_, err := db.Collection("users").InsertOne(ctx, bson.M{"email": "old@example.com", "subscribed": true})
	require.NoError(t, err)

	user, err := repo.FindByEmail(ctx, "old@example.com")
	require.NoError(t, err)
	require.NotNil(t, user.LegacySubscribed)
	assert.True(t, *user.LegacySubscribed)
}

func TestMongoCouponCodesAreUnique(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo := NewCouponRepository(db, time.Second)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, &models.Coupon{Code: "SAVE10", DiscountPercentage: 10, Expiry: now.Add(24 * time.Hour)}))
	require.NoError(t, repo.Insert(ctx, &models.Coupon{Code: "OLD", DiscountPercentage: 50, Expiry: now.Add(-time.Hour)}))
	assert.ErrorIs(t, repo.Insert(ctx, &models.Coupon{Code: "SAVE10", DiscountPercentage: 5, Expiry: now}), ErrDuplicateKey)

	valid, err := repo.FindValidByCode(ctx, "SAVE10", now)
	require.NoError(t, err)
	assert.Equal(t, 10.0, valid.DiscountPercentage)

	_, err = repo.FindValidByCode(ctx, "OLD", now)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := repo.ListValid(ctx, now)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMongoReviewsListedByProduct(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo := NewReviewRepository(db, time.Second)
	productID := primitive.NewObjectID().Hex()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, desc := range []string{"first", "second"} {
		require.NoError(t, repo.Insert(ctx, &models.Review{
			ProductID:     productID,
			ReviewerEmail: "r@example.com",
			Description:   desc,
			Rating:        4,
			Timestamp:     base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Insert(ctx, &models.Review{ProductID: primitive.NewObjectID().Hex(), Rating: 1}))

	reviews, err := repo.ListByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestMongoTransactorDisabledRunsDirectly(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo := NewProductRepository(db, time.Second)
	tx := NewTransactor(testClient, false)

	var p *models.Product
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p = insertProduct(t, repo, "Inside", models.StatusPending, 0, time.Now())
		return nil
	})
	require.NoError(t, err)

	_, err = repo.FindByID(ctx, p.ID)
	assert.NoError(t, err)
}
