package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"apporbit/internal/identity"
	"apporbit/internal/models"
	"apporbit/internal/repository/memory"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *memory.Store
	products *ProductService
	reports  *ReportService
	reviews  *ReviewService
	users    *UserService
	coupons  *CouponService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	log := zap.NewNop()
	clock := func() time.Time { return testNow }

	env := &testEnv{
		store:    store,
		products: NewProductService(store.Products, store.Reports, store.Users, memory.Transactor{}, log),
		reports:  NewReportService(store.Products, store.Reports, memory.Transactor{}, log),
		reviews:  NewReviewService(store.Reviews, log),
		users:    NewUserService(store.Users, log),
		coupons:  NewCouponService(store.Coupons, log),
	}
	env.products.now = clock
	env.reports.now = clock
	env.reviews.now = clock
	env.users.now = clock
	env.coupons.now = clock
	return env
}

func (e *testEnv) seedUser(email string, subscribed bool) identity.Identity {
	e.store.Users.Put(models.User{Email: email, Name: "User " + email, Role: models.RoleUser, IsSubscribed: subscribed})
	return identity.Identity{Email: email, Role: models.RoleUser}
}

// seedProduct inserts a product directly with the given status and timestamp offset.
func (e *testEnv) seedProduct(t *testing.T, name, owner, status string, age time.Duration) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:      name,
		Owner:     models.Owner{Name: owner, Email: owner},
		Status:    status,
		Tags:      models.StringList{},
		Voters:    []string{},
		Reports:   []models.Report{},
		Timestamp: testNow.Add(-age),
	}
	if err := e.store.Products.Insert(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

// failingReports wraps a report store and fails every Insert with err.
type failingReports struct {
	ReportStore
	err error
}

func (f failingReports) Insert(context.Context, *models.Report) error {
	return f.err
}

var (
	moderator = identity.Identity{Email: "mod@apporbit.test", Role: models.RoleModerator}
	admin     = identity.Identity{Email: "admin@apporbit.test", Role: models.RoleAdmin}
)
