// Package memory implements the repository contracts in process memory.
// It backs the STORE_DRIVER=memory mode used for local development and the
// service and handler tests. Mutations on a single document are atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"apporbit/internal/models"
	"apporbit/internal/repository"
)

// Store groups the five collections.
type Store struct {
	Products *ProductRepository
	Reports  *ReportRepository
	Reviews  *ReviewRepository
	Users    *UserRepository
	Coupons  *CouponRepository
}

func NewStore() *Store {
	return &Store{
		Products: &ProductRepository{items: map[primitive.ObjectID]models.Product{}},
		Reports:  &ReportRepository{items: map[primitive.ObjectID]models.Report{}},
		Reviews:  &ReviewRepository{},
		Users:    &UserRepository{items: map[string]models.User{}},
		Coupons:  &CouponRepository{items: map[primitive.ObjectID]models.Coupon{}},
	}
}

// Transactor runs fn directly; the memory store has no multi-document rollback.
type Transactor struct{}

func (Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

/* =======================
   PRODUCTS
======================= */

type ProductRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Product
}

func cloneProduct(p models.Product) models.Product {
	out := p
	out.Tags = append(models.StringList(nil), p.Tags...)
	out.Voters = append([]string{}, p.Voters...)
	out.Reports = append([]models.Report{}, p.Reports...)
	return out
}

func (r *ProductRepository) Insert(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if _, exists := r.items[product.ID]; exists {
		return repository.ErrDuplicateKey
	}
	r.items[product.ID] = cloneProduct(*product)
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneProduct(p)
	return &out, nil
}

func matchesProduct(p models.Product, q repository.ProductQuery) bool {
	if q.Status != "" && p.Status != q.Status {
		return false
	}
	if q.OwnerEmail != "" && p.Owner.Email != q.OwnerEmail {
		return false
	}
	if q.FeaturedOnly && !p.IsFeatured {
		return false
	}
	if q.ReportedOnly && len(p.Reports) == 0 {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		found := strings.Contains(strings.ToLower(p.Name), needle)
		for _, tag := range p.Tags {
			if found {
				break
			}
			found = strings.Contains(strings.ToLower(tag), needle)
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *ProductRepository) filter(q repository.ProductQuery) []models.Product {
	out := make([]models.Product, 0)
	for _, p := range r.items {
		if matchesProduct(p, q) {
			out = append(out, cloneProduct(p))
		}
	}
	return out
}

func (r *ProductRepository) Find(ctx context.Context, q repository.ProductQuery) ([]models.Product, error) {
	r.mu.RLock()
	products := r.filter(q)
	r.mu.RUnlock()

	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if q.Sort == repository.SortTrending && a.Upvotes != b.Upvotes {
			return a.Upvotes > b.Upvotes
		}
		return a.Timestamp.After(b.Timestamp)
	})

	if q.Skip > 0 {
		if q.Skip >= int64(len(products)) {
			return []models.Product{}, nil
		}
		products = products[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < int64(len(products)) {
		products = products[:q.Limit]
	}
	return products, nil
}

func (r *ProductRepository) Count(ctx context.Context, q repository.ProductQuery) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, p := range r.items {
		if matchesProduct(p, q) {
			n++
		}
	}
	return n, nil
}

func (r *ProductRepository) AddVoter(ctx context.Context, id primitive.ObjectID, voter string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok || p.HasVoter(voter) {
		return nil, repository.ErrNotFound
	}
	p = cloneProduct(p)
	p.Upvotes++
	p.Voters = append(p.Voters, voter)
	r.items[id] = p

	out := cloneProduct(p)
	return &out, nil
}

func (r *ProductRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	r.items[id] = p
	return true, nil
}

func (r *ProductRepository) SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return false, nil
	}
	p.IsFeatured = featured
	r.items[id] = p
	return true, nil
}

func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = cloneProduct(p)
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Tags != nil {
		p.Tags = append(models.StringList(nil), (*patch.Tags)...)
	}
	if patch.ExternalLink != nil {
		p.ExternalLink = *patch.ExternalLink
	}
	r.items[id] = p

	out := cloneProduct(p)
	return &out, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *ProductRepository) AppendReport(ctx context.Context, id primitive.ObjectID, report models.Report) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok || p.HasReporter(report.ReporterID) {
		return false, nil
	}
	p = cloneProduct(p)
	p.Reports = append(p.Reports, report)
	r.items[id] = p
	return true, nil
}

/* =======================
   REPORTS
======================= */

type ReportRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Report
}

func (r *ReportRepository) Insert(ctx context.Context, report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	if _, exists := r.items[report.ID]; exists {
		return repository.ErrDuplicateKey
	}
	for _, existing := range r.items {
		if existing.ProductID == report.ProductID && existing.ReporterID == report.ReporterID {
			return repository.ErrDuplicateKey
		}
	}
	r.items[report.ID] = *report
	return nil
}

func (r *ReportRepository) DeleteByProduct(ctx context.Context, productID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, report := range r.items {
		if report.ProductID == productID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func (r *ReportRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, report := range r.items {
		if report.ProductID == productID {
			n++
		}
	}
	return n, nil
}

/* =======================
   REVIEWS
======================= */

type ReviewRepository struct {
	mu    sync.RWMutex
	items []models.Review
}

func (r *ReviewRepository) Insert(ctx context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	r.items = append(r.items, *review)
	return nil
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Review, 0)
	for _, review := range r.items {
		if review.ProductID == productID {
			out = append(out, review)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (r *ReviewRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.items)), nil
}

/* =======================
   USERS
======================= */

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]models.User
}

func (r *UserRepository) Upsert(ctx context.Context, email string, profile models.UserProfile, now time.Time) (models.UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.items[email]
	if !exists {
		user = models.User{
			ID:        primitive.NewObjectID(),
			Email:     email,
			Role:      models.RoleUser,
			CreatedAt: now,
		}
	}
	if profile.Name != "" {
		user.Name = profile.Name
	}
	if profile.PhotoURL != "" {
		user.PhotoURL = profile.PhotoURL
	}
	if profile.UID != "" {
		user.UID = profile.UID
	}
	user.UpdatedAt = now
	r.items[email] = user

	if !exists {
		return models.UpsertResult{Upserted: true}, nil
	}
	return models.UpsertResult{Matched: 1, Modified: 1}, nil
}

// Put stores user as-is. Tests use it to seed documents the upsert path cannot produce.
func (r *UserRepository) Put(user models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.items[user.Email] = user
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.items[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.items))
	for _, user := range r.items {
		out = append(out, user)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *UserRepository) SetRole(ctx context.Context, id primitive.ObjectID, role string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for email, user := range r.items {
		if user.ID == id {
			user.Role = role
			user.UpdatedAt = now
			r.items[email] = user
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) SetSubscribed(ctx context.Context, email string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.items[email]
	if !ok {
		return false, nil
	}
	user.IsSubscribed = true
	user.UpdatedAt = now
	r.items[email] = user
	return true, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.items)), nil
}

/* =======================
   COUPONS
======================= */

type CouponRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Coupon
}

func (r *CouponRepository) codeTaken(code string, except primitive.ObjectID) bool {
	for id, c := range r.items {
		if id != except && c.Code == code {
			return true
		}
	}
	return false
}

func (r *CouponRepository) Insert(ctx context.Context, coupon *models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if coupon.ID.IsZero() {
		coupon.ID = primitive.NewObjectID()
	}
	if r.codeTaken(coupon.Code, coupon.ID) {
		return repository.ErrDuplicateKey
	}
	r.items[coupon.ID] = *coupon
	return nil
}

func (r *CouponRepository) FindValidByCode(ctx context.Context, code string, now time.Time) (*models.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.items {
		if c.Code == code && c.ValidAt(now) {
			out := c
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *CouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	return r.list(func(models.Coupon) bool { return true }), nil
}

func (r *CouponRepository) ListValid(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	return r.list(func(c models.Coupon) bool { return c.ValidAt(now) }), nil
}

func (r *CouponRepository) list(keep func(models.Coupon) bool) []models.Coupon {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Coupon, 0)
	for _, c := range r.items {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Expiry.Before(out[j].Expiry)
	})
	return out
}

func (r *CouponRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.CouponPatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok {
		return false, nil
	}
	if patch.Code != nil {
		if r.codeTaken(*patch.Code, id) {
			return false, repository.ErrDuplicateKey
		}
		c.Code = *patch.Code
	}
	if patch.DiscountPercentage != nil {
		c.DiscountPercentage = *patch.DiscountPercentage
	}
	if patch.Expiry != nil {
		c.Expiry = *patch.Expiry
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	r.items[id] = c
	return true, nil
}

func (r *CouponRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}
