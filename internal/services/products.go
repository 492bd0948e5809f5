package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"apporbit/internal/apperrors"
	"apporbit/internal/identity"
	"apporbit/internal/models"
	"apporbit/internal/repository"
)

const (
	DefaultPageLimit     = 20
	MaxPageLimit         = 100
	DefaultTrendingLimit = 6
	DefaultFeaturedLimit = 4

	// freeTierProductLimit is how many products an unsubscribed owner may submit.
	freeTierProductLimit = 1
)

// ProductInput is a product submission.
type ProductInput struct {
	Name         string
	Image        string
	Description  string
	Tags         []string
	ExternalLink string
	OwnerName    string
	OwnerImage   string
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

type ProductService struct {
	products ProductStore
	reports  ReportStore
	users    UserStore
	tx       Transactor
	log      *zap.Logger
	now      Clock
}

func NewProductService(products ProductStore, reports ReportStore, users UserStore, tx Transactor, log *zap.Logger) *ProductService {
	return &ProductService{
		products: products,
		reports:  reports,
		users:    users,
		tx:       tx,
		log:      log.Named("products"),
		now:      systemClock,
	}
}

// Submit stores a new pending product owned by the caller.
func (s *ProductService) Submit(ctx context.Context, caller identity.Identity, in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("product name is required")
	}

	owner, err := s.users.FindByEmail(ctx, caller.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthorized("user not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load user", err)
	}
	if err := rejectLegacySubscription(owner); err != nil {
		return nil, err
	}

	if !owner.IsSubscribed {
		owned, err := s.products.Count(ctx, repository.ProductQuery{OwnerEmail: owner.Email})
		if err != nil {
			return nil, apperrors.Internal("failed to count products", err)
		}
		if owned >= freeTierProductLimit {
			return nil, apperrors.QuotaExceeded("free users can only submit one product, subscribe to add more")
		}
	}

	product := &models.Product{
		Name:         name,
		Image:        in.Image,
		Description:  in.Description,
		Tags:         models.StringList(models.NormalizeTags(in.Tags)),
		ExternalLink: in.ExternalLink,
		Owner: models.Owner{
			Name:  firstNonEmpty(in.OwnerName, owner.Name),
			Email: owner.Email,
			Image: firstNonEmpty(in.OwnerImage, owner.PhotoURL),
		},
		Status:    models.StatusPending,
		Voters:    []string{},
		Reports:   []models.Report{},
		Timestamp: s.now(),
	}

	if err := s.products.Insert(ctx, product); err != nil {
		return nil, apperrors.Internal("failed to add product", err)
	}

	s.log.Info("product submitted", zap.String("id", product.ID.Hex()), zap.String("owner", owner.Email))
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, apperrors.Validation("invalid product id")
	}
	return s.find(ctx, oid)
}

func (s *ProductService) find(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("product")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load product", err)
	}
	return product, nil
}

// Vote records one upvote per voter. The duplicate check and the increment are a
// single conditional update, so concurrent votes from the same voter count once.
func (s *ProductService) Vote(ctx context.Context, id, voter string) (*models.Product, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, apperrors.NotFound("product")
	}

	product, err := s.products.AddVoter(ctx, oid, voter)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal("failed to vote", err)
	}

	// Nothing matched: tell a missing product apart from a repeated vote.
	existing, err := s.find(ctx, oid)
	if err != nil {
		return nil, err
	}
	if existing.HasVoter(voter) {
		return nil, apperrors.AlreadyVoted()
	}
	return nil, apperrors.Internal("vote was not recorded", fmt.Errorf("conditional update matched nothing for %s", id))
}

func (s *ProductService) Accept(ctx context.Context, id string) error {
	return s.decide(ctx, id, models.StatusApproved)
}

func (s *ProductService) Reject(ctx context.Context, id string) error {
	return s.decide(ctx, id, models.StatusRejected)
}

// decide moves a pending product to status. Decisions are terminal: repeating one is a
// no-op, reversing one is refused.
func (s *ProductService) decide(ctx context.Context, id, status string) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return apperrors.NotFound("product")
	}

	moved, err := s.products.TransitionStatus(ctx, oid, models.StatusPending, status)
	if err != nil {
		return apperrors.Internal("failed to update product status", err)
	}
	if moved {
		s.log.Info("product status changed", zap.String("id", id), zap.String("status", status))
		return nil
	}

	product, err := s.find(ctx, oid)
	if err != nil {
		return err
	}
	if product.Status == status {
		return nil
	}
	return apperrors.InvalidTransition(product.Status, status)
}

// SetFeatured toggles the featured flag regardless of status; featured listings only
// show approved products.
func (s *ProductService) SetFeatured(ctx context.Context, id string, featured bool) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return apperrors.NotFound("product")
	}

	matched, err := s.products.SetFeatured(ctx, oid, featured)
	if err != nil {
		return apperrors.Internal("failed to update product", err)
	}
	if !matched {
		return apperrors.NotFound("product")
	}
	return nil
}

// Update applies a whitelisted patch. Only the owner or staff may edit.
func (s *ProductService) Update(ctx context.Context, caller identity.Identity, id string, patch models.ProductPatch) (*models.Product, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, apperrors.Validation("invalid product id")
	}
	if patch.Empty() {
		return nil, apperrors.Validation("no fields to update")
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.Validation("product name cannot be empty")
		}
		patch.Name = &name
	}
	if patch.Tags != nil {
		tags := models.NormalizeTags(*patch.Tags)
		patch.Tags = &tags
	}

	product, err := s.find(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, product) {
		return nil, apperrors.Forbidden("only the owner or a moderator can edit this product")
	}

	updated, err := s.products.Update(ctx, oid, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("product")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to update product", err)
	}
	return updated, nil
}

// Delete removes the product and every standalone report filed against it.
func (s *ProductService) Delete(ctx context.Context, caller identity.Identity, id string) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return apperrors.Validation("invalid product id")
	}

	product, err := s.find(ctx, oid)
	if err != nil {
		return err
	}
	if !canManage(caller, product) {
		return apperrors.Forbidden("only the owner or a moderator can delete this product")
	}

	var removedReports int64
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		deleted, err := s.products.Delete(ctx, oid)
		if err != nil {
			return apperrors.Internal("failed to delete product", err)
		}
		if !deleted {
			return apperrors.NotFound("product")
		}

		removedReports, err = s.reports.DeleteByProduct(ctx, oid.Hex())
		if err != nil {
			return apperrors.Internal("failed to delete product reports", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("product deleted",
		zap.String("id", id),
		zap.String("by", caller.Email),
		zap.Int64("reports", removedReports),
	)
	return nil
}

// ListApproved returns approved products matching search on name or tags, newest first.
func (s *ProductService) ListApproved(ctx context.Context, search string, page, limit int64) (*Page[models.Product], error) {
	page, limit = normalizePage(page, limit)
	q := repository.ProductQuery{
		Status: models.StatusApproved,
		Search: strings.TrimSpace(search),
		Sort:   repository.SortRecent,
		Skip:   (page - 1) * limit,
		Limit:  limit,
	}

	items, err := s.products.Find(ctx, q)
	if err != nil {
		return nil, apperrors.Internal("failed to load products", err)
	}
	total, err := s.products.Count(ctx, q)
	if err != nil {
		return nil, apperrors.Internal("failed to count products", err)
	}
	if items == nil {
		items = []models.Product{}
	}

	return &Page[models.Product]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *ProductService) ListTrending(ctx context.Context, limit int64) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	return s.list(ctx, repository.ProductQuery{
		Status: models.StatusApproved,
		Sort:   repository.SortTrending,
		Limit:  min(limit, MaxPageLimit),
	})
}

func (s *ProductService) ListFeatured(ctx context.Context, limit int64) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	return s.list(ctx, repository.ProductQuery{
		Status:       models.StatusApproved,
		FeaturedOnly: true,
		Limit:        min(limit, MaxPageLimit),
	})
}

func (s *ProductService) ListByOwner(ctx context.Context, email string) ([]models.Product, error) {
	return s.list(ctx, repository.ProductQuery{OwnerEmail: email})
}

func (s *ProductService) ListPending(ctx context.Context) ([]models.Product, error) {
	return s.list(ctx, repository.ProductQuery{Status: models.StatusPending})
}

func (s *ProductService) ListReported(ctx context.Context) ([]models.Product, error) {
	return s.list(ctx, repository.ProductQuery{ReportedOnly: true})
}

func (s *ProductService) list(ctx context.Context, q repository.ProductQuery) ([]models.Product, error) {
	items, err := s.products.Find(ctx, q)
	if err != nil {
		return nil, apperrors.Internal("failed to load products", err)
	}
	if items == nil {
		items = []models.Product{}
	}
	return items, nil
}

func canManage(caller identity.Identity, product *models.Product) bool {
	return caller.IsStaff() || strings.EqualFold(caller.Email, product.Owner.Email)
}

func normalizePage(page, limit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	return page, min(limit, MaxPageLimit)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
