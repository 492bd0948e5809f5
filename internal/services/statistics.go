package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"apporbit/internal/apperrors"
	"apporbit/internal/models"
	"apporbit/internal/repository"
)

type Statistics struct {
	TotalProducts    int64 `json:"totalProducts"`
	PendingProducts  int64 `json:"pendingProducts"`
	ApprovedProducts int64 `json:"approvedProducts"`
	TotalUsers       int64 `json:"totalUsers"`
	TotalReviews     int64 `json:"totalReviews"`
}

type StatisticsService struct {
	products ProductStore
	users    UserStore
	reviews  ReviewStore
}

func NewStatisticsService(products ProductStore, users UserStore, reviews ReviewStore) *StatisticsService {
	return &StatisticsService{products: products, users: users, reviews: reviews}
}

// Get runs the five counts concurrently against live data.
func (s *StatisticsService) Get(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	g, ctx := errgroup.WithContext(ctx)

	countProducts := func(dst *int64, q repository.ProductQuery) func() error {
		return func() error {
			n, err := s.products.Count(ctx, q)
			*dst = n
			return err
		}
	}
	g.Go(countProducts(&stats.TotalProducts, repository.ProductQuery{}))
	g.Go(countProducts(&stats.PendingProducts, repository.ProductQuery{Status: models.StatusPending}))
	g.Go(countProducts(&stats.ApprovedProducts, repository.ProductQuery{Status: models.StatusApproved}))
	g.Go(func() error {
		n, err := s.users.Count(ctx)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.reviews.Count(ctx)
		stats.TotalReviews = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperrors.Internal("failed to load statistics", err)
	}
	return &stats, nil
}
