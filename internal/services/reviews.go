package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"apporbit/internal/apperrors"
	"apporbit/internal/models"
)

const (
	MinRating = 1
	MaxRating = 5
)

type ReviewInput struct {
	ProductID     string
	ReviewerName  string
	ReviewerEmail string
	ReviewerImage string
	Description   string
	Rating        int
}

type ReviewService struct {
	reviews ReviewStore
	log     *zap.Logger
	now     Clock
}

func NewReviewService(reviews ReviewStore, log *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, log: log.Named("reviews"), now: systemClock}
}

func (s *ReviewService) AddReview(ctx context.Context, in ReviewInput) (*models.Review, error) {
	if _, ok := parseObjectID(in.ProductID); !ok {
		return nil, apperrors.InvalidReference("productId")
	}
	if in.Rating < MinRating || in.Rating > MaxRating {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperrors.Validation("description is required")
	}

	review := &models.Review{
		ProductID:     in.ProductID,
		ReviewerName:  in.ReviewerName,
		ReviewerEmail: in.ReviewerEmail,
		ReviewerImage: in.ReviewerImage,
		Description:   strings.TrimSpace(in.Description),
		Rating:        in.Rating,
		Timestamp:     s.now(),
	}
	if err := s.reviews.Insert(ctx, review); err != nil {
		return nil, apperrors.Internal("failed to add review", err)
	}
	return review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	if _, ok := parseObjectID(productID); !ok {
		return nil, apperrors.InvalidReference("productId")
	}

	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, apperrors.Internal("failed to load reviews", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}
