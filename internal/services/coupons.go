package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"apporbit/internal/apperrors"
	"apporbit/internal/models"
	"apporbit/internal/repository"
)

const expiryDateLayout = "2006-01-02"

// CouponInput is a coupon as submitted by an admin. Expiry is either YYYY-MM-DD
// (midnight UTC) or RFC 3339.
type CouponInput struct {
	Code               string
	DiscountPercentage float64
	Expiry             string
	Description        string
}

// CouponUpdate carries optional coupon changes.
type CouponUpdate struct {
	Code               *string
	DiscountPercentage *float64
	Expiry             *string
	Description        *string
}

type CouponService struct {
	coupons CouponStore
	log     *zap.Logger
	now     Clock
}

func NewCouponService(coupons CouponStore, log *zap.Logger) *CouponService {
	return &CouponService{coupons: coupons, log: log.Named("coupons"), now: systemClock}
}

func (s *CouponService) Create(ctx context.Context, in CouponInput) (*models.Coupon, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, apperrors.Validation("code is required")
	}
	if err := validatePercentage(in.DiscountPercentage); err != nil {
		return nil, err
	}
	expiry, err := parseExpiry(in.Expiry)
	if err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		Code:               code,
		DiscountPercentage: in.DiscountPercentage,
		Expiry:             expiry,
		Description:        strings.TrimSpace(in.Description),
	}
	if err := s.coupons.Insert(ctx, coupon); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, duplicateCoupon()
		}
		return nil, apperrors.Internal("failed to create coupon", err)
	}

	s.log.Info("coupon created", zap.String("code", coupon.Code), zap.Time("expiry", coupon.Expiry))
	return coupon, nil
}

func (s *CouponService) Update(ctx context.Context, id string, in CouponUpdate) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return apperrors.Validation("invalid coupon id")
	}

	var patch models.CouponPatch
	if in.Code != nil {
		code := strings.TrimSpace(*in.Code)
		if code == "" {
			return apperrors.Validation("code cannot be empty")
		}
		patch.Code = &code
	}
	if in.DiscountPercentage != nil {
		if err := validatePercentage(*in.DiscountPercentage); err != nil {
			return err
		}
		patch.DiscountPercentage = in.DiscountPercentage
	}
	if in.Expiry != nil {
		expiry, err := parseExpiry(*in.Expiry)
		if err != nil {
			return err
		}
		patch.Expiry = &expiry
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		patch.Description = &description
	}
	if patch.Empty() {
		return apperrors.Validation("no fields to update")
	}

	matched, err := s.coupons.Update(ctx, oid, patch)
	if errors.Is(err, repository.ErrDuplicateKey) {
		return duplicateCoupon()
	}
	if err != nil {
		return apperrors.Internal("failed to update coupon", err)
	}
	if !matched {
		return apperrors.NotFound("coupon")
	}
	return nil
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return apperrors.Validation("invalid coupon id")
	}

	deleted, err := s.coupons.Delete(ctx, oid)
	if err != nil {
		return apperrors.Internal("failed to delete coupon", err)
	}
	if !deleted {
		return apperrors.NotFound("coupon")
	}
	return nil
}

func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.coupons.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to load coupons", err)
	}
	return nonNilCoupons(coupons), nil
}

// ListValid returns coupons that have not expired, soonest expiry first.
func (s *CouponService) ListValid(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.coupons.ListValid(ctx, s.now())
	if err != nil {
		return nil, apperrors.Internal("failed to load coupons", err)
	}
	return nonNilCoupons(coupons), nil
}

// ComputeDiscountedAmount applies code to base, both in currency subunits.
// An empty code returns base unchanged.
func (s *CouponService) ComputeDiscountedAmount(ctx context.Context, base int64, code string) (int64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return base, nil
	}

	coupon, err := s.coupons.FindValidByCode(ctx, code, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return 0, apperrors.InvalidOrExpiredCoupon()
	}
	if err != nil {
		return 0, apperrors.Internal("failed to load coupon", err)
	}
	return applyDiscount(base, coupon.DiscountPercentage), nil
}

// applyDiscount returns max(0, round(base - base*pct/100)).
func applyDiscount(base int64, pct float64) int64 {
	amount := math.Round(float64(base) - float64(base)*pct/100)
	if amount < 0 {
		return 0
	}
	return int64(amount)
}

func parseExpiry(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperrors.Validation("expiry is required")
	}
	if t, err := time.Parse(expiryDateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apperrors.Validation("expiry must be YYYY-MM-DD or an RFC 3339 timestamp")
}

func validatePercentage(pct float64) error {
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return apperrors.Validation("discountPercentage must be between 0 and 100")
	}
	return nil
}

func duplicateCoupon() error {
	return apperrors.Conflict("DUPLICATE_COUPON", "a coupon with this code already exists")
}

func nonNilCoupons(coupons []models.Coupon) []models.Coupon {
	if coupons == nil {
		return []models.Coupon{}
	}
	return coupons
}
