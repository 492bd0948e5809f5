package services

import (
	"context"

	"go.uber.org/zap"

	"apporbit/internal/apperrors"
)

// IntentRequest is what the payment gateway needs to open a payment intent.
type IntentRequest struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

// Gateway opens payment intents with a payment provider.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (clientSecret string, err error)
}

// noCouponMetadata is recorded when no coupon was applied. Stripe drops empty metadata values.
const noCouponMetadata = "none"

// PaymentIntent is returned to the client to confirm the payment.
type PaymentIntent struct {
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	CouponUsed   string `json:"couponUsed,omitempty"`
}

type PaymentService struct {
	gateway  Gateway
	coupons  *CouponService
	currency string
	log      *zap.Logger
}

// NewPaymentService builds the payment flow. A nil gateway makes every intent
// request fail with service unavailable.
func NewPaymentService(gateway Gateway, coupons *CouponService, currency string, log *zap.Logger) *PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{gateway: gateway, coupons: coupons, currency: currency, log: log.Named("payment")}
}

func (s *PaymentService) CreatePaymentIntent(ctx context.Context, email string, amount int64, couponCode string) (*PaymentIntent, error) {
	if s.gateway == nil {
		return nil, apperrors.ServiceUnavailable("payments are not configured")
	}
	if amount <= 0 {
		return nil, apperrors.Validation("amount must be a positive number of subunits")
	}

	final, err := s.coupons.ComputeDiscountedAmount(ctx, amount, couponCode)
	if err != nil {
		return nil, err
	}
	if final <= 0 {
		return nil, apperrors.Validation("amount after discount must be positive")
	}

	couponUsed := couponCode
	if couponUsed == "" {
		couponUsed = noCouponMetadata
	}

	secret, err := s.gateway.CreatePaymentIntent(ctx, IntentRequest{
		Amount:   final,
		Currency: s.currency,
		Metadata: map[string]string{
			"email":      email,
			"couponUsed": couponUsed,
		},
	})
	if err != nil {
		s.log.Error("payment intent failed",
			zap.String("email", email),
			zap.Int64("amount", final),
			zap.Error(err),
		)
		return nil, apperrors.Internal("failed to create payment intent", err)
	}

	return &PaymentIntent{ClientSecret: secret, Amount: final, CouponUsed: couponCode}, nil
}
