// Package payment adapts the Stripe API to the services.Gateway contract.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"apporbit/internal/services"
)

// StripeGateway opens card payment intents.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway returns a gateway using the default Stripe backends.
func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

// NewStripeGatewayWithURL points the gateway at a different API host.
func NewStripeGatewayWithURL(secretKey, url string) *StripeGateway {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(url),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return &StripeGateway{api: client.New(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req services.IntentRequest) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return "", fmt.Errorf("stripe %s (%s): %w", stripeErr.Type, stripeErr.Code, err)
		}
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}
