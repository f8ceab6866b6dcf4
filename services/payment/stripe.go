package payment

import (
	"context"
	"fmt"
	"strings"

	"cropconnect/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway settles through PaymentIntents. The order id is the intent id and the client
// secret goes back to the checkout.
type StripeGateway struct {
	api            *client.API
	publishableKey string
}

func NewStripeGateway(secretKey, publishableKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil), publishableKey: publishableKey}
}

func (g *StripeGateway) Name() string  { return GatewayStripe }
func (g *StripeGateway) KeyID() string { return g.publishableKey }

func (g *StripeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*models.GatewayOrder, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	params.Context = ctx
	params.AddMetadata("receipt", req.Receipt)
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return &models.GatewayOrder{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     req.Currency,
		Receipt:      req.Receipt,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// Verify retrieves the intent and requires it to have succeeded. Stripe checkouts carry no
// signature, so only the intent status is trusted.
func (g *StripeGateway) Verify(ctx context.Context, orderID, _, _ string) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(orderID, params)
	if err != nil {
		return fmt.Errorf("stripe get payment intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("payment intent %s is %s: %w", orderID, pi.Status, ErrVerification)
	}
	return nil
}
