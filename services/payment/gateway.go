package payment

import (
	"context"
	"errors"
	"fmt"

	"cropconnect/config"
	"cropconnect/models"

	"go.uber.org/zap"
)

const (
	GatewayRazorpay = "razorpay"
	GatewayStripe   = "stripe"
	GatewayMock     = "mock"

	// MockOrderPrefix marks orders issued without a real gateway.
	MockOrderPrefix = "order_mock_"
)

// ErrVerification is returned by a gateway when a payment cannot be proven.
var ErrVerification = errors.New("payment verification failed")

// OrderRequest sizes a gateway order. Amount is in minor units.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Gateway is an online payment provider.
type Gateway interface {
	Name() string
	// KeyID is the public key the client checkout is opened with.
	KeyID() string
	CreateOrder(ctx context.Context, req OrderRequest) (*models.GatewayOrder, error)
	// Verify proves that paymentID settled orderID. Failures wrap ErrVerification.
	Verify(ctx context.Context, orderID, paymentID, signature string) error
}

// NewGateway picks the configured gateway. Outside production it falls back to the mock gateway
// when credentials are missing; in production that is an error.
func NewGateway(cfg *config.Config, logger *zap.Logger) (Gateway, error) {
	switch cfg.PaymentGateway {
	case GatewayStripe:
		if cfg.StripeConfigured() {
			return NewStripeGateway(cfg.StripeSecretKey, cfg.StripePublishableKey), nil
		}
	case GatewayRazorpay, "":
		if cfg.RazorpayConfigured() {
			return NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret), nil
		}
	}
	if cfg.IsProduction() {
		return nil, fmt.Errorf("payment gateway %q is not configured; mock orders are not allowed in production", cfg.PaymentGateway)
	}
	logger.Warn("payment gateway credentials missing, using mock orders",
		zap.String("gateway", cfg.PaymentGateway))
	return MockGateway{}, nil
}
