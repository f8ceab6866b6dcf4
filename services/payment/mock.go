package payment

import (
	"context"
	"strings"

	"cropconnect/models"

	"github.com/google/uuid"
)

// MockGateway issues local orders for development setups without gateway credentials.
type MockGateway struct{}

func (MockGateway) Name() string  { return GatewayMock }
func (MockGateway) KeyID() string { return "rzp_test_mock" }

func (MockGateway) CreateOrder(_ context.Context, req OrderRequest) (*models.GatewayOrder, error) {
	return &models.GatewayOrder{
		ID:       MockOrderPrefix + strings.ReplaceAll(uuid.New().String(), "-", ""),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}, nil
}

func (MockGateway) Verify(context.Context, string, string, string) error { return nil }

// IsMockOrder reports whether orderID was issued by MockGateway.
func IsMockOrder(orderID string) bool {
	return strings.HasPrefix(orderID, MockOrderPrefix)
}
