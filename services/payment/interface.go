package payment

import (
	"context"

	"cropconnect/models"
)

// PaymentService settles bookings. Whichever path runs, a booking is marked paid exactly once
// and gets exactly one completed transaction.
type PaymentService interface {
	RecordCash(ctx context.Context, actor models.Actor, in models.OfflinePayment) (*Settlement, error)
	Initiate(ctx context.Context, bookingID string, actor models.Actor) (*Checkout, error)
	Verify(ctx context.Context, bookingID string, actor models.Actor, in models.PaymentVerification) (*Settlement, error)

	ListForUser(ctx context.Context, actor models.Actor) ([]models.Transaction, error)
	Get(ctx context.Context, id string, actor models.Actor) (*models.Transaction, error)
}

// Checkout is what the client needs to open the gateway checkout.
type Checkout struct {
	Order  *models.GatewayOrder `json:"order"`
	Key    string              `json:"key"`
	IsMock bool                `json:"isMock"`
}

// Settlement is a paid booking with the transaction that paid it.
type Settlement struct {
	Booking     *models.Booking     `json:"booking"`
	Transaction *models.Transaction `json:"transaction"`
}
