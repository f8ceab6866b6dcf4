package transactionRepo

import (
	"context"
	"time"

	"cropconnect/models"
)

// TransactionRepository defines persistence for payment records. Records are append-only apart
// from the single pending -> completed transition of a gateway payment.
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	ListByBooking(ctx context.Context, bookingID string) ([]models.Transaction, error)
	// Complete records the gateway payment on a pending transaction.
	Complete(ctx context.Context, id, paymentID, signature string, at time.Time) (*models.Transaction, error)
}
