package memstore

import (
	"context"
	"fmt"
	"time"

	"cropconnect/database/repository"
	transactionRepo "cropconnect/database/repository/transaction"
	"cropconnect/models"
)

type transactions struct{ s *Store }

func (s *Store) Transactions() transactionRepo.TransactionRepository { return transactions{s} }

func (r transactions) Create(_ context.Context, txn *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.transactions {
		if t.ID == txn.ID || (txn.GatewayOrderID != "" && t.GatewayOrderID == txn.GatewayOrderID) {
			return fmt.Errorf("transaction %s: %w", txn.ID, repository.ErrDuplicate)
		}
	}
	now := time.Now()
	txn.CreatedAt, txn.UpdatedAt = now, now
	r.s.transactions = append(r.s.transactions, *txn)
	return nil
}

func (r transactions) find(match func(models.Transaction) bool) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.transactions {
		if match(t) {
			out := t
			return &out, nil
		}
	}
	return nil, fmt.Errorf("transaction: %w", repository.ErrNotFound)
}

func (r transactions) GetByID(_ context.Context, id string) (*models.Transaction, error) {
	return r.find(func(t models.Transaction) bool { return t.ID == id })
}

func (r transactions) GetByOrderID(_ context.Context, orderID string) (*models.Transaction, error) {
	return r.find(func(t models.Transaction) bool { return orderID != "" && t.GatewayOrderID == orderID })
}

func (r transactions) list(match func(models.Transaction) bool) []models.Transaction {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Transaction
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		if match(r.s.transactions[i]) {
			out = append(out, r.s.transactions[i])
		}
	}
	return out
}

func (r transactions) ListByUser(_ context.Context, userID string) ([]models.Transaction, error) {
	return r.list(func(t models.Transaction) bool { return t.PayerID == userID || t.PayeeID == userID }), nil
}

func (r transactions) ListByBooking(_ context.Context, bookingID string) ([]models.Transaction, error) {
	return r.list(func(t models.Transaction) bool { return t.BookingID == bookingID }), nil
}

func (r transactions) Complete(_ context.Context, id, paymentID, signature string, at time.Time) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.transactions {
		t := &r.s.transactions[i]
		if t.ID == id && t.Status == models.TransactionPending {
			t.Status = models.TransactionCompleted
			t.GatewayPaymentID = paymentID
			t.GatewaySignature = signature
			stamp := at
			t.CompletedAt = &stamp
			t.UpdatedAt = at
			out := *t
			return &out, nil
		}
	}
	return nil, fmt.Errorf("transaction %s: %w", id, repository.ErrStateChanged)
}
