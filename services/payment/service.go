package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"cropconnect/database/repository"
	bookingRepo "cropconnect/database/repository/booking"
	transactionRepo "cropconnect/database/repository/transaction"
	"cropconnect/models"
	"cropconnect/services/notification"
	"cropconnect/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPaymentService implements PaymentService.
type DefaultPaymentService struct {
	Bookings     bookingRepo.BookingRepository
	Transactions transactionRepo.TransactionRepository
	Gateway      Gateway
	Currency     string
	Tx           repository.TxRunner
	Notifier     notification.Emitter
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *DefaultPaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultPaymentService) currency() string {
	if s.Currency == "" {
		return "INR"
	}
	return s.Currency
}

// payable loads a booking and checks it is completed and still unpaid.
func (s *DefaultPaymentService) payable(ctx context.Context, bookingID string) (*models.Booking, error) {
	bk, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, mapError(err, "booking")
	}
	if bk.PaymentStatus == models.PaymentPaid {
		return nil, utils.InvalidState("booking is already paid")
	}
	if bk.Status != models.BookingCompleted {
		return nil, utils.InvalidState("payment is only possible once the work is completed")
	}
	if bk.PaymentStatus != models.PaymentPending {
		return nil, utils.InvalidState("booking payment is %s", bk.PaymentStatus)
	}
	return bk, nil
}

// RecordCash records a cash, UPI or bank transfer payment made after the work. Either party
// may record it.
func (s *DefaultPaymentService) RecordCash(ctx context.Context, actor models.Actor, in models.OfflinePayment) (*Settlement, error) {
	method := in.Method
	if method == "" {
		method = models.MethodCash
	}
	if !method.Offline() {
		return nil, utils.Validation("paymentMethod must be cash, upi or bank_transfer")
	}
	if in.Amount < 0 {
		return nil, utils.Validation("amount cannot be negative")
	}

	bk, err := s.Bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return nil, mapError(err, "booking")
	}
	if !bk.IsParty(actor.ID) {
		return nil, utils.Forbidden("you are not a party to this booking")
	}
	if bk, err = s.payable(ctx, bk.ID); err != nil {
		return nil, err
	}
	amount := in.Amount
	if amount == 0 {
		amount = bk.TotalCost
	}
	if amount <= 0 {
		return nil, utils.Validation("amount must be greater than zero")
	}

	now := s.now()
	txn := &models.Transaction{
		ID:          uuid.New().String(),
		BookingID:   bk.ID,
		PayerID:     bk.FarmerID,
		PayeeID:     bk.ProviderID,
		Amount:      amount,
		Currency:    s.currency(),
		Method:      method,
		Status:      models.TransactionCompleted,
		CompletedAt: &now,
	}

	var paid *models.Booking
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if paid, err = s.Bookings.MarkPaid(ctx, bk.ID); err != nil {
			return err
		}
		return s.Transactions.Create(ctx, txn)
	})
	if errors.Is(err, repository.ErrStateChanged) {
		return nil, utils.InvalidState("booking is already paid")
	}
	if err != nil {
		return nil, mapError(err, "payment")
	}

	s.Logger.Info("offline payment recorded",
		zap.String("bookingId", bk.ID),
		zap.String("transactionId", txn.ID),
		zap.String("method", string(method)),
		zap.Float64("amount", amount))
	s.notifyPaid(ctx, paid, txn)
	return &Settlement{Booking: paid, Transaction: txn}, nil
}

// Initiate opens a gateway order for the booking's total and records it as a pending transaction.
func (s *DefaultPaymentService) Initiate(ctx context.Context, bookingID string, actor models.Actor) (*Checkout, error) {
	bk, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, mapError(err, "booking")
	}
	if bk.FarmerID != actor.ID {
		return nil, utils.Forbidden("only the farmer can pay for this booking")
	}
	if bk, err = s.payable(ctx, bk.ID); err != nil {
		return nil, err
	}
	amount := int64(math.Round(bk.TotalCost * 100))
	if amount <= 0 {
		return nil, utils.InvalidState("booking has nothing to pay")
	}

	order, err := s.Gateway.CreateOrder(ctx, OrderRequest{
		Amount:   amount,
		Currency: s.currency(),
		Receipt:  receipt(bk.ID),
		Notes:    map[string]string{"bookingId": bk.ID, "farmerId": bk.FarmerID},
	})
	if err != nil {
		s.Logger.Error("payment order failed", zap.String("bookingId", bk.ID), zap.Error(err))
		return nil, utils.Internal("failed to create payment order", err)
	}

	method := models.MethodRazorpay
	if s.Gateway.Name() == GatewayStripe {
		method = models.MethodStripe
	}
	txn := &models.Transaction{
		ID:             uuid.New().String(),
		BookingID:      bk.ID,
		PayerID:        bk.FarmerID,
		PayeeID:        bk.ProviderID,
		Amount:         bk.TotalCost,
		Currency:       s.currency(),
		Method:         method,
		Gateway:        s.Gateway.Name(),
		GatewayOrderID: order.ID,
		Status:         models.TransactionPending,
	}
	if err := s.Transactions.Create(ctx, txn); err != nil {
		return nil, mapError(err, "transaction")
	}

	s.Logger.Info("payment order created",
		zap.String("bookingId", bk.ID),
		zap.String("orderId", order.ID),
		zap.String("gateway", s.Gateway.Name()))
	return &Checkout{Order: order, Key: s.Gateway.KeyID(), IsMock: s.Gateway.Name() == GatewayMock}, nil
}

func receipt(bookingID string) string {
	r := "bk_" + bookingID
	if len(r) > 40 {
		r = r[:40]
	}
	return r
}

// Verify settles a gateway order. Mock orders are accepted without a signature.
func (s *DefaultPaymentService) Verify(ctx context.Context, bookingID string, actor models.Actor, in models.PaymentVerification) (*Settlement, error) {
	if in.OrderID == "" {
		return nil, utils.Validation("razorpay_order_id is required")
	}
	bk, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, mapError(err, "booking")
	}
	if bk.FarmerID != actor.ID {
		return nil, utils.Forbidden("only the farmer can pay for this booking")
	}
	txn, err := s.Transactions.GetByOrderID(ctx, in.OrderID)
	if err != nil {
		return nil, mapError(err, "transaction")
	}
	if txn.BookingID != bk.ID {
		return nil, utils.Validation("order does not belong to this booking")
	}
	if bk.PaymentStatus == models.PaymentPaid || txn.Status != models.TransactionPending {
		return nil, utils.InvalidState("booking is already paid")
	}

	mock := txn.Gateway == GatewayMock && IsMockOrder(txn.GatewayOrderID)
	if !mock {
		if txn.Gateway != s.Gateway.Name() {
			return nil, utils.InvalidState("order was created by another payment gateway")
		}
		if err := s.Gateway.Verify(ctx, in.OrderID, in.PaymentID, in.Signature); err != nil {
			if errors.Is(err, ErrVerification) {
				s.Logger.Warn("payment verification failed",
					zap.String("bookingId", bk.ID), zap.String("orderId", in.OrderID), zap.Error(err))
				return nil, utils.VerificationFailed("payment verification failed")
			}
			return nil, utils.Internal("failed to verify payment", err)
		}
	}

	var (
		paid      *models.Booking
		completed *models.Transaction
	)
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if paid, err = s.Bookings.MarkPaid(ctx, bk.ID); err != nil {
			return err
		}
		completed, err = s.Transactions.Complete(ctx, txn.ID, in.PaymentID, in.Signature, s.now())
		return err
	})
	if errors.Is(err, repository.ErrStateChanged) {
		return nil, utils.InvalidState("booking is already paid")
	}
	if err != nil {
		return nil, mapError(err, "payment")
	}

	s.Logger.Info("payment verified",
		zap.String("bookingId", bk.ID),
		zap.String("transactionId", completed.ID),
		zap.Bool("mock", mock))
	s.notifyPaid(ctx, paid, completed)
	return &Settlement{Booking: paid, Transaction: completed}, nil
}

func (s *DefaultPaymentService) notifyPaid(ctx context.Context, bk *models.Booking, txn *models.Transaction) {
	refs := models.NotificationRefs{BookingID: bk.ID, TransactionID: txn.ID}
	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: txn.PayeeID,
		Type:        models.NotifyPaymentReceived,
		Title:       "Payment received",
		Message:     fmt.Sprintf("You received ₹%.0f for the %s booking on %s.", txn.Amount, bk.ServiceType, bk.Date.Format("02 Jan 2006")),
		Refs:        refs,
		Data:        map[string]any{"method": string(txn.Method), "amount": txn.Amount},
	})
	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: txn.PayerID,
		Type:        models.NotifyPaymentCompleted,
		Title:       "Payment completed",
		Message:     fmt.Sprintf("Your payment of ₹%.0f was recorded.", txn.Amount),
		Refs:        refs,
	})
}

func (s *DefaultPaymentService) ListForUser(ctx context.Context, actor models.Actor) ([]models.Transaction, error) {
	list, err := s.Transactions.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, utils.Internal("failed to list transactions", err)
	}
	return list, nil
}

func (s *DefaultPaymentService) Get(ctx context.Context, id string, actor models.Actor) (*models.Transaction, error) {
	txn, err := s.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "transaction")
	}
	if txn.PayerID != actor.ID && txn.PayeeID != actor.ID {
		return nil, utils.Forbidden("you are not a party to this transaction")
	}
	return txn, nil
}

func mapError(err error, what string) error {
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return utils.NotFound("%s not found", what)
	case errors.Is(err, repository.ErrStateChanged):
		return utils.InvalidState("%s was changed by another request", what)
	case errors.Is(err, repository.ErrDuplicate):
		return utils.Conflict("%s already exists", what)
	default:
		return utils.Internal(what+" failed", err)
	}
}
