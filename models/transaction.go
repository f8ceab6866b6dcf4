package models

import "time"

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodRazorpay     PaymentMethod = "razorpay"
	MethodStripe       PaymentMethod = "stripe"
	MethodUPI          PaymentMethod = "upi"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

// Offline reports whether the method settles outside a payment gateway.
func (m PaymentMethod) Offline() bool {
	return m == MethodCash || m == MethodUPI || m == MethodBankTransfer
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionRefunded  TransactionStatus = "refunded"
)

// Transaction is the financial record of a payment attempt against a booking.
type Transaction struct {
	ID               string            `bson:"id" json:"id"`
	BookingID        string            `bson:"bookingId" json:"bookingId"`
	PayerID          string            `bson:"payerId" json:"payerId"`
	PayeeID          string            `bson:"payeeId" json:"payeeId"`
	Amount           float64           `bson:"amount" json:"amount"`
	Currency         string            `bson:"currency" json:"currency"`
	Method           PaymentMethod     `bson:"method" json:"method"`
	Gateway          string            `bson:"gateway,omitempty" json:"gateway,omitempty"`
	GatewayOrderID   string            `bson:"gatewayOrderId,omitempty" json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string            `bson:"gatewayPaymentId,omitempty" json:"gatewayPaymentId,omitempty"`
	GatewaySignature string            `bson:"gatewaySignature,omitempty" json:"-"`
	Status           TransactionStatus `bson:"status" json:"status"`
	CompletedAt      *time.Time        `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt        time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// GatewayOrder is the order handed to the client to open the checkout.
type GatewayOrder struct {
	ID           string `json:"id"`
	Amount       int64  `json:"amount"` // minor units
	Currency     string `json:"currency"`
	Receipt      string `json:"receipt"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

// PaymentVerification is the checkout callback payload.
type PaymentVerification struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// OfflinePayment records a payment settled outside the gateway after the work is done.
type OfflinePayment struct {
	BookingID string        `json:"bookingId" binding:"required"`
	Method    PaymentMethod `json:"paymentMethod"`
	Amount    float64       `json:"amount"`
}
