package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"cropconnect/models"

	razorpay "github.com/razorpay/razorpay-go"
)

// orderCreator is the slice of the Razorpay orders resource used here.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayGateway struct {
	keyID  string
	secret string
	orders orderCreator
}

func NewRazorpayGateway(keyID, secret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, secret)
	return &RazorpayGateway{keyID: keyID, secret: secret, orders: client.Order}
}

func (g *RazorpayGateway) Name() string  { return GatewayRazorpay }
func (g *RazorpayGateway) KeyID() string { return g.keyID }

func (g *RazorpayGateway) CreateOrder(_ context.Context, req OrderRequest) (*models.GatewayOrder, error) {
	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	body, err := g.orders.Create(map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notes,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay create order: response without id")
	}
	return &models.GatewayOrder{
		ID:       id,
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}, nil
}

// Verify recomputes the checkout signature, hex(HMAC-SHA256(secret, orderId|paymentId)).
func (g *RazorpayGateway) Verify(_ context.Context, orderID, paymentID, signature string) error {
	if paymentID == "" || signature == "" {
		return fmt.Errorf("missing payment id or signature: %w", ErrVerification)
	}
	expected := RazorpaySignature(g.secret, orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch for order %s: %w", orderID, ErrVerification)
	}
	return nil
}

func RazorpaySignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
