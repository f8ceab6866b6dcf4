package payment

import (
	"testing"

	"cropconnect/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewGatewayFallsBackToMockOutsideProduction(t *testing.T) {
	gw, err := NewGateway(&config.Config{Env: "development", PaymentGateway: GatewayRazorpay}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, GatewayMock, gw.Name())
}

func TestNewGatewayRefusesMockInProduction(t *testing.T) {
	for _, cfg := range []*config.Config{
		{Env: "production", PaymentGateway: GatewayRazorpay},
		{Env: "production", PaymentGateway: GatewayRazorpay, RazorpayKeyID: "rzp_live_x"},
		{Env: "production", PaymentGateway: GatewayStripe},
		{Env: "production", PaymentGateway: "razorpy", RazorpayKeyID: "rzp_live_x", RazorpayKeySecret: "secret"},
	} {
		gw, err := NewGateway(cfg, zap.NewNop())
		assert.Error(t, err, "gateway %q", cfg.PaymentGateway)
		assert.Nil(t, gw)
	}
}

func TestNewGatewayUsesConfiguredCredentials(t *testing.T) {
	gw, err := NewGateway(&config.Config{
		Env: "production", PaymentGateway: GatewayRazorpay,
		RazorpayKeyID: "rzp_live_x", RazorpayKeySecret: "secret",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, GatewayRazorpay, gw.Name())
	assert.Equal(t, "rzp_live_x", gw.KeyID())

	gw, err = NewGateway(&config.Config{
		Env: "production", PaymentGateway: GatewayStripe,
		StripeSecretKey: "sk_live_x", StripePublishableKey: "pk_live_x",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, GatewayStripe, gw.Name())
}
