package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cropconnect/database/repository/memstore"
	"cropconnect/models"
	"cropconnect/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	farmer   = models.Actor{ID: "farmer-1", Role: models.RoleFarmer}
	provider = models.Actor{ID: "owner-1", Role: models.RoleTractorOwner}
)

const testSecret = "rzp_secret"

// fakeOrders stands in for the Razorpay orders resource.
type fakeOrders struct {
	mu   sync.Mutex
	n    int
	last map[string]interface{}
	err  error
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.n++
	f.last = data
	return map[string]interface{}{"id": fmt.Sprintf("order_%d", f.n), "amount": data["amount"]}, nil
}

type fixture struct {
	svc     *DefaultPaymentService
	store   *memstore.Store
	emitter *memstore.Emitter
}

func newFixture(t *testing.T, gw Gateway) *fixture {
	t.Helper()
	store := memstore.New()
	emitter := &memstore.Emitter{}
	return &fixture{
		store:   store,
		emitter: emitter,
		svc: &DefaultPaymentService{
			Bookings:     store.Bookings(),
			Transactions: store.Transactions(),
			Gateway:      gw,
			Currency:     "INR",
			Tx:           store,
			Notifier:     emitter,
			Logger:       zap.NewNop(),
		},
	}
}

func razorpayGateway() (*RazorpayGateway, *fakeOrders) {
	orders := &fakeOrders{}
	return &RazorpayGateway{keyID: "rzp_key", secret: testSecret, orders: orders}, orders
}

func (f *fixture) booking(t *testing.T, id string, status models.BookingStatus, cost float64) *models.Booking {
	t.Helper()
	bk := &models.Booking{
		ID: id, FarmerID: farmer.ID, ProviderID: provider.ID, ServiceType: models.ServiceTractor,
		Date: time.Now(), TotalCost: cost, Status: status, PaymentStatus: models.PaymentPending,
	}
	require.NoError(t, f.store.Bookings().Create(context.Background(), bk))
	return bk
}

func (f *fixture) transactions(t *testing.T, bookingID string) []models.Transaction {
	t.Helper()
	list, err := f.store.Transactions().ListByBooking(context.Background(), bookingID)
	require.NoError(t, err)
	return list
}

func TestRecordCashScenario(t *testing.T) {
	f := newFixture(t, MockGateway{})
	ctx := context.Background()
	f.booking(t, "bk-1", models.BookingCompleted, 1200)

	res, err := f.svc.RecordCash(ctx, farmer, models.OfflinePayment{BookingID: "bk-1"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, res.Booking.PaymentStatus)
	assert.Equal(t, models.MethodCash, res.Transaction.Method)
	assert.Equal(t, 1200.0, res.Transaction.Amount)
	assert.Equal(t, models.TransactionCompleted, res.Transaction.Status)

	txns := f.transactions(t, "bk-1")
	require.Len(t, txns, 1)
	assert.Equal(t, models.MethodCash, txns[0].Method)
	assert.Equal(t, 1200.0, txns[0].Amount)
	assert.Equal(t, models.TransactionCompleted, txns[0].Status)

	assert.Len(t, f.emitter.To(provider.ID, models.NotifyPaymentReceived), 1)
	assert.Len(t, f.emitter.To(farmer.ID, models.NotifyPaymentCompleted), 1)

	_, err = f.svc.RecordCash(ctx, provider, models.OfflinePayment{BookingID: "bk-1"})
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
	assert.Len(t, f.transactions(t, "bk-1"), 1)
}

func TestRecordCashRules(t *testing.T) {
	f := newFixture(t, MockGateway{})
	ctx := context.Background()
	f.booking(t, "bk-open", models.BookingConfirmed, 1200)
	f.booking(t, "bk-done", models.BookingCompleted, 1200)

	_, err := f.svc.RecordCash(ctx, farmer, models.OfflinePayment{BookingID: "bk-open"})
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))

	_, err = f.svc.RecordCash(ctx, farmer, models.OfflinePayment{BookingID: "bk-done", Method: models.MethodStripe})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = f.svc.RecordCash(ctx, models.Actor{ID: "stranger"}, models.OfflinePayment{BookingID: "bk-done"})
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = f.svc.RecordCash(ctx, farmer, models.OfflinePayment{BookingID: "missing"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	res, err := f.svc.RecordCash(ctx, provider, models.OfflinePayment{BookingID: "bk-done", Method: models.MethodUPI, Amount: 1000})
	require.NoError(t, err)
	assert.Equal(t, models.MethodUPI, res.Transaction.Method)
	assert.Equal(t, 1000.0, res.Transaction.Amount)
	assert.Equal(t, farmer.ID, res.Transaction.PayerID)
}

func TestConcurrentCashPaysOnce(t *testing.T) {
	f := newFixture(t, MockGateway{})
	ctx := context.Background()
	f.booking(t, "bk-1", models.BookingCompleted, 800)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.RecordCash(ctx, farmer, models.OfflinePayment{BookingID: "bk-1"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, f.transactions(t, "bk-1"), 1)
}

func TestMockGatewayRoundTrip(t *testing.T) {
	f := newFixture(t, MockGateway{})
	ctx := context.Background()
	f.booking(t, "bk-1", models.BookingCompleted, 1500.5)

	checkout, err := f.svc.Initiate(ctx, "bk-1", farmer)
	require.NoError(t, err)
	assert.True(t, checkout.IsMock)
	assert.Contains(t, checkout.Order.ID, "mock")
	assert.Equal(t, int64(150050), checkout.Order.Amount)
	assert.Equal(t, "INR", checkout.Order.Currency)

	res, err := f.svc.Verify(ctx, "bk-1", farmer, models.PaymentVerification{OrderID: checkout.Order.ID})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, res.Booking.PaymentStatus)
	assert.Equal(t, models.TransactionCompleted, res.Transaction.Status)

	_, err = f.svc.Verify(ctx, "bk-1", farmer, models.PaymentVerification{OrderID: checkout.Order.ID})
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
	_, err = f.svc.RecordCash(ctx, farmer, models.OfflinePayment{BookingID: "bk-1"})
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))

	txns := f.transactions(t, "bk-1")
	require.Len(t, txns, 1)
	assert.Equal(t, models.TransactionCompleted, txns[0].Status)
}

func TestRazorpaySignatureRoundTrip(t *testing.T) {
	gw, orders := razorpayGateway()
	f := newFixture(t, gw)
	ctx := context.Background()
	f.booking(t, "bk-1", models.BookingCompleted, 4000)

	checkout, err := f.svc.Initiate(ctx, "bk-1", farmer)
	require.NoError(t, err)
	assert.False(t, checkout.IsMock)
	assert.Equal(t, "rzp_key", checkout.Key)
	assert.Equal(t, int64(400000), orders.last["amount"])

	orderID := checkout.Order.ID
	signature := RazorpaySignature(testSecret, orderID, "pay_123")

	for i := range signature {
		mutated := []byte(signature)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		_, err := f.svc.Verify(ctx, "bk-1", farmer, models.PaymentVerification{
			OrderID: orderID, PaymentID: "pay_123", Signature: string(mutated),
		})
		require.True(t, utils.IsKind(err, utils.KindVerificationFailed), "position %d: %v", i, err)
	}

	res, err := f.svc.Verify(ctx, "bk-1", farmer, models.PaymentVerification{
		OrderID: orderID, PaymentID: "pay_123", Signature: signature,
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_123", res.Transaction.GatewayPaymentID)
	assert.Equal(t, models.MethodRazorpay, res.Transaction.Method)
	assert.Equal(t, models.PaymentPaid, res.Booking.PaymentStatus)
}

func TestInitiateRules(t *testing.T) {
	gw, orders := razorpayGateway()
	f := newFixture(t, gw)
	ctx := context.Background()
	f.booking(t, "bk-open", models.BookingConfirmed, 1000)
	f.booking(t, "bk-done", models.BookingCompleted, 1000)

	_, err := f.svc.Initiate(ctx, "bk-open", farmer)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))

	_, err = f.svc.Initiate(ctx, "bk-done", provider)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	orders.err = errors.New("gateway down")
	_, err = f.svc.Initiate(ctx, "bk-done", farmer)
	assert.True(t, utils.IsKind(err, utils.KindInternal))
	assert.Empty(t, f.transactions(t, "bk-done"))
}

func TestVerifyRejectsForeignOrder(t *testing.T) {
	f := newFixture(t, MockGateway{})
	ctx := context.Background()
	f.booking(t, "bk-1", models.BookingCompleted, 1000)
	f.booking(t, "bk-2", models.BookingCompleted, 1000)

	checkout, err := f.svc.Initiate(ctx, "bk-1", farmer)
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, "bk-2", farmer, models.PaymentVerification{OrderID: checkout.Order.ID})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = f.svc.Verify(ctx, "bk-1", farmer, models.PaymentVerification{OrderID: "order_unknown"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestGetTransactionIsPartyOnly(t *testing.T) {
	f := newFixture(t, MockGateway{})
	ctx := context.Background()
	f.booking(t, "bk-1", models.BookingCompleted, 1000)
	res, err := f.svc.RecordCash(ctx, farmer, models.OfflinePayment{BookingID: "bk-1"})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, res.Transaction.ID, provider)
	require.NoError(t, err)
	assert.Equal(t, res.Transaction.ID, got.ID)

	_, err = f.svc.Get(ctx, res.Transaction.ID, models.Actor{ID: "stranger"})
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	list, err := f.svc.ListForUser(ctx, provider)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
