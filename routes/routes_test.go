package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cropconnect/database/repository/memstore"
	"cropconnect/handlers"
	"cropconnect/middleware"
	"cropconnect/models"
	"cropconnect/realtime"
	"cropconnect/routes"
	"cropconnect/services/bid"
	"cropconnect/services/booking"
	"cropconnect/services/intelligence"
	"cropconnect/services/listing"
	"cropconnect/services/notification"
	"cropconnect/services/payment"
	"cropconnect/services/requirement"
	"cropconnect/services/review"
	"cropconnect/services/storage"
	"cropconnect/services/user"
	"cropconnect/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type server struct {
	t      *testing.T
	router *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	store := memstore.New()
	tokens := utils.NewJWTManager("test-secret", time.Hour)

	dispatcher := notification.NewDispatcher(store.Notifications(), store.Users(), notification.Channels{},
		notification.DispatcherConfig{}, logger)
	t.Cleanup(dispatcher.Close)

	svc := handlers.Services{
		Users: &user.DefaultUserService{
			Repo: store.Users(), Tokens: tokens, Storage: storage.Disabled{}, Notifier: dispatcher, Logger: logger,
		},
		Requirements: &requirement.DefaultRequirementService{
			Requirements: store.Requirements(), Bids: store.Bids(), Bookings: store.Bookings(),
			Users: store.Users(), Tx: store, Notifier: dispatcher, Logger: logger,
		},
		Bids: &bid.DefaultBidService{
			Bids: store.Bids(), Requirements: store.Requirements(), Bookings: store.Bookings(),
			Tx: store, Notifier: dispatcher, Logger: logger,
		},
		Bookings: &booking.DefaultBookingService{
			Bookings: store.Bookings(), Requirements: store.Requirements(),
			Catalogs: booking.NewCatalogs(store.Tractors(), store.Workers()),
			Tx:       store, Notifier: dispatcher, Logger: logger,
		},
		Payments: &payment.DefaultPaymentService{
			Bookings: store.Bookings(), Transactions: store.Transactions(), Gateway: payment.MockGateway{},
			Currency: "INR", Tx: store, Notifier: dispatcher, Logger: logger,
		},
		Notifications: dispatcher,
		Listings: &listing.DefaultListingService{
			Tractors: store.Tractors(), Workers: store.Workers(), Users: store.Users(),
			Storage: storage.Disabled{}, Logger: logger,
		},
		Reviews: &review.DefaultReviewService{
			Reviews: store.Reviews(), Bookings: store.Bookings(), Users: store.Users(),
			Tractors: store.Tractors(), Workers: store.Workers(), Notifier: dispatcher, Logger: logger,
		},
		Assistant: &intelligence.Assistant{Logger: logger},
	}

	roles := &middleware.RoleResolver{Users: store.Users(), Logger: logger}
	hb := handlers.NewHandlerBundle(svc,
		middleware.Auth(tokens, roles), middleware.OptionalAuth(tokens, roles),
		tokens, realtime.NewHub(logger), nil)

	r := gin.New()
	routes.RegisterRoutes(r, hb, "*")
	return &server{t: t, router: r}
}

func (s *server) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func (s *server) register(name, email string, role models.Role) (token, id string) {
	s.t.Helper()
	code, out := s.do(http.MethodPost, "/api/users/register", "", map[string]any{
		"name": name, "email": email, "password": "secret123", "role": role,
		"location": map[string]string{"district": "Nashik", "state": "Maharashtra"},
	})
	require.Equal(s.t, http.StatusCreated, code, out)
	return out["token"].(string), out["user"].(map[string]any)["id"].(string)
}

func field(m map[string]any, path ...string) any {
	var cur any = m
	for _, p := range path {
		cur = cur.(map[string]any)[p]
	}
	return cur
}

func TestBidToPaymentOverHTTP(t *testing.T) {
	s := newServer(t)
	farmerTok, farmerID := s.register("Ravi", "ravi@example.com", models.RoleFarmer)
	ownerATok, _ := s.register("Anil", "anil@example.com", models.RoleTractorOwner)
	ownerBTok, ownerBID := s.register("Bala", "bala@example.com", models.RoleTractorOwner)

	code, out := s.do(http.MethodPost, "/api/requirements", farmerTok, map[string]any{
		"kind": "tractor", "workType": "Plowing", "landSize": 5, "maxBudget": 5000,
		"date":     time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"location": map[string]string{"district": "Nashik", "state": "Maharashtra"},
	})
	require.Equal(t, http.StatusCreated, code, out)
	reqID := field(out, "requirement", "id").(string)

	// Only farmers post requirements.
	code, _ = s.do(http.MethodPost, "/api/requirements", ownerATok, map[string]any{"kind": "tractor"})
	assert.Equal(t, http.StatusForbidden, code)

	code, out = s.do(http.MethodPost, "/api/bids", ownerATok, map[string]any{"requirementId": reqID, "proposedAmount": 4500})
	require.Equal(t, http.StatusCreated, code, out)
	code, out = s.do(http.MethodPost, "/api/bids", ownerBTok, map[string]any{"requirementId": reqID, "proposedAmount": 4000})
	require.Equal(t, http.StatusCreated, code, out)
	cheapest := field(out, "bid", "id").(string)

	code, out = s.do(http.MethodPost, "/api/bids", ownerBTok, map[string]any{"requirementId": reqID, "proposedAmount": 3900})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, out["success"])

	code, out = s.do(http.MethodGet, "/api/bids/requirement/"+reqID, farmerTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["bids"], 2)

	code, out = s.do(http.MethodPost, "/api/bids/"+cheapest+"/accept", farmerTok, nil)
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, "accepted", field(out, "bid", "status"))
	assert.Equal(t, 4000.0, field(out, "booking", "totalCost"))
	assert.Equal(t, ownerBID, field(out, "booking", "providerId"))
	assert.Equal(t, farmerID, field(out, "booking", "farmerId"))
	bookingID := field(out, "booking", "id").(string)

	code, _ = s.do(http.MethodPost, "/api/bids/"+cheapest+"/accept", farmerTok, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = s.do(http.MethodGet, "/api/requirements/"+reqID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "accepted", field(out, "requirement", "status"))

	// Payment is only possible once the work is complete.
	code, _ = s.do(http.MethodPost, "/api/transactions/pay-after-work", farmerTok, map[string]any{"bookingId": bookingID})
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = s.do(http.MethodPost, "/api/bookings/"+bookingID+"/complete", ownerBTok, nil)
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, "completed", field(out, "booking", "status"))

	code, out = s.do(http.MethodPost, "/api/transactions/pay-after-work", farmerTok,
		map[string]any{"bookingId": bookingID, "paymentMethod": "cash"})
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, "paid", field(out, "booking", "paymentStatus"))
	assert.Equal(t, 4000.0, field(out, "transaction", "amount"))

	code, _ = s.do(http.MethodPost, "/api/transactions/pay-after-work", farmerTok, map[string]any{"bookingId": bookingID})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(http.MethodPost, "/api/bookings/"+bookingID+"/razorpay-order", farmerTok, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = s.do(http.MethodGet, "/api/transactions", ownerBTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["transactions"], 1)

	code, out = s.do(http.MethodPost, "/api/reviews", farmerTok, map[string]any{"bookingId": bookingID, "rating": 5})
	require.Equal(t, http.StatusCreated, code, out)
	code, out = s.do(http.MethodGet, "/api/reviews/user/"+ownerBID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["reviews"], 1)

	require.Eventually(t, func() bool {
		_, inbox := s.do(http.MethodGet, "/api/notifications?unread=true", farmerTok, nil)
		for _, n := range inbox["notifications"].([]any) {
			if n.(map[string]any)["type"] == string(models.NotifyBidReceived) {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestDirectBookingWithMockCheckout(t *testing.T) {
	s := newServer(t)
	farmerTok, _ := s.register("Ravi", "ravi@example.com", models.RoleFarmer)
	ownerTok, _ := s.register("Anil", "anil@example.com", models.RoleTractorOwner)

	code, out := s.do(http.MethodPost, "/api/services/tractors", ownerTok, map[string]any{
		"name": "Mahindra 575", "ratePerAcre": 1200, "workTypes": []string{"Plowing"},
		"location": map[string]string{"district": "Nashik"},
	})
	require.Equal(t, http.StatusCreated, code, out)
	tractorID := field(out, "tractor", "id").(string)

	code, out = s.do(http.MethodGet, "/api/services/tractors?district=nashik&available=true", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["tractors"], 1)

	code, out = s.do(http.MethodPost, "/api/bookings", farmerTok, map[string]any{
		"serviceType": "tractor", "serviceId": tractorID, "landSize": 2.5,
		"date": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, code, out)
	assert.Equal(t, 3000.0, field(out, "booking", "totalCost"))
	bookingID := field(out, "booking", "id").(string)

	code, _ = s.do(http.MethodPost, "/api/bookings", farmerTok, map[string]any{
		"serviceType": "tractor", "serviceId": tractorID, "landSize": 1,
		"date": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = s.do(http.MethodPost, "/api/bookings/"+bookingID+"/complete", farmerTok, nil)
	require.Equal(t, http.StatusOK, code, out)

	code, out = s.do(http.MethodPost, "/api/bookings/"+bookingID+"/razorpay-order", farmerTok, nil)
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, true, out["isMock"])
	assert.Equal(t, 300000.0, field(out, "order", "amount"))
	orderID := field(out, "order", "id").(string)

	code, _ = s.do(http.MethodPost, "/api/bookings/"+bookingID+"/verify-payment", ownerTok,
		map[string]any{"razorpay_order_id": orderID})
	assert.Equal(t, http.StatusForbidden, code)

	code, out = s.do(http.MethodPost, "/api/bookings/"+bookingID+"/verify-payment", farmerTok,
		map[string]any{"razorpay_order_id": orderID, "razorpay_payment_id": "pay_mock"})
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, "paid", field(out, "booking", "paymentStatus"))
	assert.Equal(t, "completed", field(out, "transaction", "status"))
}

func TestAuthAndAssistantEdges(t *testing.T) {
	s := newServer(t)
	tok, _ := s.register("Ravi", "ravi@example.com", models.RoleFarmer)

	code, _ := s.do(http.MethodGet, "/api/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, out := s.do(http.MethodPost, "/api/users/register", "", map[string]any{
		"name": "Ravi", "email": "ravi@example.com", "password": "secret123", "role": "farmer",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, out["success"])

	code, out = s.do(http.MethodPost, "/api/users/login", "", map[string]any{"email": "ravi@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, out["token"])

	code, out = s.do(http.MethodGet, "/api/users/me", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, out["user"], "passwordHash")

	code, out = s.do(http.MethodPost, "/api/ai/chat", tok, map[string]any{"message": "When should I sow soybean?"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "assistant not configured", out["message"])

	code, out = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", out["status"])
}
