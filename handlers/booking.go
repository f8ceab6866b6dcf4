package handlers

import (
	"net/http"

	"cropconnect/models"
	"cropconnect/services/booking"
	"cropconnect/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the booking lifecycle and the online checkout of a booking.
type BookingHandler struct {
	Bookings booking.BookingService
	Payments payment.PaymentService
}

// Create handles POST /api/bookings (direct booking of a listed service).
func (h *BookingHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in models.DirectBookingInput
	if !bind(c, &in) {
		return
	}
	b, err := h.Bookings.CreateDirect(c.Request.Context(), a, in)
	if err != nil {
		fail(c, err)
		return
	}
	getLogger(c).Info("booking created", zap.String("bookingId", b.ID), zap.String("providerId", b.ProviderID))
	respond(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *BookingHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	list, err := h.Bookings.ListForUser(c.Request.Context(), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	b, err := h.Bookings.Get(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) Complete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	b, err := h.Bookings.MarkComplete(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	b, err := h.Bookings.Cancel(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"booking": b})
}

// CreateOrder handles POST /api/bookings/:id/razorpay-order.
func (h *BookingHandler) CreateOrder(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	checkout, err := h.Payments.Initiate(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": checkout.Order, "key": checkout.Key, "isMock": checkout.IsMock})
}

// VerifyPayment handles POST /api/bookings/:id/verify-payment.
func (h *BookingHandler) VerifyPayment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in models.PaymentVerification
	if !bind(c, &in) {
		return
	}
	s, err := h.Payments.Verify(c.Request.Context(), c.Param("id"), a, in)
	if err != nil {
		fail(c, err)
		return
	}
	getLogger(c).Info("online payment verified", zap.String("bookingId", s.Booking.ID), zap.String("transactionId", s.Transaction.ID))
	respond(c, http.StatusOK, gin.H{"booking": s.Booking, "transaction": s.Transaction})
}
