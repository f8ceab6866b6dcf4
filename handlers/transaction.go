package handlers

import (
	"net/http"

	"cropconnect/models"
	"cropconnect/services/payment"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	Payments payment.PaymentService
}

// PayAfterWork handles POST /api/transactions/pay-after-work.
func (h *TransactionHandler) PayAfterWork(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in models.OfflinePayment
	if !bind(c, &in) {
		return
	}
	s, err := h.Payments.RecordCash(c.Request.Context(), a, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"transaction": s.Transaction, "booking": s.Booking})
}

func (h *TransactionHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	list, err := h.Payments.ListForUser(c.Request.Context(), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"transactions": list})
}

func (h *TransactionHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	t, err := h.Payments.Get(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"transaction": t})
}
