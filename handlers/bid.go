package handlers

import (
	"net/http"

	"cropconnect/models"
	"cropconnect/services/bid"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BidHandler struct {
	Service bid.BidService
}

// Place handles POST /api/bids.
func (h *BidHandler) Place(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var terms models.BidTerms
	if !bind(c, &terms) {
		return
	}
	b, err := h.Service.Place(c.Request.Context(), a, terms)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"bid": b})
}

// Accept handles POST /api/bids/:id/accept and answers with the bid and its booking.
func (h *BidHandler) Accept(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.Service.Accept(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		fail(c, err)
		return
	}
	getLogger(c).Info("bid accepted", zap.String("bidId", res.Bid.ID), zap.String("bookingId", res.Booking.ID))
	respond(c, http.StatusOK, gin.H{"bid": res.Bid, "booking": res.Booking})
}

func (h *BidHandler) Reject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	b, err := h.Service.Reject(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"bid": b})
}

func (h *BidHandler) Withdraw(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	b, err := h.Service.Withdraw(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"bid": b})
}

func (h *BidHandler) ListForFarmer(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	bids, err := h.Service.ListForFarmer(c.Request.Context(), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"bids": bids})
}

func (h *BidHandler) ListMine(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	bids, err := h.Service.ListMine(c.Request.Context(), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"bids": bids})
}

func (h *BidHandler) ListForRequirement(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	bids, err := h.Service.ListForRequirement(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"bids": bids})
}
