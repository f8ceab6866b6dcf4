package handlers

import (
	"net/http"

	"cropconnect/models"
	"cropconnect/services/review"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	Service review.ReviewService
}

func (h *ReviewHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in models.ReviewInput
	if !bind(c, &in) {
		return
	}
	r, err := h.Service.Create(c.Request.Context(), a, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"review": r})
}

func (h *ReviewHandler) ListForUser(c *gin.Context) {
	list, err := h.Service.ListForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"reviews": list})
}
