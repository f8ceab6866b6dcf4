package handlers

import (
	"net/http"

	"cropconnect/middleware"
	"cropconnect/models"
	"cropconnect/services/requirement"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RequirementHandler struct {
	Service requirement.RequirementService
}

// List handles GET /api/requirements?kind=&workType=&district=&state=&status=.
func (h *RequirementHandler) List(c *gin.Context) {
	filter := models.RequirementFilter{
		Kind:     models.ServiceType(c.Query("kind")),
		WorkType: c.Query("workType"),
		District: c.Query("district"),
		State:    c.Query("state"),
		Status:   models.RequirementStatus(c.Query("status")),
	}
	var viewer *models.Actor
	if a, ok := middleware.Actor(c); ok {
		viewer = &a
	}
	list, err := h.Service.List(c.Request.Context(), viewer, filter)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"requirements": list})
}

func (h *RequirementHandler) Get(c *gin.Context) {
	req, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"requirement": req})
}

func (h *RequirementHandler) ListMine(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	list, err := h.Service.ListMine(c.Request.Context(), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"requirements": list})
}

// Post handles POST /api/requirements.
func (h *RequirementHandler) Post(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in models.RequirementInput
	if !bind(c, &in) {
		return
	}
	req, err := h.Service.Post(c.Request.Context(), a, in)
	if err != nil {
		fail(c, err)
		return
	}
	getLogger(c).Info("requirement posted", zap.String("requirementId", req.ID), zap.String("farmerId", a.ID))
	respond(c, http.StatusCreated, gin.H{"requirement": req})
}

// Withdraw handles DELETE /api/requirements/:id.
func (h *RequirementHandler) Withdraw(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Service.Withdraw(c.Request.Context(), c.Param("id"), a); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Requirement withdrawn"})
}

func (h *RequirementHandler) Cancel(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	req, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"requirement": req})
}

// Apply handles POST /api/requirements/:id/apply.
func (h *RequirementHandler) Apply(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	req, err := h.Service.Apply(c.Request.Context(), c.Param("id"), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"requirement": req})
}

func (h *RequirementHandler) AcceptApplicant(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	b, err := h.Service.AcceptApplicant(c.Request.Context(), c.Param("id"), c.Param("workerId"), a)
	if err != nil {
		fail(c, err)
		return
	}
	getLogger(c).Info("applicant accepted", zap.String("requirementId", c.Param("id")), zap.String("bookingId", b.ID))
	respond(c, http.StatusOK, gin.H{"booking": b})
}

func (h *RequirementHandler) RejectApplicant(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	req, err := h.Service.RejectApplicant(c.Request.Context(), c.Param("id"), c.Param("workerId"), a)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"requirement": req})
}
