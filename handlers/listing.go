package handlers

import (
	"net/http"

	"cropconnect/models"
	"cropconnect/services/listing"

	"github.com/gin-gonic/gin"
)

// ListingHandler serves the tractor and worker listings under /api/services.
type ListingHandler struct {
	Service listing.ListingService
}

func listingFilter(c *gin.Context) models.ListingFilter {
	return models.ListingFilter{
		District:  c.Query("district"),
		WorkType:  c.Query("workType"),
		Skill:     c.Query("skill"),
		Gender:    models.Gender(c.Query("gender")),
		Available: queryBool(c, "available"),
	}
}

func (h *ListingHandler) ListTractors(c *gin.Context) {
	list, err := h.Service.ListTractors(c.Request.Context(), listingFilter(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"tractors": list})
}

func (h *ListingHandler) GetTractor(c *gin.Context) {
	t, err := h.Service.GetTractor(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"tractor": t})
}

func (h *ListingHandler) CreateTractor(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in models.TractorInput
	if !bind(c, &in) {
		return
	}
	t, err := h.Service.CreateTractor(c.Request.Context(), a, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"tractor": t})
}

func (h *ListingHandler) UpdateTractor(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in models.TractorInput
	if !bind(c, &in) {
		return
	}
	t, err := h.Service.UpdateTractor(c.Request.Context(), c.Param("id"), a, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"tractor": t})
}

func (h *ListingHandler) DeleteTractor(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteTractor(c.Request.Context(), c.Param("id"), a); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Tractor listing removed"})
}

func (h *ListingHandler) AddTractorImage(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	file, ok := formImage(c)
	if !ok {
		return
	}
	defer file.Close()

	t, err := h.Service.AddTractorImage(c.Request.Context(), c.Param("id"), a, file)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"tractor": t})
}

func (h *ListingHandler) ListWorkers(c *gin.Context) {
	list, err := h.Service.ListWorkers(c.Request.Context(), listingFilter(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"workers": list})
}

func (h *ListingHandler) GetWorker(c *gin.Context) {
	w, err := h.Service.GetWorker(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"worker": w})
}

// UpsertWorker handles PUT /api/services/workers/me.
func (h *ListingHandler) UpsertWorker(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in models.WorkerInput
	if !bind(c, &in) {
		return
	}
	w, err := h.Service.UpsertWorkerProfile(c.Request.Context(), a, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"worker": w})
}

func (h *ListingHandler) AddWorkerImage(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	file, ok := formImage(c)
	if !ok {
		return
	}
	defer file.Close()

	w, err := h.Service.AddWorkerImage(c.Request.Context(), a, file)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"worker": w})
}
