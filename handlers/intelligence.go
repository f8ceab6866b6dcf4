package handlers

import (
	"net/http"

	"cropconnect/models"
	"cropconnect/services/intelligence"

	"github.com/gin-gonic/gin"
)

// AIHandler serves the farming chat assistant.
type AIHandler struct {
	Service intelligence.AssistantService
}

// Chat handles POST /api/ai/chat.
func (h *AIHandler) Chat(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.AIRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Service.Chat(c.Request.Context(), a.ID, req.Message)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"reply": res.Reply, "turns": res.Turns})
}

// Reset handles DELETE /api/ai/chat.
func (h *AIHandler) Reset(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Service.Reset(c.Request.Context(), a.ID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Conversation cleared"})
}
