package handlers

import (
	"net/http"

	"cropconnect/realtime"
	"cropconnect/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler upgrades authenticated clients to a realtime socket.
type WSHandler struct {
	hub      *realtime.Hub
	tokens   *utils.JWTManager
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub, tokens *utils.JWTManager) *WSHandler {
	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle serves GET /api/ws?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		utils.JSONError(c, http.StatusUnauthorized, "token is required")
		return
	}
	claims, err := h.tokens.ValidateToken(raw)
	if err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		getLogger(c).Warn("websocket upgrade failed", zap.String("userId", claims.UserID), zap.Error(err))
		return
	}
	realtime.NewClient(conn, h.hub, claims.UserID).Run()
}
