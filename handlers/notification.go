package handlers

import (
	"net/http"

	"cropconnect/services/notification"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Service notification.NotificationService
}

// List handles GET /api/notifications?unread=true&limit=&offset=.
func (h *NotificationHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	unread := queryBool(c, "unread")
	inbox, err := h.Service.List(c.Request.Context(), a.ID, unread != nil && *unread,
		queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"notifications": inbox.Notifications, "unreadCount": inbox.UnreadCount})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Service.MarkRead(c.Request.Context(), a.ID, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	n, err := h.Service.MarkAllRead(c.Request.Context(), a.ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updated": n})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), a.ID, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Notification deleted"})
}
