package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codemint.backend/internal/interfaces/http/response"
	"codemint.backend/internal/usecases"
)

// NotificationHandler handles the notification stack endpoints
type NotificationHandler struct {
	center *usecases.NotificationCenter
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(center *usecases.NotificationCenter) *NotificationHandler {
	return &NotificationHandler{center: center}
}

// ListNotifications returns the stack, newest first
// GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"notifications": h.center.List()})
}

// DismissNotification removes one notification
// DELETE /api/v1/notifications/:id
func (h *NotificationHandler) DismissNotification(c *gin.Context) {
	h.center.Dismiss(c.Param("id"))
	response.Success(c, http.StatusOK, gin.H{"dismissed": true})
}
