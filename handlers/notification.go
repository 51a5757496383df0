package handlers

import (
	"net/http"

	"clipsynq/services/notification"
	"clipsynq/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Notifications notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{Notifications: svc}
}

func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	notifs, err := h.Notifications.List(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load notifications", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifs})
}

func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	if err := h.Notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to mark notification", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked read"})
}

func (h *NotificationHandler) DeleteNotificationHandler(c *gin.Context) {
	if err := h.Notifications.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to delete notification", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
