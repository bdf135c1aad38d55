package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minitweet/minitweet/internal/middleware"
	"github.com/minitweet/minitweet/internal/services"
	"github.com/minitweet/minitweet/pkg/logger"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	logger        *logger.Logger
}

func NewNotificationHandler(notifications *services.NotificationService, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger,
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	_, limit := parsePage(c)

	notifications, err := h.notifications.List(c.Request.Context(), middleware.GetUserID(c), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
