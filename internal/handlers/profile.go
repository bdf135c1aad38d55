package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minitweet/minitweet/internal/middleware"
	"github.com/minitweet/minitweet/internal/services"
	"github.com/minitweet/minitweet/pkg/logger"
)

type ProfileHandler struct {
	profiles *services.ProfileService
	logger   *logger.Logger
}

func NewProfileHandler(profiles *services.ProfileService, logger *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger,
	}
}

func (h *ProfileHandler) View(c *gin.Context) {
	profile, err := h.profiles.View(c.Request.Context(), middleware.GetUserID(c), c.Param("username"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Follow(c *gin.Context) {
	username := c.Param("username")
	if _, err := h.profiles.Follow(c.Request.Context(), middleware.GetUserID(c), username); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Followed successfully", "username": username})
}

func (h *ProfileHandler) Unfollow(c *gin.Context) {
	username := c.Param("username")
	if err := h.profiles.Unfollow(c.Request.Context(), middleware.GetUserID(c), username); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed successfully", "username": username})
}

func (h *ProfileHandler) Followers(c *gin.Context) {
	offset, limit := parsePage(c)
	followers, err := h.profiles.Followers(c.Request.Context(), c.Param("username"), offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"followers": followers,
		"offset":    offset,
		"limit":     limit,
	})
}

func (h *ProfileHandler) Following(c *gin.Context) {
	offset, limit := parsePage(c)
	following, err := h.profiles.Following(c.Request.Context(), c.Param("username"), offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following": following,
		"offset":    offset,
		"limit":     limit,
	})
}
