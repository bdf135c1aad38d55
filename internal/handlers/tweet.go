package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minitweet/minitweet/internal/middleware"
	"github.com/minitweet/minitweet/internal/models"
	"github.com/minitweet/minitweet/internal/services"
	"github.com/minitweet/minitweet/pkg/logger"
)

type TweetHandler struct {
	timeline *services.TimelineService
	logger   *logger.Logger
}

func NewTweetHandler(timeline *services.TimelineService, logger *logger.Logger) *TweetHandler {
	return &TweetHandler{
		timeline: timeline,
		logger:   logger,
	}
}

type CreateTweetRequest struct {
	Content string `json:"content"`
}

// Home limit 缺省时使用配置的默认值
func (h *TweetHandler) Home(c *gin.Context) {
	var query struct {
		Limit int `form:"limit" binding:"omitempty,min=1"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, "limit must be a positive integer")
		return
	}

	tweets, err := h.timeline.Home(c.Request.Context(), middleware.GetUserID(c), query.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tweets": tweets})
}

func (h *TweetHandler) Create(c *gin.Context) {
	var req CreateTweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	tweet, err := h.timeline.CreateTweet(c.Request.Context(), middleware.GetUserID(c), req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tweet": tweet})
}

func (h *TweetHandler) View(c *gin.Context) {
	id, err := parseID(c, models.ErrTweetNotFound)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	tweet, err := h.timeline.ViewTweet(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tweet": tweet})
}

func (h *TweetHandler) Delete(c *gin.Context) {
	id, err := parseID(c, models.ErrTweetNotFound)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.timeline.DeleteTweet(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tweet deleted successfully"})
}

func (h *TweetHandler) Like(c *gin.Context) {
	id, err := parseID(c, models.ErrTweetNotFound)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.timeline.Like(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TweetHandler) Unlike(c *gin.Context) {
	id, err := parseID(c, models.ErrTweetNotFound)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.timeline.Unlike(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
