package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minitweet/minitweet/internal/middleware"
	"github.com/minitweet/minitweet/pkg/logger"
)

type Handlers struct {
	Account      *AccountHandler
	Profile      *ProfileHandler
	Tweet        *TweetHandler
	Notification *NotificationHandler
}

// NewRouter requireAuth 保护除注册, 登录和健康检查之外的全部路由
func NewRouter(log *logger.Logger, requireAuth gin.HandlerFunc, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log.Logger))

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api := router.Group("/api/v1")
	{
		accounts := api.Group("/accounts")
		{
			accounts.POST("/signup", h.Account.SignUp)
			accounts.POST("/login", h.Account.Login)
			accounts.POST("/logout", requireAuth, h.Account.Logout)
		}

		protected := api.Group("")
		protected.Use(requireAuth)
		{
			protected.GET("/users/:username", h.Profile.View)
			protected.POST("/users/:username/follow", h.Profile.Follow)
			protected.POST("/users/:username/unfollow", h.Profile.Unfollow)
			protected.GET("/users/:username/followers", h.Profile.Followers)
			protected.GET("/users/:username/following", h.Profile.Following)

			protected.GET("/tweets", h.Tweet.Home)
			protected.POST("/tweets", h.Tweet.Create)
			protected.GET("/tweets/:id", h.Tweet.View)
			protected.DELETE("/tweets/:id", h.Tweet.Delete)
			protected.POST("/tweets/:id/like", h.Tweet.Like)
			protected.POST("/tweets/:id/unlike", h.Tweet.Unlike)

			protected.GET("/notifications", h.Notification.List)
		}
	}

	return router
}
