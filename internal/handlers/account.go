package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minitweet/minitweet/internal/config"
	"github.com/minitweet/minitweet/internal/middleware"
	"github.com/minitweet/minitweet/internal/services"
	"github.com/minitweet/minitweet/pkg/logger"
)

type AccountHandler struct {
	accounts     *services.AccountService
	cookieName   string
	secureCookie bool
	logger       *logger.Logger
}

func NewAccountHandler(accounts *services.AccountService, jwtCfg *config.JWTConfig, serverCfg *config.ServerConfig, logger *logger.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:     accounts,
		cookieName:   jwtCfg.CookieName,
		secureCookie: serverCfg.Mode == "release",
		logger:       logger,
	}
}

func (h *AccountHandler) SignUp(c *gin.Context) {
	var req services.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	session, err := h.accounts.SignUp(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setSessionCookie(c, session)
	c.JSON(http.StatusCreated, session)
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	session, err := h.accounts.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setSessionCookie(c, session)
	c.JSON(http.StatusOK, session)
}

func (h *AccountHandler) Logout(c *gin.Context) {
	if err := h.accounts.Logout(c.Request.Context(), middleware.GetClaims(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AccountHandler) setSessionCookie(c *gin.Context, session *services.Session) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, session.Token, maxAge, "/", "", h.secureCookie, true)
}
