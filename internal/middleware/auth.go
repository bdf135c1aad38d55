package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minitweet/minitweet/internal/auth"
)

const (
	contextKeyUserID = "user_id"
	contextKeyClaims = "claims"
)

type tokenValidator interface {
	Validate(tokenString string) (*auth.Claims, error)
}

type revocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NewJWTAuth 从 Authorization: Bearer 或会话 cookie 中读取令牌.
// 令牌缺失, 无效, 已吊销, 或吊销状态无法确认时一律返回 401.
func NewJWTAuth(tokens tokenValidator, revoker revocationChecker, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractToken(c, cookieName)
		if tokenString == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil || revoked {
			abortUnauthorized(c)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(contextKeyUserID, userID)
		c.Set(contextKeyClaims, claims)
		c.Next()
	}
}

// ExtractToken 优先使用 Authorization 头
func ExtractToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil {
			return cookie
		}
	}
	return ""
}

func GetUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(contextKeyUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(contextKeyClaims); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
}
