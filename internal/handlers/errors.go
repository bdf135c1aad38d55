package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minitweet/minitweet/internal/models"
	"github.com/minitweet/minitweet/pkg/logger"
)

// respondError 按错误类别映射状态码, 未识别的错误记录日志后返回 500
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": verr.Fields(),
		})
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		body := gin.H{"error": err.Error()}
		if fields := conflictFields(err); len(fields) > 0 {
			body["fields"] = fields
		}
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, models.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func conflictFields(err error) map[string][]string {
	fields := make(map[string][]string)
	if errors.Is(err, models.ErrDuplicateUsername) {
		fields["username"] = []string{"A user with that username already exists."}
	}
	if errors.Is(err, models.ErrDuplicateEmail) {
		fields["email"] = []string{"A user with that email already exists."}
	}
	return fields
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
