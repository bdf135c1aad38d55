package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minitweet/minitweet/internal/services"
)

const defaultPageSize = 20

type pageQuery struct {
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

// parsePage 解析失败时使用默认值, limit 限制在 1..MaxPageSize
func parsePage(c *gin.Context) (offset, limit int) {
	limit = defaultPageSize
	var query pageQuery
	if err := c.ShouldBindQuery(&query); err == nil {
		if query.Offset > 0 {
			offset = query.Offset
		}
		if query.Limit > 0 {
			limit = query.Limit
		}
	}
	if limit > services.MaxPageSize {
		limit = services.MaxPageSize
	}
	return offset, limit
}

// parseID 非法的 id 与不存在的 id 同样处理
func parseID(c *gin.Context, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
