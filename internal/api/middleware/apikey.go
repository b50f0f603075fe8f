package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookstore/pkg/response"
)

// APIKey 管理接口校验 X-API-KEY；未配置密钥时一律拒绝
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-API-KEY")
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			response.Unauthorized(c, "invalid or missing API key")
			c.Abort()
			return
		}
		c.Next()
	}
}
