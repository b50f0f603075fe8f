package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/pkg/jwt"
	"github.com/d60-Lab/bookstore/pkg/response"
)

// gin 上下文中的键
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
	CtxToken    = "access_token"
)

// Authenticator 校验访问令牌，由 service.AuthService 实现
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*jwt.Claims, error)
}

// Auth 校验 Authorization: Bearer <token>，通过后写入用户 ID
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "authorization header is missing")
			c.Abort()
			return
		}
		claims, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if apperr.Is(err, apperr.KindUnauthorized) {
				response.Unauthorized(c, "invalid or expired token")
			} else {
				response.Error(c, err)
			}
			c.Abort()
			return
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxToken, token)
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserID 取出 Auth 写入的用户 ID
func UserID(c *gin.Context) int64 {
	return c.GetInt64(CtxUserID)
}
