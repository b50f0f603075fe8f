package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookstore/config"
)

// CORS 跨域配置；allow_origins 为空或包含 * 时放开所有来源
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", HeaderRequestID},
		MaxAge:        cfg.MaxAge,
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 12 * time.Hour
	}
	wildcard := len(cfg.AllowOrigins) == 0
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
		c.AllowCredentials = true
	}
	return cors.New(c)
}
