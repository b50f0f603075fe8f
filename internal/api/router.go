// Package api 组装 gin 路由与中间件
package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/bookstore/config"
	_ "github.com/d60-Lab/bookstore/docs"
	"github.com/d60-Lab/bookstore/internal/api/handler"
	"github.com/d60-Lab/bookstore/internal/api/middleware"
)

// NewRouter 注册全部路由；auth 用于校验访问令牌
func NewRouter(cfg *config.Config, h *handler.Handler, auth middleware.Authenticator) (*gin.Engine, error) {
	gin.SetMode(cfg.Server.Mode)
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/swagger/"})))

	r.GET("/health", h.Health)
	if cfg.Server.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := r.Group("/api")
	if cfg.RateLimit.Enabled {
		apiGroup.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}
	requireAuth := middleware.Auth(auth)

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh-token", h.RefreshToken)
		authGroup.POST("/logout", requireAuth, h.Logout)
	}

	books := apiGroup.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/hot", h.HotBooks)
		books.GET("/new", h.NewBooks)
		books.GET("/category/:categoryId", h.BooksByCategory)
		books.GET("/:id", h.GetBook)
		books.GET("/:id/related", h.RelatedBooks)
	}

	categories := apiGroup.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/tree", h.CategoryTree)
		categories.GET("/slug/:slug", h.CategoryBySlug)
		categories.GET("/:id", h.GetCategory)
	}
	apiGroup.GET("/carousels", h.ListCarousels)

	user := apiGroup.Group("/user", requireAuth)
	{
		user.GET("/profile", h.GetProfile)
		user.PUT("/profile", h.UpdateProfile)
		user.POST("/change-password", h.ChangePassword)
		user.GET("/stats", h.GetStats)

		user.GET("/addresses", h.ListAddresses)
		user.POST("/addresses", h.CreateAddress)
		user.GET("/addresses/default", h.GetDefaultAddress)
		user.GET("/addresses/:addressId", h.GetAddress)
		user.PUT("/addresses/:addressId", h.UpdateAddress)
		user.DELETE("/addresses/:addressId", h.DeleteAddress)
		user.PATCH("/addresses/:addressId/default", h.SetDefaultAddress)
	}

	orders := apiGroup.Group("/orders", requireAuth)
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:orderId", h.GetOrder)
		orders.POST("/:orderId/cancel", h.CancelOrder)
		orders.POST("/:orderId/pay", h.PayOrder)
		orders.POST("/:orderId/confirm", h.ConfirmReceipt)
	}

	wishlist := apiGroup.Group("/wishlist", requireAuth)
	{
		wishlist.GET("", h.ListWishlist)
		wishlist.POST("/:bookId", h.AddWishlist)
		wishlist.DELETE("/:bookId", h.RemoveWishlist)
		wishlist.GET("/:bookId/check", h.CheckWishlist)
	}

	admin := apiGroup.Group("/admin", middleware.APIKey(cfg.Admin.APIKey))
	{
		admin.POST("/orders/:orderId/ship", h.ShipOrder)
	}

	return r, nil
}
