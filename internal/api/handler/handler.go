package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookstore/internal/api/middleware"
	"github.com/d60-Lab/bookstore/internal/service"
	"github.com/d60-Lab/bookstore/pkg/response"
)

// Pinger 健康检查依赖
type Pinger func(ctx context.Context) error

// Handler 汇总所有 HTTP 接口
type Handler struct {
	authService     service.AuthService
	userService     service.UserService
	catalogService  service.CatalogService
	addressService  service.AddressService
	orderService    service.OrderService
	wishlistService service.WishlistService
	checks          map[string]Pinger
}

// Services 构造 Handler 所需的服务
type Services struct {
	Auth     service.AuthService
	User     service.UserService
	Catalog  service.CatalogService
	Address  service.AddressService
	Order    service.OrderService
	Wishlist service.WishlistService
}

func New(s Services, checks map[string]Pinger) *Handler {
	return &Handler{
		authService:     s.Auth,
		userService:     s.User,
		catalogService:  s.Catalog,
		addressService:  s.Address,
		orderService:    s.Order,
		wishlistService: s.Wishlist,
		checks:          checks,
	}
}

// pathID 解析路径中的正整数 ID，失败时已写回 400
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt 缺省时返回 def，非数字时写回 400
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(c, key+" must be an integer")
		return 0, false
	}
	return n, true
}

func paging(c *gin.Context, defLimit int) (page, limit int, ok bool) {
	if page, ok = queryInt(c, "page", 1); !ok {
		return
	}
	limit, ok = queryInt(c, "limit", defLimit)
	return
}

func pageOf[T any](p *service.Page[T]) response.PageResult {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return response.NewPage(items, p.Total, p.Page, p.Limit)
}

func currentUser(c *gin.Context) int64 {
	return middleware.UserID(c)
}
