package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/service"
	"github.com/d60-Lab/bookstore/pkg/response"
)

type orderItemRequest struct {
	BookID   int64 `json:"book_id" binding:"required,gt=0"`
	Quantity int   `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	AddressID     int64              `json:"address_id" binding:"required,gt=0"`
	PaymentMethod string             `json:"payment_method" binding:"required,max=20"`
	Items         []orderItemRequest `json:"items" binding:"required,dive"`
}

// CreateOrder 下单
// @Summary 创建订单
// @Description 校验库存并扣减，单价与书名按下单时快照保存
// @Tags 订单
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createOrderRequest true "下单信息"
// @Success 201 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	in := service.CreateOrderRequest{AddressID: req.AddressID, PaymentMethod: req.PaymentMethod}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.OrderItemRequest{BookID: it.BookID, Quantity: it.Quantity})
	}
	o, err := h.orderService.CreateOrder(c.Request.Context(), currentUser(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, o)
}

// ListOrders 我的订单
// @Summary 订单列表
// @Tags 订单
// @Security BearerAuth
// @Param status query string false "PENDING | PAID | SHIPPED | COMPLETED | CANCELLED | all"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=response.PageResult}
// @Router /api/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	page, limit, ok := paging(c, 10)
	if !ok {
		return
	}
	p, err := h.orderService.ListOrders(c.Request.Context(), currentUser(c), c.Query("status"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pageOf(p))
}

// GetOrder 订单详情
// @Summary 订单详情
// @Tags 订单
// @Security BearerAuth
// @Param orderId path int true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 404 {object} response.Response
// @Router /api/orders/{orderId} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	h.orderAction(c, h.orderService.GetOrder)
}

// CancelOrder 取消订单并回补库存
// @Summary 取消订单
// @Tags 订单
// @Security BearerAuth
// @Param orderId path int true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Router /api/orders/{orderId}/cancel [post]
func (h *Handler) CancelOrder(c *gin.Context) {
	h.orderAction(c, h.orderService.CancelOrder)
}

// PayOrder 支付
// @Summary 支付订单
// @Tags 订单
// @Security BearerAuth
// @Param orderId path int true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Router /api/orders/{orderId}/pay [post]
func (h *Handler) PayOrder(c *gin.Context) {
	h.orderAction(c, h.orderService.PayOrder)
}

// ConfirmReceipt 确认收货
// @Summary 确认收货
// @Tags 订单
// @Security BearerAuth
// @Param orderId path int true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Router /api/orders/{orderId}/confirm [post]
func (h *Handler) ConfirmReceipt(c *gin.Context) {
	h.orderAction(c, h.orderService.ConfirmReceipt)
}

// ShipOrder 后台发货
// @Summary 发货
// @Tags 后台
// @Security ApiKeyAuth
// @Param orderId path int true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Router /api/admin/orders/{orderId}/ship [post]
func (h *Handler) ShipOrder(c *gin.Context) {
	id, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	o, err := h.orderService.ShipOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, o)
}

func (h *Handler) orderAction(c *gin.Context, fn func(ctx context.Context, userID, orderID int64) (*model.Order, error)) {
	id, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	o, err := fn(c.Request.Context(), currentUser(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, o)
}
