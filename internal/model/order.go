package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态，存储为大写枚举名
type OrderStatus string

// OrderStatus 订单状态常量
const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatusAll 列表查询时表示不过滤状态
const OrderStatusAll = "all"

// Terminal 是否为终态
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ParseStatusFilter 规范化列表查询的状态参数（大小写不敏感）。
// 返回空串表示不过滤。
func ParseStatusFilter(raw string) OrderStatus {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, OrderStatusAll) {
		return ""
	}
	return OrderStatus(strings.ToUpper(raw))
}

// Order 订单聚合根，Items 只随订单一起创建
type Order struct {
	ID            int64           `json:"id"`
	OrderNo       string          `json:"order_no"`
	UserID        int64           `json:"user_id"`
	AddressID     int64           `json:"address_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	FinalAmount   decimal.Decimal `json:"final_amount"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Items   []OrderItem   `json:"items,omitempty"`
	Address *AddressBrief `json:"address,omitempty"`
	Events  []OrderEvent  `json:"events,omitempty"`
}

// OrderItem 订单项；书名、封面、单价均为下单时快照
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	BookID    int64           `json:"book_id"`
	BookTitle string          `json:"book_title"`
	BookCover string          `json:"book_cover"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal 单价 × 数量
func (it OrderItem) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// OrderEvent 订单状态流转记录
type OrderEvent struct {
	ID         int64       `json:"id"`
	OrderID    int64       `json:"order_id"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// AddressBrief 订单详情里展示的收货信息
type AddressBrief struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Detail string `json:"detail"`
}
