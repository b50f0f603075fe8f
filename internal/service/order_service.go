package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
	"github.com/d60-Lab/bookstore/pkg/logger"
)

const (
	maxOrderLines  = 10
	maxItemQty     = 5
	maxOrderLimit  = 50
	orderNoPrefix  = "ORD"
	orderNoLayout  = "20060102150405"
	orderNoRandLen = 8
)

var tracer = otel.Tracer("github.com/d60-Lab/bookstore/internal/service")

// OrderItemRequest 下单行
type OrderItemRequest struct {
	BookID   int64
	Quantity int
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	AddressID     int64
	PaymentMethod string
	Items         []OrderItemRequest
}

// OrderService 订单生命周期：
//
//	PENDING --pay--> PAID --ship--> SHIPPED --confirm--> COMPLETED
//	PENDING --cancel--> CANCELLED
type OrderService interface {
	CreateOrder(ctx context.Context, userID int64, req CreateOrderRequest) (*model.Order, error)
	CancelOrder(ctx context.Context, userID, orderID int64) (*model.Order, error)
	PayOrder(ctx context.Context, userID, orderID int64) (*model.Order, error)
	// ShipOrder 由后台调用，不校验用户归属
	ShipOrder(ctx context.Context, orderID int64) (*model.Order, error)
	ConfirmReceipt(ctx context.Context, userID, orderID int64) (*model.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*model.Order, error)
	ListOrders(ctx context.Context, userID int64, status string, page, limit int) (*Page[model.Order], error)
}

type orderService struct {
	orders    repository.OrderRepository
	addresses repository.AddressRepository
	uow       repository.UnitOfWork
	now       func() time.Time
}

func NewOrderService(repos *repository.Repos, uow repository.UnitOfWork) OrderService {
	return &orderService{
		orders:    repos.Orders,
		addresses: repos.Addresses,
		uow:       uow,
		now:       time.Now,
	}
}

// newOrderNo ORD + 秒级时间 + 8 位随机十六进制
func (s *orderService) newOrderNo() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:orderNoRandLen]
	return orderNoPrefix + s.now().Format(orderNoLayout) + suffix
}

func validateCreate(req CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return apperr.BadRequest("order must contain at least one item")
	}
	if len(req.Items) > maxOrderLines {
		return apperr.BadRequest("order can contain at most %d items", maxOrderLines)
	}
	if req.AddressID < 1 {
		return apperr.BadRequest("addressId is required")
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return apperr.BadRequest("paymentMethod is required")
	}
	seen := make(map[int64]struct{}, len(req.Items))
	for _, it := range req.Items {
		if it.BookID < 1 {
			return apperr.BadRequest("invalid book id %d", it.BookID)
		}
		if it.Quantity < 1 || it.Quantity > maxItemQty {
			return apperr.BadRequest("quantity of book %d must be between 1 and %d", it.BookID, maxItemQty)
		}
		if _, dup := seen[it.BookID]; dup {
			return apperr.BadRequest("book %d appears more than once", it.BookID)
		}
		seen[it.BookID] = struct{}{}
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", apperr.KindOf(err).String()))
	}
	span.End()
}

func (s *orderService) CreateOrder(ctx context.Context, userID int64, req CreateOrderRequest) (order *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int("order.lines", len(req.Items)),
	))
	defer func() { endSpan(span, err) }()

	if err = validateCreate(req); err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(tx *repository.Repos) error {
		addr, err := tx.Addresses.Get(ctx, userID, req.AddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("address %d not found", req.AddressID)
			}
			return err
		}

		items := make([]model.OrderItem, 0, len(req.Items))
		total := decimal.Zero
		for _, it := range req.Items {
			snap, err := tx.Inventory.Snapshot(ctx, it.BookID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("book %d not found", it.BookID)
				}
				return err
			}
			if snap.StockQuantity < it.Quantity {
				return apperr.BadRequest("insufficient stock for %q: %d left", snap.Title, snap.StockQuantity)
			}
			line := model.OrderItem{
				BookID:    it.BookID,
				BookTitle: snap.Title,
				BookCover: snap.CoverImage,
				Quantity:  it.Quantity,
				UnitPrice: snap.SellingPrice,
			}
			total = total.Add(line.Subtotal())
			items = append(items, line)
		}

		o := &model.Order{
			OrderNo:       s.newOrderNo(),
			UserID:        userID,
			AddressID:     req.AddressID,
			TotalAmount:   total,
			FinalAmount:   total,
			Status:        model.OrderStatusPending,
			PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		}
		if err := tx.Orders.Create(ctx, o); err != nil {
			return err
		}
		if err := tx.Orders.CreateItems(ctx, o.ID, items); err != nil {
			return err
		}

		for _, it := range items {
			n, err := tx.Inventory.Decrease(ctx, it.BookID, it.Quantity)
			if err != nil {
				return err
			}
			if n == 0 {
				return apperr.StockConflict(it.BookID)
			}
		}

		if err := tx.Orders.AppendEvent(ctx, o.ID, "", model.OrderStatusPending); err != nil {
			return err
		}

		o.Items = items
		o.Address = addressBrief(addr)
		order = o
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrStockConflict) {
			logger.Warn("order rolled back on stock conflict", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("order.no", order.OrderNo))
	logger.Info("order created",
		zap.String("order_no", order.OrderNo),
		zap.Int64("user_id", userID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	return order, nil
}

func addressBrief(a *model.UserAddress) *model.AddressBrief {
	if a == nil {
		return nil
	}
	return &model.AddressBrief{
		Name:   a.RecipientName,
		Phone:  a.RecipientPhone,
		Detail: fmt.Sprintf("%s %s %s %s", a.Province, a.City, a.District, a.DetailAddress),
	}
}

// transition 描述一次状态流转
type transition struct {
	name  string
	from  model.OrderStatus
	to    model.OrderStatus
	load  func(ctx context.Context, tx *repository.Repos) (*model.Order, error)
	after func(ctx context.Context, tx *repository.Repos, o *model.Order) error
}

// apply 在一个事务里：读取订单、校验源状态、条件更新、执行附带动作、记录流转事件。
// 条件更新未命中说明并发请求已经改变了状态。
func (s *orderService) apply(ctx context.Context, orderID int64, t transition) (order *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "OrderService."+t.name, trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.to", string(t.to)),
	))
	defer func() { endSpan(span, err) }()

	err = s.uow.Do(ctx, func(tx *repository.Repos) error {
		o, err := t.load(ctx, tx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order %d not found", orderID)
			}
			return err
		}
		if o.Status != t.from {
			return apperr.BadRequest("order %s cannot be %s: status is %s, expected %s", o.OrderNo, pastTense(t.to), o.Status, t.from)
		}
		n, err := tx.Orders.UpdateStatus(ctx, o.ID, t.from, t.to)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.BadRequest("order %s cannot be %s: status is no longer %s", o.OrderNo, pastTense(t.to), t.from)
		}

		items, err := tx.Orders.Items(ctx, o.ID)
		if err != nil {
			return err
		}
		o.Items = items
		if t.after != nil {
			if err := t.after(ctx, tx, o); err != nil {
				return err
			}
		}
		if err := tx.Orders.AppendEvent(ctx, o.ID, t.from, t.to); err != nil {
			return err
		}
		o.Status = t.to
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("order status changed",
		zap.String("order_no", order.OrderNo),
		zap.String("from", string(t.from)),
		zap.String("to", string(t.to)),
	)
	return order, nil
}

func pastTense(to model.OrderStatus) string {
	switch to {
	case model.OrderStatusPaid:
		return "paid"
	case model.OrderStatusShipped:
		return "shipped"
	case model.OrderStatusCompleted:
		return "completed"
	case model.OrderStatusCancelled:
		return "cancelled"
	default:
		return strings.ToLower(string(to))
	}
}

func ownedBy(userID, orderID int64) func(context.Context, *repository.Repos) (*model.Order, error) {
	return func(ctx context.Context, tx *repository.Repos) (*model.Order, error) {
		return tx.Orders.GetForUser(ctx, userID, orderID)
	}
}

// CancelOrder 只允许取消待支付订单，同事务回补全部库存
func (s *orderService) CancelOrder(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	return s.apply(ctx, orderID, transition{
		name: "CancelOrder",
		from: model.OrderStatusPending,
		to:   model.OrderStatusCancelled,
		load: ownedBy(userID, orderID),
		after: func(ctx context.Context, tx *repository.Repos, o *model.Order) error {
			for _, it := range o.Items {
				if err := tx.Inventory.Increase(ctx, it.BookID, it.Quantity); err != nil {
					return err
				}
			}
			return nil
		},
	})
}

// PayOrder 模拟支付，不对接支付网关
func (s *orderService) PayOrder(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	return s.apply(ctx, orderID, transition{
		name: "PayOrder",
		from: model.OrderStatusPending,
		to:   model.OrderStatusPaid,
		load: ownedBy(userID, orderID),
	})
}

func (s *orderService) ShipOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return s.apply(ctx, orderID, transition{
		name: "ShipOrder",
		from: model.OrderStatusPaid,
		to:   model.OrderStatusShipped,
		load: func(ctx context.Context, tx *repository.Repos) (*model.Order, error) {
			return tx.Orders.GetByID(ctx, orderID)
		},
	})
}

func (s *orderService) ConfirmReceipt(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	return s.apply(ctx, orderID, transition{
		name: "ConfirmReceipt",
		from: model.OrderStatusShipped,
		to:   model.OrderStatusCompleted,
		load: ownedBy(userID, orderID),
	})
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID int64) (order *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer func() { endSpan(span, err) }()

	o, err := s.orders.GetForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order %d not found", orderID)
		}
		return nil, err
	}
	if o.Items, err = s.orders.Items(ctx, o.ID); err != nil {
		return nil, err
	}
	if o.Events, err = s.orders.Events(ctx, o.ID); err != nil {
		return nil, err
	}
	addr, err := s.addresses.Get(ctx, userID, o.AddressID)
	switch {
	case err == nil:
		o.Address = addressBrief(addr)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return o, nil
}

// ListOrders status 大小写不敏感，空或 all 表示全部
func (s *orderService) ListOrders(ctx context.Context, userID int64, status string, page, limit int) (result *Page[model.Order], err error) {
	ctx, span := tracer.Start(ctx, "OrderService.ListOrders", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("order.status", status),
	))
	defer func() { endSpan(span, err) }()

	offset, err := checkPage(page, limit, maxOrderLimit)
	if err != nil {
		return nil, err
	}
	orders, total, err := s.orders.ListByUser(ctx, userID, model.ParseStatusFilter(status), offset, limit)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].Items, err = s.orders.Items(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return &Page[model.Order]{Items: orders, Total: total, Page: page, Limit: limit}, nil
}
