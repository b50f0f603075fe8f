package repository

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/model"
)

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 创建订单头，回填 ID 与时间戳
	Create(ctx context.Context, order *model.Order) error

	// CreateItems 批量写入订单项快照
	CreateItems(ctx context.Context, orderID int64, items []model.OrderItem) error

	// GetByID 根据订单ID查询（不校验归属，供后台发货使用）
	GetByID(ctx context.Context, orderID int64) (*model.Order, error)

	// GetForUser 按用户范围查询，他人订单等同于不存在
	GetForUser(ctx context.Context, userID, orderID int64) (*model.Order, error)

	// Items 订单项，按写入顺序
	Items(ctx context.Context, orderID int64) ([]model.OrderItem, error)

	// ListByUser 根据用户ID分页查询订单，status 为空表示全部
	ListByUser(ctx context.Context, userID int64, status model.OrderStatus, offset, limit int) ([]model.Order, int64, error)

	// UpdateStatus 条件更新：仅当当前状态为 from 时改为 to，返回影响行数
	UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) (int64, error)

	// AppendEvent 记录一次状态流转
	AppendEvent(ctx context.Context, orderID int64, from, to model.OrderStatus) error
	Events(ctx context.Context, orderID int64) ([]model.OrderEvent, error)

	// CountByUser 统计订单数量
	CountByUser(ctx context.Context, userID int64) (int64, error)

	// SumSpend 未取消订单的实付合计
	SumSpend(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepository{db: db} }

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	row := &orderRow{
		OrderNo:       order.OrderNo,
		UserID:        order.UserID,
		AddressID:     order.AddressID,
		TotalAmount:   order.TotalAmount,
		FinalAmount:   order.FinalAmount,
		Status:        string(order.Status),
		PaymentMethod: order.PaymentMethod,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	order.ID = row.ID
	order.CreatedAt = row.CreatedAt
	order.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *orderRepository) CreateItems(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]orderItemRow, len(items))
	for i, it := range items {
		rows[i] = orderItemRow{
			OrderID:   orderID,
			BookID:    it.BookID,
			BookTitle: it.BookTitle,
			BookCover: it.BookCover,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = rows[i].ID
		items[i].OrderID = orderID
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	var row orderRow
	if err := r.db.WithContext(ctx).First(&row, orderID).Error; err != nil {
		return nil, err
	}
	o := row.toModel()
	return &o, nil
}

func (r *orderRepository) GetForUser(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	var row orderRow
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", orderID, userID).First(&row).Error
	if err != nil {
		return nil, err
	}
	o := row.toModel()
	return &o, nil
}

func (r *orderRepository) Items(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var rows []orderItemRow
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.OrderItem, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64, status model.OrderStatus, offset, limit int) ([]model.Order, int64, error) {
	scope := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&orderRow{}).Where("user_id = ?", userID)
		if status != "" {
			tx = tx.Where("status = ?", strings.ToUpper(string(status)))
		}
		return tx
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.Order{}, 0, nil
	}

	var rows []orderRow
	err := scope().
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.Order, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&orderRow{}).
		Where("id = ? AND status = ?", orderID, string(from)).
		Update("status", string(to))
	return res.RowsAffected, res.Error
}

func (r *orderRepository) AppendEvent(ctx context.Context, orderID int64, from, to model.OrderStatus) error {
	ev := &orderEventRow{OrderID: orderID, FromStatus: string(from), ToStatus: string(to)}
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *orderRepository) Events(ctx context.Context, orderID int64) ([]model.OrderEvent, error) {
	var rows []orderEventRow
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.OrderEvent, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (r *orderRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&orderRow{}).Where("user_id = ?", userID).Count(&cnt).Error
	return cnt, err
}

func (r *orderRepository) SumSpend(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	row := r.db.WithContext(ctx).
		Model(&orderRow{}).
		Select("COALESCE(SUM(final_amount), 0)").
		Where("user_id = ? AND status <> ?", userID, string(model.OrderStatusCancelled)).
		Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
