package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/model"
)

// InventoryRepository 库存账本，books.stock_quantity 只通过这里修改
type InventoryRepository interface {
	// Decrease 条件扣减：仅当库存足够时生效，返回影响行数。
	// 0 行表示库存不足或图书不存在，调用方必须回滚。
	Decrease(ctx context.Context, bookID int64, qty int) (int64, error)

	// Increase 无条件回补库存（取消订单时），同时回退销量
	Increase(ctx context.Context, bookID int64, qty int) error

	// Stock 当前库存
	Stock(ctx context.Context, bookID int64) (int, error)

	// Snapshot 下单前读取价格、书名、封面与库存
	Snapshot(ctx context.Context, bookID int64) (*model.StockSnapshot, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepository{db: db} }

func (r *inventoryRepository) Decrease(ctx context.Context, bookID int64, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&bookRow{}).
		Where("id = ? AND stock_quantity >= ?", bookID, qty).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"sales_volume":   gorm.Expr("sales_volume + ?", qty),
		})
	return res.RowsAffected, res.Error
}

func (r *inventoryRepository) Increase(ctx context.Context, bookID int64, qty int) error {
	return r.db.WithContext(ctx).
		Model(&bookRow{}).
		Where("id = ?", bookID).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", qty),
			"sales_volume":   gorm.Expr("CASE WHEN sales_volume >= ? THEN sales_volume - ? ELSE 0 END", qty, qty),
		}).Error
}

func (r *inventoryRepository) Stock(ctx context.Context, bookID int64) (int, error) {
	var row bookRow
	err := r.db.WithContext(ctx).Select("id", "stock_quantity").First(&row, bookID).Error
	return row.StockQuantity, err
}

func (r *inventoryRepository) Snapshot(ctx context.Context, bookID int64) (*model.StockSnapshot, error) {
	var row bookRow
	err := r.db.WithContext(ctx).
		Select("id", "title", "cover_image", "selling_price", "stock_quantity").
		First(&row, bookID).Error
	if err != nil {
		return nil, err
	}
	return &model.StockSnapshot{
		BookID:        row.ID,
		Title:         row.Title,
		CoverImage:    row.CoverImage,
		SellingPrice:  row.SellingPrice,
		StockQuantity: row.StockQuantity,
	}, nil
}
