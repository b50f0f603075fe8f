package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/model"
)

type WishlistRepository interface {
	Add(ctx context.Context, userID, bookID int64) error
	// Remove 返回影响行数，0 表示原本不在收藏中
	Remove(ctx context.Context, userID, bookID int64) (int64, error)
	Exists(ctx context.Context, userID, bookID int64) (bool, error)
	// Get 单条收藏（联表图书实时信息）
	Get(ctx context.Context, userID, bookID int64) (*model.WishlistItem, error)
	// List 按收藏时间倒序，图书信息实时联表
	List(ctx context.Context, userID int64, offset, limit int) ([]model.WishlistItem, int64, error)
	Count(ctx context.Context, userID int64) (int64, error)
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository { return &wishlistRepository{db: db} }

// wishlistJoin 联表扫描结果
type wishlistJoin struct {
	BookID       int64
	Title        string
	Author       string
	CoverImage   string
	SellingPrice decimal.Decimal
	CreatedAt    time.Time
}

func (j *wishlistJoin) toModel() model.WishlistItem {
	return model.WishlistItem{
		BookID:     j.BookID,
		Title:      j.Title,
		Author:     j.Author,
		CoverImage: j.CoverImage,
		Price:      j.SellingPrice,
		AddedAt:    j.CreatedAt,
	}
}

func (r *wishlistRepository) joined(ctx context.Context, userID int64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("wishlists AS w").
		Joins("JOIN books b ON b.id = w.book_id").
		Where("w.user_id = ?", userID)
}

func (r *wishlistRepository) Add(ctx context.Context, userID, bookID int64) error {
	return r.db.WithContext(ctx).Create(&wishlistRow{UserID: userID, BookID: bookID}).Error
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, bookID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&wishlistRow{})
	return res.RowsAffected, res.Error
}

func (r *wishlistRepository) Exists(ctx context.Context, userID, bookID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&wishlistRow{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *wishlistRepository) Get(ctx context.Context, userID, bookID int64) (*model.WishlistItem, error) {
	var rows []wishlistJoin
	err := r.joined(ctx, userID).
		Select("w.book_id, b.title, b.author, b.cover_image, b.selling_price, w.created_at").
		Where("w.book_id = ?", bookID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	it := rows[0].toModel()
	return &it, nil
}

func (r *wishlistRepository) List(ctx context.Context, userID int64, offset, limit int) ([]model.WishlistItem, int64, error) {
	var total int64
	if err := r.joined(ctx, userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.WishlistItem{}, 0, nil
	}

	var rows []wishlistJoin
	err := r.joined(ctx, userID).
		Select("w.book_id, b.title, b.author, b.cover_image, b.selling_price, w.created_at").
		Order("w.created_at DESC").
		Order("w.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.WishlistItem, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, total, nil
}

func (r *wishlistRepository) Count(ctx context.Context, userID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&wishlistRow{}).Where("user_id = ?", userID).Count(&cnt).Error
	return cnt, err
}
