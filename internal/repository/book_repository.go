package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/bookstore/internal/model"
)

// BookRepository 图书只读查询（库存写入见 InventoryRepository）
type BookRepository interface {
	// Find 按关键字/分类检索，返回当前页和总数
	Find(ctx context.Context, q model.BookQuery) ([]model.Book, int64, error)

	// GetByID 不存在时返回 gorm.ErrRecordNotFound
	GetByID(ctx context.Context, id int64) (*model.Book, error)

	// ListHot 按销量倒序
	ListHot(ctx context.Context, limit int) ([]model.Book, error)

	// ListNew 按出版日期倒序
	ListNew(ctx context.Context, limit int) ([]model.Book, error)

	// ListRelated 来自 book_relations 的关联图书
	ListRelated(ctx context.Context, bookID int64, limit int) ([]model.Book, error)

	// ListSameCategory 同分类图书（排除自身），按销量倒序
	ListSameCategory(ctx context.Context, categoryID, excludeID int64, limit int) ([]model.Book, error)

	Create(ctx context.Context, b *model.Book) error
	AddRelation(ctx context.Context, bookID, relatedID int64, typ model.BookRelationType) error
	UpdateSellingPrice(ctx context.Context, id int64, price decimal.Decimal) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository { return &bookRepository{db: db} }

func sortOrder(s model.BookSort) string {
	switch s {
	case model.SortNewest:
		return "publish_date DESC"
	case model.SortPriceAsc:
		return "selling_price ASC"
	case model.SortPriceDesc:
		return "selling_price DESC"
	default:
		return "sales_volume DESC"
	}
}

func (r *bookRepository) Find(ctx context.Context, q model.BookQuery) ([]model.Book, int64, error) {
	filtered := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&bookRow{})
		if q.Keyword != "" {
			like := "%" + q.Keyword + "%"
			tx = tx.Where("title LIKE ? OR author LIKE ?", like, like)
		}
		if q.CategoryID > 0 {
			tx = tx.Where("category_id = ?", q.CategoryID)
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.Book{}, 0, nil
	}

	var rows []bookRow
	err := filtered().
		Order(sortOrder(q.Sort)).
		Order("id ASC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return toBooks(rows), total, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	var row bookRow
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	b := row.toModel()
	return &b, nil
}

func (r *bookRepository) ListHot(ctx context.Context, limit int) ([]model.Book, error) {
	var rows []bookRow
	err := r.db.WithContext(ctx).Order("sales_volume DESC").Order("id ASC").Limit(limit).Find(&rows).Error
	return toBooks(rows), err
}

func (r *bookRepository) ListNew(ctx context.Context, limit int) ([]model.Book, error) {
	var rows []bookRow
	err := r.db.WithContext(ctx).Order("publish_date DESC").Order("id ASC").Limit(limit).Find(&rows).Error
	return toBooks(rows), err
}

func (r *bookRepository) ListRelated(ctx context.Context, bookID int64, limit int) ([]model.Book, error) {
	var rows []bookRow
	err := r.db.WithContext(ctx).
		Table("book_relations AS br").
		Select("b.*").
		Joins("JOIN books b ON b.id = br.related_book_id").
		Where("br.book_id = ?", bookID).
		Order("br.id ASC").
		Limit(limit).
		Scan(&rows).Error
	return toBooks(rows), err
}

func (r *bookRepository) ListSameCategory(ctx context.Context, categoryID, excludeID int64, limit int) ([]model.Book, error) {
	var rows []bookRow
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND id <> ?", categoryID, excludeID).
		Order("sales_volume DESC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return toBooks(rows), err
}

func (r *bookRepository) Create(ctx context.Context, b *model.Book) error {
	row := bookRowFrom(b)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	b.ID = row.ID
	b.CreatedAt = row.CreatedAt
	b.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *bookRepository) AddRelation(ctx context.Context, bookID, relatedID int64, typ model.BookRelationType) error {
	rel := &bookRelationRow{BookID: bookID, RelatedBookID: relatedID, RelationType: string(typ)}
	// 重复关联忽略
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rel).Error
}

func (r *bookRepository) UpdateSellingPrice(ctx context.Context, id int64, price decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&bookRow{}).Where("id = ?", id).Update("selling_price", price)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func toBooks(rows []bookRow) []model.Book {
	out := make([]model.Book, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out
}
