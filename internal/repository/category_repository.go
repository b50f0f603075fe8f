package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/model"
)

type CategoryRepository interface {
	// ListActive 启用的分类，display_order 升序、名称升序
	ListActive(ctx context.Context) ([]model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	Create(ctx context.Context, c *model.Category) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository { return &categoryRepository{db: db} }

func (r *categoryRepository) ListActive(ctx context.Context) ([]model.Category, error) {
	var rows []categoryRow
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order ASC").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.Category, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var row categoryRow
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&row).Error; err != nil {
		return nil, err
	}
	c := row.toModel()
	return &c, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var row categoryRow
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	c := row.toModel()
	return &c, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	row := &categoryRow{
		Name:         c.Name,
		Slug:         c.Slug,
		ParentID:     c.ParentID,
		Description:  c.Description,
		DisplayOrder: c.DisplayOrder,
		IsActive:     c.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	c.ID = row.ID
	return nil
}

// CarouselRepository 首页轮播
type CarouselRepository interface {
	ListEnabled(ctx context.Context) ([]model.Carousel, error)
	Create(ctx context.Context, c *model.Carousel) error
}

type carouselRepository struct {
	db *gorm.DB
}

func NewCarouselRepository(db *gorm.DB) CarouselRepository { return &carouselRepository{db: db} }

func (r *carouselRepository) ListEnabled(ctx context.Context) ([]model.Carousel, error) {
	var rows []carouselRow
	err := r.db.WithContext(ctx).
		Where("is_enabled = ?", true).
		Order("sort_order ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.Carousel, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (r *carouselRepository) Create(ctx context.Context, c *model.Carousel) error {
	row := &carouselRow{
		ImageURL:    c.ImageURL,
		Title:       c.Title,
		Description: c.Description,
		Link:        c.Link,
		ButtonText:  c.ButtonText,
		SortOrder:   c.SortOrder,
		IsEnabled:   c.IsEnabled,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	c.ID = row.ID
	c.CreatedAt = row.CreatedAt
	c.UpdatedAt = row.UpdatedAt
	return nil
}
