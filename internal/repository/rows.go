package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/d60-Lab/bookstore/internal/model"
)

// 以下为存储层行结构，带 gorm 标签，只在 repository 包内可见。
// 对外一律转换成 internal/model 中的领域结构。

type bookRow struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	ISBN          string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	Title         string          `gorm:"type:varchar(200);not null;index"`
	Subtitle      string          `gorm:"type:varchar(200)"`
	Author        string          `gorm:"type:varchar(100);not null;index"`
	Publisher     string          `gorm:"type:varchar(100)"`
	PublishDate   *time.Time      `gorm:"index"`
	CategoryID    int64           `gorm:"index;not null"`
	OriginalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StockQuantity int             `gorm:"not null;default:0"`
	SalesVolume   int             `gorm:"not null;default:0;index"`
	CoverImage    string          `gorm:"type:varchar(255)"`
	Description   string          `gorm:"type:text"`
	Rating        decimal.Decimal `gorm:"type:decimal(3,1);not null;default:0"`
	ReviewCount   int             `gorm:"not null;default:0"`
	IsHot         bool            `gorm:"not null"`
	IsNew         bool            `gorm:"not null"`
	IsRecommended bool            `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (bookRow) TableName() string { return "books" }

func (r *bookRow) toModel() model.Book {
	return model.Book{
		ID:            r.ID,
		ISBN:          r.ISBN,
		Title:         r.Title,
		Subtitle:      r.Subtitle,
		Author:        r.Author,
		Publisher:     r.Publisher,
		PublishDate:   r.PublishDate,
		CategoryID:    r.CategoryID,
		OriginalPrice: r.OriginalPrice,
		SellingPrice:  r.SellingPrice,
		StockQuantity: r.StockQuantity,
		SalesVolume:   r.SalesVolume,
		CoverImage:    r.CoverImage,
		Description:   r.Description,
		Rating:        r.Rating,
		ReviewCount:   r.ReviewCount,
		IsHot:         r.IsHot,
		IsNew:         r.IsNew,
		IsRecommended: r.IsRecommended,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func bookRowFrom(b *model.Book) *bookRow {
	return &bookRow{
		ID:            b.ID,
		ISBN:          b.ISBN,
		Title:         b.Title,
		Subtitle:      b.Subtitle,
		Author:        b.Author,
		Publisher:     b.Publisher,
		PublishDate:   b.PublishDate,
		CategoryID:    b.CategoryID,
		OriginalPrice: b.OriginalPrice,
		SellingPrice:  b.SellingPrice,
		StockQuantity: b.StockQuantity,
		SalesVolume:   b.SalesVolume,
		CoverImage:    b.CoverImage,
		Description:   b.Description,
		Rating:        b.Rating,
		ReviewCount:   b.ReviewCount,
		IsHot:         b.IsHot,
		IsNew:         b.IsNew,
		IsRecommended: b.IsRecommended,
	}
}

type bookRelationRow struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	BookID        int64  `gorm:"not null;uniqueIndex:idx_book_related"`
	RelatedBookID int64  `gorm:"not null;uniqueIndex:idx_book_related"`
	RelationType  string `gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time
}

func (bookRelationRow) TableName() string { return "book_relations" }

type categoryRow struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"type:varchar(50);not null"`
	Slug         string `gorm:"type:varchar(50);uniqueIndex;not null"`
	ParentID     *int64 `gorm:"index"`
	Description  string `gorm:"type:varchar(255)"`
	DisplayOrder int    `gorm:"not null;default:0"`
	IsActive     bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (categoryRow) TableName() string { return "categories" }

func (r *categoryRow) toModel() model.Category {
	return model.Category{
		ID:           r.ID,
		Name:         r.Name,
		Slug:         r.Slug,
		ParentID:     r.ParentID,
		Description:  r.Description,
		DisplayOrder: r.DisplayOrder,
		IsActive:     r.IsActive,
	}
}

type carouselRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	ImageURL    string `gorm:"type:varchar(255);not null"`
	Title       string `gorm:"type:varchar(100)"`
	Description string `gorm:"type:varchar(255)"`
	Link        string `gorm:"type:varchar(255)"`
	ButtonText  string `gorm:"type:varchar(50)"`
	SortOrder   int    `gorm:"not null;default:0"`
	IsEnabled   bool   `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (carouselRow) TableName() string { return "carousels" }

func (r *carouselRow) toModel() model.Carousel {
	return model.Carousel{
		ID:          r.ID,
		ImageURL:    r.ImageURL,
		Title:       r.Title,
		Description: r.Description,
		Link:        r.Link,
		ButtonText:  r.ButtonText,
		SortOrder:   r.SortOrder,
		IsEnabled:   r.IsEnabled,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type userRow struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	Username     string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string     `gorm:"type:varchar(100);not null"`
	Email        *string    `gorm:"type:varchar(100);uniqueIndex"`
	Phone        string     `gorm:"type:varchar(20)"`
	Nickname     string     `gorm:"type:varchar(50)"`
	AvatarURL    string     `gorm:"type:varchar(255)"`
	Gender       string     `gorm:"type:varchar(10)"`
	BirthDate    *time.Time
	Bio          string `gorm:"type:varchar(500)"`
	Points       int    `gorm:"not null;default:0"`
	Status       string `gorm:"type:varchar(20);not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (r *userRow) toModel() *model.User {
	return &model.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Email:        r.Email,
		Phone:        r.Phone,
		Nickname:     r.Nickname,
		AvatarURL:    r.AvatarURL,
		Gender:       r.Gender,
		BirthDate:    r.BirthDate,
		Bio:          r.Bio,
		Points:       r.Points,
		Status:       r.Status,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type addressRow struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	UserID         int64  `gorm:"not null;index"`
	RecipientName  string `gorm:"type:varchar(50);not null"`
	RecipientPhone string `gorm:"type:varchar(20);not null"`
	Province       string `gorm:"type:varchar(50);not null"`
	City           string `gorm:"type:varchar(50);not null"`
	District       string `gorm:"type:varchar(50);not null"`
	DetailAddress  string `gorm:"type:varchar(255);not null"`
	IsDefault      bool   `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (addressRow) TableName() string { return "user_addresses" }

func (r *addressRow) toModel() model.UserAddress {
	return model.UserAddress{
		ID:             r.ID,
		UserID:         r.UserID,
		RecipientName:  r.RecipientName,
		RecipientPhone: r.RecipientPhone,
		Province:       r.Province,
		City:           r.City,
		District:       r.District,
		DetailAddress:  r.DetailAddress,
		IsDefault:      r.IsDefault,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type orderRow struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	OrderNo       string          `gorm:"type:varchar(32);uniqueIndex;not null"`
	UserID        int64           `gorm:"not null;index:idx_order_user_status"`
	AddressID     int64           `gorm:"not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	FinalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status        string          `gorm:"type:varchar(20);not null;index:idx_order_user_status"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time       `gorm:"index"`
	UpdatedAt     time.Time
}

func (orderRow) TableName() string { return "orders" }

func (r *orderRow) toModel() model.Order {
	return model.Order{
		ID:            r.ID,
		OrderNo:       r.OrderNo,
		UserID:        r.UserID,
		AddressID:     r.AddressID,
		TotalAmount:   r.TotalAmount,
		FinalAmount:   r.FinalAmount,
		Status:        model.OrderStatus(r.Status),
		PaymentMethod: r.PaymentMethod,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type orderItemRow struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"not null;index"`
	BookID    int64           `gorm:"not null;index"`
	BookTitle string          `gorm:"type:varchar(200);not null"`
	BookCover string          `gorm:"type:varchar(255)"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
}

func (orderItemRow) TableName() string { return "order_items" }

func (r *orderItemRow) toModel() model.OrderItem {
	return model.OrderItem{
		ID:        r.ID,
		OrderID:   r.OrderID,
		BookID:    r.BookID,
		BookTitle: r.BookTitle,
		BookCover: r.BookCover,
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
	}
}

// orderEventRow 与状态更新同事务写入，作为订单流转审计
type orderEventRow struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	OrderID    int64  `gorm:"not null;index"`
	FromStatus string `gorm:"type:varchar(20)"`
	ToStatus   string `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time
}

func (orderEventRow) TableName() string { return "order_events" }

func (r *orderEventRow) toModel() model.OrderEvent {
	return model.OrderEvent{
		ID:         r.ID,
		OrderID:    r.OrderID,
		FromStatus: model.OrderStatus(r.FromStatus),
		ToStatus:   model.OrderStatus(r.ToStatus),
		CreatedAt:  r.CreatedAt,
	}
}

type wishlistRow struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	UserID    int64 `gorm:"not null;uniqueIndex:idx_wishlist_user_book"`
	BookID    int64 `gorm:"not null;uniqueIndex:idx_wishlist_user_book"`
	CreatedAt time.Time
}

func (wishlistRow) TableName() string { return "wishlists" }

// Models 返回需要迁移的全部表
func Models() []any {
	return []any{
		&categoryRow{},
		&bookRow{},
		&bookRelationRow{},
		&carouselRow{},
		&userRow{},
		&addressRow{},
		&orderRow{},
		&orderItemRow{},
		&orderEventRow{},
		&wishlistRow{},
	}
}
