package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 用户角色
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User 用户账号
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Email        *string    `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Nickname     string     `json:"nickname,omitempty"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	Gender       string     `json:"gender,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	Points       int        `json:"points"`
	Status       string     `json:"status"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserStats 个人中心统计
type UserStats struct {
	OrderTotal    int64           `json:"order_total"`
	FavoriteTotal int64           `json:"favorite_total"`
	SpendTotal    decimal.Decimal `json:"spend_total"`
}

// UserAddress 收货地址；每个用户至多一个默认地址
type UserAddress struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	RecipientName  string    `json:"recipient_name"`
	RecipientPhone string    `json:"recipient_phone"`
	Province       string    `json:"province"`
	City           string    `json:"city"`
	District       string    `json:"district"`
	DetailAddress  string    `json:"detail_address"`
	IsDefault      bool      `json:"is_default"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AddressFields 创建/修改地址时可写的字段
type AddressFields struct {
	RecipientName  string
	RecipientPhone string
	Province       string
	City           string
	District       string
	DetailAddress  string
}

// WishlistItem 收藏项，图书信息实时关联，不做快照
type WishlistItem struct {
	BookID     int64           `json:"book_id"`
	Title      string          `json:"title"`
	Author     string          `json:"author"`
	CoverImage string          `json:"cover_image"`
	Price      decimal.Decimal `json:"price"`
	AddedAt    time.Time       `json:"added_at"`
}
