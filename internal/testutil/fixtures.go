package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
)

// SeedCategory 创建一个启用的分类
func SeedCategory(t testing.TB, db *gorm.DB, name string, parentID *int64) *model.Category {
	t.Helper()
	c := &model.Category{Name: name, Slug: name, ParentID: parentID, IsActive: true}
	require.NoError(t, repository.NewCategoryRepository(db).Create(context.Background(), c))
	return c
}

// SeedBook 创建图书；price 为字符串形式的售价，原价与售价相同
func SeedBook(t testing.TB, db *gorm.DB, title, price string, stock int, categoryID int64) *model.Book {
	t.Helper()
	p := decimal.RequireFromString(price)
	b := &model.Book{
		ISBN:          fmt.Sprintf("isbn-%s", title),
		Title:         title,
		Author:        "author-" + title,
		CategoryID:    categoryID,
		OriginalPrice: p,
		SellingPrice:  p,
		StockQuantity: stock,
		CoverImage:    "/covers/" + title + ".jpg",
	}
	require.NoError(t, repository.NewBookRepository(db).Create(context.Background(), b))
	return b
}

// SeedUser 创建普通用户（密码哈希为占位值）
func SeedUser(t testing.TB, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		PasswordHash: "x",
		Points:       100,
		Status:       "ACTIVE",
		Role:         model.RoleUser,
	}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), u))
	return u
}

// SeedAddress 直接写库创建地址，不经过默认地址逻辑
func SeedAddress(t testing.TB, db *gorm.DB, userID int64, isDefault bool) *model.UserAddress {
	t.Helper()
	a := &model.UserAddress{
		UserID:         userID,
		RecipientName:  "Alice",
		RecipientPhone: "13800138000",
		Province:       "Zhejiang",
		City:           "Hangzhou",
		District:       "Xihu",
		DetailAddress:  "No.1 Road",
		IsDefault:      isDefault,
	}
	require.NoError(t, repository.NewAddressRepository(db).Create(context.Background(), a))
	return a
}
