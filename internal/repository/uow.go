package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repos 同一连接（或同一事务）上的全部仓储
type Repos struct {
	Books      BookRepository
	Inventory  InventoryRepository
	Categories CategoryRepository
	Carousels  CarouselRepository
	Addresses  AddressRepository
	Orders     OrderRepository
	Wishlist   WishlistRepository
	Users      UserRepository
}

// NewRepos 在给定 db 上构造全部仓储；db 可以是事务句柄
func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		Books:      NewBookRepository(db),
		Inventory:  NewInventoryRepository(db),
		Categories: NewCategoryRepository(db),
		Carousels:  NewCarouselRepository(db),
		Addresses:  NewAddressRepository(db),
		Orders:     NewOrderRepository(db),
		Wishlist:   NewWishlistRepository(db),
		Users:      NewUserRepository(db),
	}
}

// UnitOfWork 事务边界。fn 返回错误或 panic 时整体回滚。
// fn 内只能使用传入的 Repos，不要再访问外部的 db。
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx *Repos) error) error
}

type unitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork { return &unitOfWork{db: db} }

func (u *unitOfWork) Do(ctx context.Context, fn func(tx *Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}

// AutoMigrate 建表/补列
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
