package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
)

const maxWishlistLimit = 50

type WishlistService interface {
	Add(ctx context.Context, userID, bookID int64) (*model.WishlistItem, error)
	Remove(ctx context.Context, userID, bookID int64) error
	List(ctx context.Context, userID int64, page, limit int) (*Page[model.WishlistItem], error)
	Contains(ctx context.Context, userID, bookID int64) (bool, error)
}

type wishlistService struct {
	wishlist repository.WishlistRepository
	books    repository.BookRepository
}

func NewWishlistService(repos *repository.Repos) WishlistService {
	return &wishlistService{wishlist: repos.Wishlist, books: repos.Books}
}

func (s *wishlistService) Add(ctx context.Context, userID, bookID int64) (*model.WishlistItem, error) {
	if bookID <= 0 {
		return nil, apperr.BadRequest("invalid book id")
	}
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("book %d not found", bookID)
		}
		return nil, err
	}
	ok, err := s.wishlist.Exists(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, apperr.BadRequest("book %d is already in the wishlist", bookID)
	}
	if err := s.wishlist.Add(ctx, userID, bookID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.BadRequest("book %d is already in the wishlist", bookID)
		}
		return nil, err
	}
	return s.wishlist.Get(ctx, userID, bookID)
}

func (s *wishlistService) Remove(ctx context.Context, userID, bookID int64) error {
	n, err := s.wishlist.Remove(ctx, userID, bookID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("book %d is not in the wishlist", bookID)
	}
	return nil
}

func (s *wishlistService) List(ctx context.Context, userID int64, page, limit int) (*Page[model.WishlistItem], error) {
	offset, err := checkPage(page, limit, maxWishlistLimit)
	if err != nil {
		return nil, err
	}
	items, total, err := s.wishlist.List(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &Page[model.WishlistItem]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *wishlistService) Contains(ctx context.Context, userID, bookID int64) (bool, error) {
	return s.wishlist.Exists(ctx, userID, bookID)
}
