package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
)

// AddressService 收货地址簿，维护“每个用户至多一个默认地址”
type AddressService interface {
	List(ctx context.Context, userID int64) ([]model.UserAddress, error)
	Get(ctx context.Context, userID, addressID int64) (*model.UserAddress, error)
	GetDefault(ctx context.Context, userID int64) (*model.UserAddress, error)
	Create(ctx context.Context, userID int64, f model.AddressFields) (*model.UserAddress, error)
	Update(ctx context.Context, userID, addressID int64, f model.AddressFields) (*model.UserAddress, error)
	SetDefault(ctx context.Context, userID, addressID int64) (*model.UserAddress, error)
	Delete(ctx context.Context, userID, addressID int64) error
	Exists(ctx context.Context, userID, addressID int64) (bool, error)
}

type addressService struct {
	addresses repository.AddressRepository
	uow       repository.UnitOfWork
}

func NewAddressService(repos *repository.Repos, uow repository.UnitOfWork) AddressService {
	return &addressService{addresses: repos.Addresses, uow: uow}
}

func addressNotFound(err error, addressID int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("address %d not found", addressID)
	}
	return err
}

func (s *addressService) List(ctx context.Context, userID int64) ([]model.UserAddress, error) {
	return s.addresses.List(ctx, userID)
}

func (s *addressService) Get(ctx context.Context, userID, addressID int64) (*model.UserAddress, error) {
	a, err := s.addresses.Get(ctx, userID, addressID)
	if err != nil {
		return nil, addressNotFound(err, addressID)
	}
	return a, nil
}

func (s *addressService) GetDefault(ctx context.Context, userID int64) (*model.UserAddress, error) {
	a, err := s.addresses.GetDefault(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no default address")
		}
		return nil, err
	}
	return a, nil
}

// Create 用户的第一条地址自动成为默认地址
func (s *addressService) Create(ctx context.Context, userID int64, f model.AddressFields) (*model.UserAddress, error) {
	a := &model.UserAddress{
		UserID:         userID,
		RecipientName:  f.RecipientName,
		RecipientPhone: f.RecipientPhone,
		Province:       f.Province,
		City:           f.City,
		District:       f.District,
		DetailAddress:  f.DetailAddress,
	}
	err := s.uow.Do(ctx, func(tx *repository.Repos) error {
		n, err := tx.Addresses.Count(ctx, userID)
		if err != nil {
			return err
		}
		a.IsDefault = n == 0
		return tx.Addresses.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *addressService) Update(ctx context.Context, userID, addressID int64, f model.AddressFields) (*model.UserAddress, error) {
	var out *model.UserAddress
	err := s.uow.Do(ctx, func(tx *repository.Repos) error {
		if _, err := tx.Addresses.Get(ctx, userID, addressID); err != nil {
			return addressNotFound(err, addressID)
		}
		if _, err := tx.Addresses.Update(ctx, userID, addressID, f); err != nil {
			return err
		}
		a, err := tx.Addresses.Get(ctx, userID, addressID)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

// SetDefault 先校验归属，再在同一事务内清空旧默认并设置新默认
func (s *addressService) SetDefault(ctx context.Context, userID, addressID int64) (*model.UserAddress, error) {
	var out *model.UserAddress
	err := s.uow.Do(ctx, func(tx *repository.Repos) error {
		ok, err := tx.Addresses.Exists(ctx, userID, addressID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("address %d not found", addressID)
		}
		if err := tx.Addresses.ClearDefault(ctx, userID); err != nil {
			return err
		}
		if _, err := tx.Addresses.MarkDefault(ctx, userID, addressID); err != nil {
			return err
		}
		out, err = tx.Addresses.Get(ctx, userID, addressID)
		return err
	})
	return out, err
}

// Delete 删除默认地址时，剩余地址中最新创建的一条成为默认
func (s *addressService) Delete(ctx context.Context, userID, addressID int64) error {
	return s.uow.Do(ctx, func(tx *repository.Repos) error {
		a, err := tx.Addresses.Get(ctx, userID, addressID)
		if err != nil {
			return addressNotFound(err, addressID)
		}
		if _, err := tx.Addresses.Delete(ctx, userID, addressID); err != nil {
			return err
		}
		if !a.IsDefault {
			return nil
		}
		next, err := tx.Addresses.Newest(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = tx.Addresses.MarkDefault(ctx, userID, next.ID)
		return err
	})
}

func (s *addressService) Exists(ctx context.Context, userID, addressID int64) (bool, error) {
	return s.addresses.Exists(ctx, userID, addressID)
}
