package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/model"
)

// AddressRepository 收货地址。所有查询都带 user_id 条件，不会越权读到他人地址。
type AddressRepository interface {
	// List 默认地址在前，其余按创建时间倒序
	List(ctx context.Context, userID int64) ([]model.UserAddress, error)
	Get(ctx context.Context, userID, addressID int64) (*model.UserAddress, error)
	GetDefault(ctx context.Context, userID int64) (*model.UserAddress, error)
	// Newest 最近创建的一条，没有时返回 gorm.ErrRecordNotFound
	Newest(ctx context.Context, userID int64) (*model.UserAddress, error)
	Count(ctx context.Context, userID int64) (int64, error)
	Exists(ctx context.Context, userID, addressID int64) (bool, error)

	Create(ctx context.Context, a *model.UserAddress) error
	// Update 只改字段，不动 is_default；返回影响行数
	Update(ctx context.Context, userID, addressID int64, f model.AddressFields) (int64, error)
	ClearDefault(ctx context.Context, userID int64) error
	MarkDefault(ctx context.Context, userID, addressID int64) (int64, error)
	Delete(ctx context.Context, userID, addressID int64) (int64, error)
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository { return &addressRepository{db: db} }

func (r *addressRepository) owned(ctx context.Context, userID int64) *gorm.DB {
	return r.db.WithContext(ctx).Model(&addressRow{}).Where("user_id = ?", userID)
}

func (r *addressRepository) List(ctx context.Context, userID int64) ([]model.UserAddress, error) {
	var rows []addressRow
	err := r.owned(ctx, userID).
		Order("is_default DESC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.UserAddress, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (r *addressRepository) Get(ctx context.Context, userID, addressID int64) (*model.UserAddress, error) {
	var row addressRow
	if err := r.owned(ctx, userID).Where("id = ?", addressID).First(&row).Error; err != nil {
		return nil, err
	}
	a := row.toModel()
	return &a, nil
}

func (r *addressRepository) GetDefault(ctx context.Context, userID int64) (*model.UserAddress, error) {
	var row addressRow
	if err := r.owned(ctx, userID).Where("is_default = ?", true).First(&row).Error; err != nil {
		return nil, err
	}
	a := row.toModel()
	return &a, nil
}

func (r *addressRepository) Newest(ctx context.Context, userID int64) (*model.UserAddress, error) {
	var row addressRow
	err := r.owned(ctx, userID).
		Order("created_at DESC").
		Order("id DESC").
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	a := row.toModel()
	return &a, nil
}

func (r *addressRepository) Count(ctx context.Context, userID int64) (int64, error) {
	var cnt int64
	err := r.owned(ctx, userID).Count(&cnt).Error
	return cnt, err
}

func (r *addressRepository) Exists(ctx context.Context, userID, addressID int64) (bool, error) {
	var cnt int64
	if err := r.owned(ctx, userID).Where("id = ?", addressID).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *addressRepository) Create(ctx context.Context, a *model.UserAddress) error {
	row := &addressRow{
		UserID:         a.UserID,
		RecipientName:  a.RecipientName,
		RecipientPhone: a.RecipientPhone,
		Province:       a.Province,
		City:           a.City,
		District:       a.District,
		DetailAddress:  a.DetailAddress,
		IsDefault:      a.IsDefault,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*a = row.toModel()
	return nil
}

func (r *addressRepository) Update(ctx context.Context, userID, addressID int64, f model.AddressFields) (int64, error) {
	res := r.owned(ctx, userID).Where("id = ?", addressID).Updates(map[string]any{
		"recipient_name":  f.RecipientName,
		"recipient_phone": f.RecipientPhone,
		"province":        f.Province,
		"city":            f.City,
		"district":        f.District,
		"detail_address":  f.DetailAddress,
	})
	return res.RowsAffected, res.Error
}

func (r *addressRepository) ClearDefault(ctx context.Context, userID int64) error {
	return r.owned(ctx, userID).Where("is_default = ?", true).Update("is_default", false).Error
}

func (r *addressRepository) MarkDefault(ctx context.Context, userID, addressID int64) (int64, error) {
	res := r.owned(ctx, userID).Where("id = ?", addressID).Update("is_default", true)
	return res.RowsAffected, res.Error
}

func (r *addressRepository) Delete(ctx context.Context, userID, addressID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, addressID).Delete(&addressRow{})
	return res.RowsAffected, res.Error
}
