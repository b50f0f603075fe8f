package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/model"
)

// ProfileFields 个人资料中可修改的字段，nil 表示不修改
type ProfileFields struct {
	Nickname  *string
	Email     *string
	Phone     *string
	Gender    *string
	Bio       *string
	AvatarURL *string
	BirthDate *time.Time
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	// EmailTaken excludeID 大于 0 时排除该用户自身
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	UpdateProfile(ctx context.Context, id int64, f ProfileFields) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	row := &userRow{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Email:        u.Email,
		Phone:        u.Phone,
		Nickname:     u.Nickname,
		Points:       u.Points,
		Status:       u.Status,
		Role:         u.Role,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*u = *row.toModel()
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&row).Error; err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&userRow{}).Where("username = ?", username).Count(&cnt).Error
	return cnt > 0, err
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&userRow{}).Where("email = ?", email)
	if excludeID > 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	err := tx.Count(&cnt).Error
	return cnt > 0, err
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int64, f ProfileFields) error {
	updates := map[string]any{}
	if f.Nickname != nil {
		updates["nickname"] = *f.Nickname
	}
	if f.Email != nil {
		if *f.Email == "" {
			updates["email"] = nil
		} else {
			updates["email"] = *f.Email
		}
	}
	if f.Phone != nil {
		updates["phone"] = *f.Phone
	}
	if f.Gender != nil {
		updates["gender"] = *f.Gender
	}
	if f.Bio != nil {
		updates["bio"] = *f.Bio
	}
	if f.AvatarURL != nil {
		updates["avatar_url"] = *f.AvatarURL
	}
	if f.BirthDate != nil {
		updates["birth_date"] = *f.BirthDate
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Updates(updates).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Update("password_hash", hash).Error
}
