package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
)

// BirthDateLayout 生日格式
const BirthDateLayout = "2006-01-02"

// ProfileUpdate 个人资料修改，nil 字段保持不变
type ProfileUpdate struct {
	Nickname  *string
	Email     *string
	Phone     *string
	Gender    *string
	Bio       *string
	AvatarURL *string
	BirthDate *string
}

type UserService interface {
	Profile(ctx context.Context, userID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, p ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	Stats(ctx context.Context, userID int64) (*model.UserStats, error)
}

type userService struct {
	users    repository.UserRepository
	orders   repository.OrderRepository
	wishlist repository.WishlistRepository
}

func NewUserService(repos *repository.Repos) UserService {
	return &userService{users: repos.Users, orders: repos.Orders, wishlist: repos.Wishlist}
}

func (s *userService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %d not found", userID)
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, p ProfileUpdate) (*model.User, error) {
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}

	f := repository.ProfileFields{
		Nickname:  p.Nickname,
		Phone:     p.Phone,
		Gender:    p.Gender,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if email != "" {
			taken, err := s.users.EmailTaken(ctx, email, userID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.BadRequest("email already registered")
			}
		}
		f.Email = &email
	}
	if p.BirthDate != nil && *p.BirthDate != "" {
		d, err := time.Parse(BirthDateLayout, *p.BirthDate)
		if err != nil {
			return nil, apperr.BadRequest("birthDate must be in YYYY-MM-DD format")
		}
		f.BirthDate = &d
	}

	if err := s.users.UpdateProfile(ctx, userID, f); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.BadRequest("email already registered")
		}
		return nil, err
	}
	return s.Profile(ctx, userID)
}

func (s *userService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return apperr.BadRequest("old password is incorrect")
	}
	if len(newPassword) < minPasswordLength {
		return apperr.BadRequest("password must be at least %d characters", minPasswordLength)
	}
	if oldPassword == newPassword {
		return apperr.BadRequest("new password must differ from the old one")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err, "hash password")
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// Stats 消费总额只统计未取消的订单
func (s *userService) Stats(ctx context.Context, userID int64) (*model.UserStats, error) {
	orders, err := s.orders.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	favorites, err := s.wishlist.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	spend, err := s.orders.SumSpend(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.UserStats{OrderTotal: orders, FavoriteTotal: favorites, SpendTotal: spend}, nil
}
