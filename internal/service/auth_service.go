package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
	"github.com/d60-Lab/bookstore/pkg/jwt"
	"github.com/d60-Lab/bookstore/pkg/logger"
)

const (
	registerPoints    = 100
	userStatusActive  = "ACTIVE"
	minPasswordLength = 6
	loginFailedMsg    = "invalid username or password"
)

// RegisterRequest 注册参数
type RegisterRequest struct {
	Username string
	Password string
	Email    string
	Phone    string
}

// LoginResult 登录/刷新结果
type LoginResult struct {
	jwt.TokenPair
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*model.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	Logout(ctx context.Context, accessToken string) error
	// Authenticate 校验访问令牌（含注销检查），供鉴权中间件使用
	Authenticate(ctx context.Context, accessToken string) (*jwt.Claims, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *jwt.Manager
	store  TokenStore
	now    func() time.Time
}

func NewAuthService(repos *repository.Repos, tokens *jwt.Manager, store TokenStore) AuthService {
	if store == nil {
		store = noopTokenStore{}
	}
	return &authService{users: repos.Users, tokens: tokens, store: store, now: time.Now}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if n := len(username); n < 3 || n > 50 {
		return nil, apperr.BadRequest("username must be 3 to 50 characters")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.BadRequest("password must be at least %d characters", minPasswordLength)
	}
	taken, err := s.users.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.BadRequest("username already exists")
	}

	var email *string
	if e := strings.TrimSpace(req.Email); e != "" {
		taken, err := s.users.EmailTaken(ctx, e, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.BadRequest("email already registered")
		}
		email = &e
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}

	u := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		Nickname:     username,
		Points:       registerPoints,
		Status:       userStatusActive,
		Role:         model.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.BadRequest("username or email already exists")
		}
		return nil, err
	}
	logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized(loginFailedMsg)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized(loginFailedMsg)
	}
	if u.Status != userStatusActive {
		return nil, apperr.Unauthorized("account is disabled")
	}
	return s.issue(u)
}

func (s *authService) issue(u *model.User) (*LoginResult, error) {
	pair, err := s.tokens.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, apperr.Internal(err, "sign token")
	}
	return &LoginResult{TokenPair: *pair, UserID: u.ID, Username: u.Username}, nil
}

// Refresh 刷新令牌只能使用一次，旧令牌随即注销
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.parseLive(ctx, refreshToken, jwt.TypeRefresh)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("user no longer exists")
		}
		return nil, err
	}
	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.parseLive(ctx, accessToken, jwt.TypeAccess)
	if err != nil {
		return err
	}
	return s.revoke(ctx, claims)
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*jwt.Claims, error) {
	return s.parseLive(ctx, accessToken, jwt.TypeAccess)
}

func (s *authService) parseLive(ctx context.Context, token, typ string) (*jwt.Claims, error) {
	claims, err := s.tokens.Parse(token, typ)
	if err != nil {
		return nil, apperr.Unauthorized(err.Error())
	}
	revoked, err := s.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		// 注销存储不可用时放行
		logger.Warn("token revocation check failed", zap.Error(err))
		return claims, nil
	}
	if revoked {
		return nil, apperr.Unauthorized("token has been revoked")
	}
	return claims, nil
}

func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.store.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperr.Internal(err, "revoke token")
	}
	return nil
}
