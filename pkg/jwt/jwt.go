// Package jwt 签发与校验 HS256 令牌
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 令牌类型
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongType    = errors.New("unexpected token type")
)

// Claims 自定义声明，jti 用于注销
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"type"`
	gojwt.RegisteredClaims
}

// Manager 持有密钥与有效期
type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(secret, issuer string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// TokenPair 登录/刷新返回的令牌对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Issue 同时签发访问令牌和刷新令牌
func (m *Manager) Issue(userID int64, username, role string) (*TokenPair, error) {
	access, err := m.sign(userID, username, role, TypeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(userID, username, role, TypeRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTTL.Seconds()),
	}, nil
}

func (m *Manager) sign(userID int64, username, role, typ string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		Type:     typ,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   fmt.Sprint(userID),
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse 校验签名、有效期与类型
func (m *Manager) Parse(token, wantType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, func(t *gojwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		gojwt.WithIssuer(m.issuer),
		gojwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != wantType {
		return nil, ErrWrongType
	}
	return claims, nil
}
