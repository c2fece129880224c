package authinfra

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ride-hail-client/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
)

// Token 種類；refresh token 不能拿來呼叫 API，反之亦然。
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongType    = errors.New("wrong token type")
)

// JWTIssuer 參考後端的 token 簽發器。兩種 token 都是無狀態 JWT；refresh 只換新的 access，不輪替。
type JWTIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	users      UserFinder
	now        func() time.Time
}

// NewJWTIssuer 建立 JWT 簽發器。
func NewJWTIssuer(secret string, accessTTL, refreshTTL time.Duration, users UserFinder) *JWTIssuer {
	return &JWTIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		users:      users,
		now:        time.Now,
	}
}

// Claims 定義 token 的 payload。
type Claims struct {
	UserID   int64  `json:"user_id"`
	IsDriver bool   `json:"is_driver"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

// UserFinder 僅用於 refresh 時確認使用者仍存在。
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (auth.User, error)
}

// Issue 登入成功時產生一組 access/refresh。
func (j *JWTIssuer) Issue(user auth.User) (auth.CredentialPair, error) {
	access, err := j.sign(user, TypeAccess, j.accessTTL)
	if err != nil {
		return auth.CredentialPair{}, err
	}
	refresh, err := j.sign(user, TypeRefresh, j.refreshTTL)
	if err != nil {
		return auth.CredentialPair{}, err
	}
	return auth.CredentialPair{Access: access, Refresh: refresh}, nil
}

// Refresh 以 refresh token 換新的 access token。
func (j *JWTIssuer) Refresh(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("refresh token required")
	}
	claims, err := j.parse(token, TypeRefresh)
	if err != nil {
		return "", err
	}
	user, err := j.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	return j.sign(user, TypeAccess, j.accessTTL)
}

// ParseAccessToken 驗證並解析 access token。
func (j *JWTIssuer) ParseAccessToken(token string) (Claims, error) {
	return j.parse(token, TypeAccess)
}

func (j *JWTIssuer) parse(token, typ string) (Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Type != typ {
		return Claims{}, ErrWrongType
	}
	return claims, nil
}

func (j *JWTIssuer) sign(user auth.User, typ string, ttl time.Duration) (string, error) {
	now := j.now()
	claims := Claims{
		UserID:   user.ID,
		IsDriver: user.IsDriver,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}
