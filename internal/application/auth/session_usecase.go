package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	authDomain "ride-hail-client/internal/domain/auth"
)

// AccountAPI 後端帳號相關端點。
type AccountAPI interface {
	Login(ctx context.Context, username, password string) (authDomain.CredentialPair, error)
	Register(ctx context.Context, reg authDomain.Registration) (authDomain.User, error)
	Me(ctx context.Context) (authDomain.User, error)
}

// SessionService 管理登入、註冊、登出與目前 session。
// 只有這裡與 SessionClient 會寫入 SessionStore。
type SessionService struct {
	api   AccountAPI
	store authDomain.SessionStore
}

func NewSessionService(api AccountAPI, store authDomain.SessionStore) *SessionService {
	return &SessionService{api: api, store: store}
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	User   authDomain.User
	Tokens authDomain.CredentialPair
}

// Login 取得 token、保存，再讀取並保存使用者資料。
func (s *SessionService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	var out LoginResult
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return out, errors.New("username and password required")
	}

	pair, err := s.api.Login(ctx, username, input.Password)
	if err != nil {
		return out, fmt.Errorf("login: %w", err)
	}
	if !pair.Complete() {
		return out, errors.New("login: incomplete token pair from backend")
	}
	if err := s.store.SaveTokens(ctx, pair); err != nil {
		return out, fmt.Errorf("save tokens: %w", err)
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			log.Printf("[Session] clear after failed profile load: %v", clearErr)
		}
		return out, fmt.Errorf("load profile: %w", err)
	}
	if err := s.store.SaveProfile(ctx, user); err != nil {
		return out, fmt.Errorf("save profile: %w", err)
	}

	log.Printf("[Session] logged in as %s (%s)", user.Username, user.Role())
	out.User = user
	out.Tokens = pair
	return out, nil
}

// Register 建立帳號後直接登入。
func (s *SessionService) Register(ctx context.Context, reg authDomain.Registration) (LoginResult, error) {
	if err := reg.Validate(); err != nil {
		return LoginResult{}, err
	}
	if _, err := s.api.Register(ctx, reg); err != nil {
		return LoginResult{}, fmt.Errorf("register: %w", err)
	}
	return s.Login(ctx, LoginInput{Username: reg.Username, Password: reg.Password})
}

// Logout 清除 token 與使用者資料。
func (s *SessionService) Logout(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Current 回傳目前登入者；沒有 session 時回 ErrNoSession。
// profile 遺失但 token 仍在時會向後端補讀。
func (s *SessionService) Current(ctx context.Context) (authDomain.User, error) {
	if _, err := s.store.LoadTokens(ctx); err != nil {
		return authDomain.User{}, err
	}
	user, err := s.store.LoadProfile(ctx)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, authDomain.ErrNoSession) {
		return authDomain.User{}, err
	}
	user, err = s.api.Me(ctx)
	if err != nil {
		return authDomain.User{}, fmt.Errorf("load profile: %w", err)
	}
	if err := s.store.SaveProfile(ctx, user); err != nil {
		return authDomain.User{}, fmt.Errorf("save profile: %w", err)
	}
	return user, nil
}

// Role 目前 session 的角色。
func (s *SessionService) Role(ctx context.Context) (authDomain.Role, error) {
	u, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	return u.Role(), nil
}
