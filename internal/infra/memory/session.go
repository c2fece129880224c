package memory

import (
	"context"
	"errors"
	"sync"

	"ride-hail-client/internal/domain/auth"
)

// SessionStore 記憶體版 session 儲存，程序結束即消失。可併發使用。
type SessionStore struct {
	mu      sync.RWMutex
	tokens  auth.CredentialPair
	profile *auth.User
}

// NewSessionStore 建立空的 session。
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) LoadTokens(ctx context.Context) (auth.CredentialPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.tokens.Complete() {
		return auth.CredentialPair{}, auth.ErrNoSession
	}
	return s.tokens, nil
}

func (s *SessionStore) SaveTokens(ctx context.Context, pair auth.CredentialPair) error {
	if !pair.Complete() {
		return errors.New("incomplete credential pair")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = pair
	return nil
}

func (s *SessionStore) LoadProfile(ctx context.Context) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return auth.User{}, auth.ErrNoSession
	}
	return *s.profile, nil
}

func (s *SessionStore) SaveProfile(ctx context.Context, user auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.profile = &u
	return nil
}

// Clear 同時清除 token 與 profile。
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = auth.CredentialPair{}
	s.profile = nil
	return nil
}
