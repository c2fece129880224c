package memory

import (
	"context"
	"errors"
	"testing"

	"ride-hail-client/internal/domain/auth"
)

func TestSessionStore(t *testing.T) {
	s := NewSessionStore()
	ctx := context.Background()

	if _, err := s.LoadTokens(ctx); !errors.Is(err, auth.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if err := s.SaveTokens(ctx, auth.CredentialPair{Access: "a"}); err == nil {
		t.Fatal("expected error for partial pair")
	}

	pair := auth.CredentialPair{Access: "a", Refresh: "r"}
	if err := s.SaveTokens(ctx, pair); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveProfile(ctx, auth.User{ID: 1, Username: "ana"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadTokens(ctx)
	if err != nil || got != pair {
		t.Errorf("LoadTokens = %+v, %v", got, err)
	}
	u, err := s.LoadProfile(ctx)
	if err != nil || u.Username != "ana" {
		t.Errorf("LoadProfile = %+v, %v", u, err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadTokens(ctx); !errors.Is(err, auth.ErrNoSession) {
		t.Error("tokens not cleared")
	}
	if _, err := s.LoadProfile(ctx); !errors.Is(err, auth.ErrNoSession) {
		t.Error("profile not cleared")
	}
}
