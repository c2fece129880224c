package httpapi

import (
	"context"
	"errors"
	"fmt"

	"ride-hail-client/internal/domain/auth"
	"ride-hail-client/internal/infra/memory"
)

// DemoPassword 示範帳號共用的密碼。
const DemoPassword = "password123"

type demoAccount struct {
	user                  auth.User
	license, model, plate string
	available             bool
}

var demoAccounts = []demoAccount{
	{user: auth.User{Username: "ana", Email: "ana@example.com", FirstName: "Ana", LastName: "Ionescu"}},
	{user: auth.User{Username: "ion", Email: "ion@example.com", IsDriver: true, FirstName: "Ion", LastName: "Popescu"},
		license: "B123456", model: "Dacia Logan", plate: "B-123-ABC", available: true},
	{user: auth.User{Username: "mihai", Email: "mihai@example.com", IsDriver: true, FirstName: "Mihai", LastName: "Stan"},
		license: "CJ654321", model: "Skoda Octavia", plate: "CJ-77-XYZ", available: true},
}

// SeedDemo 建立一位乘客與兩位司機的示範帳號；已存在的帳號略過。
func (s *Server) SeedDemo(ctx context.Context) error {
	hash, err := s.hasher.Hash(DemoPassword)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	for _, acc := range demoAccounts {
		u, err := s.store.CreateUser(ctx, acc.user, hash)
		if errors.Is(err, memory.ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed %s: %w", acc.user.Username, err)
		}
		if !u.IsDriver {
			continue
		}
		if _, err := s.store.UpdateDriverProfile(ctx, u.ID, acc.license, acc.model, acc.plate); err != nil {
			return fmt.Errorf("seed driver %s: %w", u.Username, err)
		}
		if _, err := s.store.SetAvailability(ctx, u.ID, acc.available); err != nil {
			return fmt.Errorf("seed driver %s: %w", u.Username, err)
		}
	}
	return nil
}
