package rideapi

import (
	"context"
	"net/http"

	"ride-hail-client/internal/domain/auth"
)

// Login 以帳密取得 Credential Pair。
func (c *Client) Login(ctx context.Context, username, password string) (auth.CredentialPair, error) {
	var pair auth.CredentialPair
	err := c.call(ctx, &Request{
		Op:       "login",
		Method:   http.MethodPost,
		Path:     "/token/",
		Body:     map[string]string{"username": username, "password": password},
		Public:   true,
		Fallback: "Eroare de autentificare",
	}, &pair)
	return pair, err
}

// Register 建立帳號；不會登入。
func (c *Client) Register(ctx context.Context, reg auth.Registration) (auth.User, error) {
	var u auth.User
	err := c.call(ctx, &Request{
		Op:       "register",
		Method:   http.MethodPost,
		Path:     "/users/",
		Body:     reg,
		Public:   true,
		Fallback: "Eroare la înregistrare",
	}, &u)
	return u, err
}

// Me 取得目前登入者資料。
func (c *Client) Me(ctx context.Context) (auth.User, error) {
	var u auth.User
	err := c.call(ctx, &Request{
		Op:       "get profile",
		Path:     "/users/me/",
		Fallback: "Eroare la obținerea profilului",
	}, &u)
	return u, err
}

// DriverProfile 取得司機檔案。
func (c *Client) DriverProfile(ctx context.Context) (auth.Driver, error) {
	var d auth.Driver
	err := c.call(ctx, &Request{
		Op:       "get driver profile",
		Path:     "/drivers/me/",
		Fallback: "Eroare la obținerea profilului de șofer",
	}, &d)
	return d, err
}

// SetAvailability 更新司機是否接單。
func (c *Client) SetAvailability(ctx context.Context, available bool) (auth.Driver, error) {
	var d auth.Driver
	err := c.call(ctx, &Request{
		Op:       "update availability",
		Method:   http.MethodPatch,
		Path:     "/drivers/me/",
		Body:     map[string]bool{"is_available": available},
		Fallback: "Nu am putut actualiza disponibilitatea.",
	}, &d)
	return d, err
}

// AvailableDrivers 列出目前可接單的司機。
func (c *Client) AvailableDrivers(ctx context.Context) ([]auth.Driver, error) {
	var out []auth.Driver
	err := c.call(ctx, &Request{
		Op:       "list available drivers",
		Path:     "/drivers/available/",
		Fallback: "Eroare la obținerea șoferilor disponibili",
	}, &out)
	return out, err
}
