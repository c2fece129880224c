package auth

import (
	"errors"
	"strings"
)

// Role 定義登入者在行程中的角色，一個 session 內固定不變。
type Role string

const (
	RoleClient Role = "client"
	RoleDriver Role = "driver"
)

// Valid 檢查角色是否為已知值。
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleDriver
}

// User 後端 /users/me/ 回傳的帳號資料。
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsDriver  bool   `json:"is_driver"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Role 依 is_driver 推導角色。
func (u User) Role() Role {
	if u.IsDriver {
		return RoleDriver
	}
	return RoleClient
}

// DisplayName 優先使用姓名，否則回傳帳號。
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Driver 司機檔案。
type Driver struct {
	ID            int64   `json:"id"`
	User          User    `json:"user"`
	LicenseNumber string  `json:"license_number"`
	CarModel      string  `json:"car_model"`
	CarPlate      string  `json:"car_plate"`
	Rating        float64 `json:"rating"`
	IsAvailable   bool    `json:"is_available"`
}

// Registration 註冊表單內容。
type Registration struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsDriver  bool   `json:"is_driver"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Validate 基本欄位檢查，與後端規則一致（兩次密碼須相同）。
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	if r.Password != r.Password2 {
		return errors.New("passwords do not match")
	}
	return nil
}
