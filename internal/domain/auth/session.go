package auth

import (
	"context"
	"errors"
)

// ErrNoSession 表示目前沒有完整的 Credential Pair。
var ErrNoSession = errors.New("no active session")

// Fixed storage keys for persisted client state.
const (
	KeyTokens  = "tokens"
	KeyProfile = "user"
)

// SessionStore 保存目前的 token 組與最後一次取得的使用者資料。
// 除了 get/set/clear 之外不含任何邏輯；Clear 會同時清除 token 與 profile。
type SessionStore interface {
	LoadTokens(ctx context.Context) (CredentialPair, error)
	SaveTokens(ctx context.Context, pair CredentialPair) error
	LoadProfile(ctx context.Context) (User, error)
	SaveProfile(ctx context.Context, user User) error
	Clear(ctx context.Context) error
}
