package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	authDomain "ride-hail-client/internal/domain/auth"
)

// SessionRepo 把 client 端登入狀態存在 client_state(key, value jsonb)。
// tokens 與 user 兩個 key 一起清除。
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo 建立 SessionRepo。
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

var _ authDomain.SessionStore = (*SessionRepo)(nil)

// LoadTokens 讀取憑證；不存在或不完整時回 ErrNoSession。
func (r *SessionRepo) LoadTokens(ctx context.Context) (authDomain.CredentialPair, error) {
	var pair authDomain.CredentialPair
	if err := r.get(ctx, authDomain.KeyTokens, &pair); err != nil {
		return authDomain.CredentialPair{}, err
	}
	if !pair.Complete() {
		return authDomain.CredentialPair{}, authDomain.ErrNoSession
	}
	return pair, nil
}

// SaveTokens 寫入憑證，只接受完整的一組。
func (r *SessionRepo) SaveTokens(ctx context.Context, pair authDomain.CredentialPair) error {
	if !pair.Complete() {
		return errors.New("save tokens: incomplete credential pair")
	}
	return r.put(ctx, authDomain.KeyTokens, pair)
}

// LoadProfile 讀取最後一次取得的使用者資料。
func (r *SessionRepo) LoadProfile(ctx context.Context) (authDomain.User, error) {
	var u authDomain.User
	if err := r.get(ctx, authDomain.KeyProfile, &u); err != nil {
		return authDomain.User{}, err
	}
	return u, nil
}

// SaveProfile 寫入使用者資料。
func (r *SessionRepo) SaveProfile(ctx context.Context, u authDomain.User) error {
	return r.put(ctx, authDomain.KeyProfile, u)
}

// Clear 刪除整個 session。
func (r *SessionRepo) Clear(ctx context.Context) error {
	const q = `DELETE FROM client_state WHERE key IN ($1, $2);`
	if _, err := r.db.ExecContext(ctx, q, authDomain.KeyTokens, authDomain.KeyProfile); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *SessionRepo) get(ctx context.Context, key string, out any) error {
	const q = `SELECT value FROM client_state WHERE key = $1;`
	var raw []byte
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authDomain.ErrNoSession
		}
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *SessionRepo) put(ctx context.Context, key string, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	const q = `
INSERT INTO client_state (key, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, updated_at = NOW();
`
	if _, err := r.db.ExecContext(ctx, q, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
