package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ride-hail-client/internal/infrastructure/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrSchemaMissing client_state 資料表不存在，需先執行 cmd/migrate。
var ErrSchemaMissing = errors.New("client_state table missing, run migrate first")

const pingTimeout = 5 * time.Second

// Connect 開啟保存 client session 的 PostgreSQL 連線池並確認 schema 已建立。
// 未設定 DSN 時回傳 nil，呼叫端改用記憶體 session。
func Connect(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, nil
	}

	pool, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxIdleTime(cfg.MaxIdleTime)

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pingTimeout)
		defer cancel()
	}
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping session db: %w", err)
	}
	if err := checkSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func checkSchema(ctx context.Context, pool *sql.DB) error {
	var table sql.NullString
	if err := pool.QueryRowContext(ctx, `SELECT to_regclass('client_state')::text;`).Scan(&table); err != nil {
		return fmt.Errorf("check session schema: %w", err)
	}
	if !table.Valid {
		return ErrSchemaMissing
	}
	return nil
}
