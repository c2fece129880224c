package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"ride-hail-client/internal/infrastructure/config"

	_ "github.com/lib/pq"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	migrationsPath := flag.String("dir", "db/migrations", "path to migrations directory")
	flag.Parse()

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		log.Fatalf("讀取組態失敗: %v", err)
	}
	if cfg.DB.DSN == "" {
		log.Fatal("config.db.dsn 未設定，session 只存在記憶體，不需要 migration")
	}

	files, err := migrationFiles(*migrationsPath)
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		log.Fatalf("連線資料庫失敗: %v", err)
	}
	defer db.Close()

	applied, err := migrate(context.Background(), db, files, os.ReadFile)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Migration 完成，新套用 %d 個檔案\n", applied)
}

func migrationFiles(dir string) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("解析 migrations 路徑失敗: %w", err)
	}
	if _, err := os.Stat(absDir); err != nil {
		return nil, fmt.Errorf("migrations 目錄不存在: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(absDir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("讀取 migrations 失敗: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("找不到任何 .sql migration 檔案")
	}
	sort.Strings(files)
	return files, nil
}

// migrate 依檔名順序套用尚未執行過的檔案；每個檔案與其紀錄在同一個 transaction。
func migrate(ctx context.Context, db *sql.DB, files []string, read func(string) ([]byte, error)) (int, error) {
	const ensure = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    name       TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	if _, err := db.ExecContext(ctx, ensure); err != nil {
		return 0, fmt.Errorf("建立 schema_migrations 失敗: %w", err)
	}

	applied := 0
	for _, f := range files {
		name := filepath.Base(f)
		var exists bool
		if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1);`, name).Scan(&exists); err != nil {
			return applied, fmt.Errorf("查詢 %s 狀態失敗: %w", name, err)
		}
		if exists {
			log.Printf("略過已套用的 migration: %s", name)
			continue
		}

		sqlBytes, err := read(f)
		if err != nil {
			return applied, fmt.Errorf("讀取檔案 %s 失敗: %w", name, err)
		}
		log.Printf("執行 migration: %s", name)
		if err := applyOne(ctx, db, name, string(sqlBytes)); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func applyOne(ctx context.Context, db *sql.DB, name, stmt string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("開始 %s transaction 失敗: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("執行 %s 失敗: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1);`, name); err != nil {
		return fmt.Errorf("記錄 %s 失敗: %w", name, err)
	}
	return tx.Commit()
}
