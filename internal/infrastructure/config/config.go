package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 儲存 client、參考後端與外部相依的執行設定。
type Config struct {
	API      APIConfig      `yaml:"api"`
	DB       DBConfig       `yaml:"db"`
	Poll     PollConfig     `yaml:"poll"`
	Backend  BackendConfig  `yaml:"backend"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Notifier NotifierConfig `yaml:"notifier"`
}

// APIConfig 後端位址；base_url 需含 /api 前綴。
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DBConfig 設定 DSN 時 session 存在 Postgres，否則只存在記憶體。
type DBConfig struct {
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time"`
}

type PollConfig struct {
	ActiveRideInterval     time.Duration `yaml:"active_ride_interval"`
	AvailableRidesInterval time.Duration `yaml:"available_rides_interval"`
}

// BackendConfig 參考後端（devserver）的設定。
type BackendConfig struct {
	Addr       string        `yaml:"addr"`
	Secret     string        `yaml:"secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type NotifierConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  int64  `yaml:"chat_id"`
}

// LoadFromFile 從 YAML 組態檔載入設定；檔案不存在時只套用預設值與環境變數。
func LoadFromFile(path string) (Config, error) {
	// 嘗試載入 .env 檔案（如果存在）
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg = applyDefaults(cfg)
	cfg = applyEnv(cfg)
	return cfg, nil
}

func applyDefaults(cfg Config) Config {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000/api"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 5
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 2
	}
	if cfg.DB.MaxIdleTime == 0 {
		cfg.DB.MaxIdleTime = 15 * time.Minute
	}
	if cfg.Poll.ActiveRideInterval == 0 {
		cfg.Poll.ActiveRideInterval = 10 * time.Second
	}
	if cfg.Poll.AvailableRidesInterval == 0 {
		cfg.Poll.AvailableRidesInterval = 30 * time.Second
	}
	if cfg.Backend.Addr == "" {
		cfg.Backend.Addr = ":8000"
	}
	if cfg.Backend.Secret == "" {
		cfg.Backend.Secret = "dev-secret-change-me"
	}
	if cfg.Backend.TokenTTL == 0 {
		cfg.Backend.TokenTTL = 5 * time.Minute
	}
	if cfg.Backend.RefreshTTL == 0 {
		cfg.Backend.RefreshTTL = 24 * time.Hour
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if val := os.Getenv("API_BASE_URL"); val != "" {
		cfg.API.BaseURL = val
	}
	if val := os.Getenv("API_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.API.Timeout = d
		}
	}
	if val := os.Getenv("DB_DSN"); val != "" {
		cfg.DB.DSN = val
	}
	if val := os.Getenv("POLL_ACTIVE_RIDE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Poll.ActiveRideInterval = d
		}
	}
	if val := os.Getenv("POLL_AVAILABLE_RIDES_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Poll.AvailableRidesInterval = d
		}
	}
	if val := os.Getenv("BACKEND_ADDR"); val != "" {
		cfg.Backend.Addr = val
	}
	if val := os.Getenv("PORT"); val != "" {
		cfg.Backend.Addr = ":" + val
	}
	if val := os.Getenv("AUTH_SECRET"); val != "" {
		cfg.Backend.Secret = val
	}
	if val := os.Getenv("METRICS_ADDR"); val != "" {
		cfg.Metrics.Addr = val
	}
	if val := os.Getenv("TELEGRAM_TOKEN"); val != "" {
		cfg.Notifier.Telegram.Token = val
	}
	if val := os.Getenv("TELEGRAM_CHAT_ID"); val != "" {
		if id, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Notifier.Telegram.ChatID = id
		}
	}
	if val := os.Getenv("TELEGRAM_ENABLED"); val != "" {
		cfg.Notifier.Telegram.Enabled = (val == "true")
	}
	return cfg
}
