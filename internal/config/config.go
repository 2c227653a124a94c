package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	CatalogAPIURL  string        // 商品/在庫APIのベースURL
	CatalogTimeout time.Duration // 1リクエストのタイムアウト

	Storage    string // memory/sqlite/postgres/redis
	SQLitePath string // SQLiteファイル

	DatabaseURL      string // あれば最優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	RedisAddr   string
	RedisPrefix string

	NoticeFeedSize int // 直近の通知を何件持つか

	LogLevel  string
	GoEnv     string // dev/prod
	APISecret string // 空なら書き込みAPIの認証なし
}

// Loadは環境変数
func Load() (Config, error) {
	timeout, err := durationOr("CATALOG_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	pgPort, err := intOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	feedSize, err := intOr("NOTICE_FEED_SIZE", 50)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		CatalogAPIURL:  os.Getenv("CATALOG_API_URL"),
		CatalogTimeout: timeout,

		Storage:    getenv("CART_STORAGE", StorageSQLite),
		SQLitePath: getenv("SQLITE_PATH", "data/storefront.db"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPrefix: os.Getenv("REDIS_PREFIX"),

		NoticeFeedSize: feedSize,

		LogLevel:  getenv("LOG_LEVEL", "info"),
		GoEnv:     getenv("GO_ENV", "dev"),
		APISecret: os.Getenv("CART_API_SECRET"),
	}

	//必須チェック
	if cfg.CatalogAPIURL == "" {
		return Config{}, fmt.Errorf("CATALOG_API_URL is required")
	}
	switch cfg.Storage {
	case StorageMemory, StorageSQLite, StoragePostgres:
	case StorageRedis:
		if cfg.RedisAddr == "" {
			return Config{}, fmt.Errorf("REDIS_ADDR is required when CART_STORAGE=redis")
		}
	default:
		return Config{}, fmt.Errorf("CART_STORAGE must be one of memory/sqlite/postgres/redis: %q", cfg.Storage)
	}
	if cfg.NoticeFeedSize < 1 {
		return Config{}, fmt.Errorf("NOTICE_FEED_SIZE must be positive")
	}

	return cfg, nil
}

// ":8080" 形式
func (c Config) Addr() string {
	if c.Port != "" && c.Port[0] == ':' {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}
