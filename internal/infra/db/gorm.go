package db

import (
	"fmt"

	"storefront/internal/config"
	"storefront/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectPostgres はDBに接続して *gorm.DB を返す。
// local_storage テーブルはここでマイグレーションする。
func ConnectPostgres(cfg config.Config) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL
	// DATABASE_URL が無ければ POSTGRES_* から組み立てる
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
		)
	}

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := gormDB.AutoMigrate(&model.StorageEntry{}); err != nil {
		return nil, fmt.Errorf("migrate local_storage: %w", err)
	}
	return gormDB, nil
}
