package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgreSQL(GORM)に置くlocalStorage
type LocalStorageGormRepository struct {
	db *gorm.DB
}

// DI
func NewLocalStorageGormRepository(db *gorm.DB) *LocalStorageGormRepository {
	return &LocalStorageGormRepository{db: db}
}

func (r *LocalStorageGormRepository) GetItem(ctx context.Context, key string) (string, bool, error) {
	var entry model.StorageEntry

	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// 同じキーは上書き（upsert）
func (r *LocalStorageGormRepository) SetItem(ctx context.Context, key string, value string) error {
	entry := model.StorageEntry{Key: key, Value: value}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (r *LocalStorageGormRepository) RemoveItem(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&model.StorageEntry{}).Error
}
