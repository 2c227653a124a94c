package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteファイルに置くlocalStorage（デフォルト）
type SQLiteLocalStorage struct {
	db *sql.DB
}

// DI
// テーブルが無ければ作る。
func NewSQLiteLocalStorage(ctx context.Context, db *sql.DB) (*SQLiteLocalStorage, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS local_storage (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return nil, fmt.Errorf("create local_storage table: %w", err)
	}
	return &SQLiteLocalStorage{db: db}, nil
}

func (s *SQLiteLocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// 同じキーは上書き
func (s *SQLiteLocalStorage) SetItem(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO local_storage (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	return err
}

func (s *SQLiteLocalStorage) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key)
	return err
}
