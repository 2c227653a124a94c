package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// どのドライバでも同じ振る舞いになること
func assertLocalStorageContract(t *testing.T, s repo.LocalStorage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.GetItem(ctx, model.CartStorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetItem(ctx, model.CartStorageKey, `[{"id":1,"amount":1}]`))
	v, ok, err := s.GetItem(ctx, model.CartStorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1,"amount":1}]`, v)

	//上書き
	require.NoError(t, s.SetItem(ctx, model.CartStorageKey, `[]`))
	v, ok, err = s.GetItem(ctx, model.CartStorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.RemoveItem(ctx, model.CartStorageKey))
	_, ok, err = s.GetItem(ctx, model.CartStorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	//無いキーを消してもエラーにならない
	assert.NoError(t, s.RemoveItem(ctx, "missing"))
}

func TestMemoryLocalStorage(t *testing.T) {
	assertLocalStorageContract(t, infraRepo.NewMemoryLocalStorage())
}

func TestSQLiteLocalStorage(t *testing.T) {
	sqlDB, err := db.ConnectSQLite(filepath.Join(t.TempDir(), "nested", "cart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s, err := infraRepo.NewSQLiteLocalStorage(context.Background(), sqlDB)
	require.NoError(t, err)

	assertLocalStorageContract(t, s)
}

func TestSQLiteLocalStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cart.db")

	first, err := db.ConnectSQLite(path)
	require.NoError(t, err)
	s, err := infraRepo.NewSQLiteLocalStorage(ctx, first)
	require.NoError(t, err)
	require.NoError(t, s.SetItem(ctx, model.CartStorageKey, `[{"id":2,"amount":3}]`))
	require.NoError(t, first.Close())

	second, err := db.ConnectSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	s, err = infraRepo.NewSQLiteLocalStorage(ctx, second)
	require.NoError(t, err)

	v, ok, err := s.GetItem(ctx, model.CartStorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":2,"amount":3}]`, v)
}

func TestRedisLocalStorage(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := infraRepo.NewRedisClient(addr)
	t.Cleanup(func() { _ = client.Close() })

	s := infraRepo.NewRedisLocalStorage(client, "test:"+t.Name()+":")
	require.NoError(t, s.Ping(context.Background()))

	assertLocalStorageContract(t, s)
}

func TestLocalStorageGormRepository(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	gormDB, err := db.ConnectPostgres(config.Config{DatabaseURL: dsn})
	require.NoError(t, err)

	s := infraRepo.NewLocalStorageGormRepository(gormDB)
	require.NoError(t, s.RemoveItem(context.Background(), model.CartStorageKey))

	assertLocalStorageContract(t, s)
}
