package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redisに置くlocalStorage
type RedisLocalStorage struct {
	client *redis.Client
	prefix string
}

// DI
// prefix はキーの前に付ける（複数ストアで1つのRedisを共有するとき用）。
func NewRedisLocalStorage(client *redis.Client, prefix string) *RedisLocalStorage {
	return &RedisLocalStorage{client: client, prefix: prefix}
}

// redisAddr は "redis://..." でも "host:port" でもよい
func NewRedisClient(redisAddr string) *redis.Client {
	opts, err := redis.ParseURL(redisAddr)
	if err != nil {
		opts = &redis.Options{
			Addr:         redisAddr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}
	}
	return redis.NewClient(opts)
}

// 疎通確認
func (s *RedisLocalStorage) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *RedisLocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// 期限なしで上書き
func (s *RedisLocalStorage) SetItem(ctx context.Context, key string, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *RedisLocalStorage) RemoveItem(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
