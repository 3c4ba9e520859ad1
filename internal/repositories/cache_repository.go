package repositories

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss возвращается Get, когда ключа нет.
var ErrCacheMiss = errors.New("ключ не найден в кеше")

type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	DelByPrefix(ctx context.Context, prefix string) error
}
