package port

import (
	"context"
	"time"
)

// CachePort - общий read-through кэш для ответов внешних провайдеров.
// Get возвращает ErrCacheMiss, если ключа нет
type CachePort interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
