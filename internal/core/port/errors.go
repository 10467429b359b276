package port

import "errors"

var (
	// ErrNotFound - провайдер ответил, но данных по запросу нет
	ErrNotFound = errors.New("not found")
	// ErrProviderUnavailable - провайдер недоступен (сеть, 5xx, открытый breaker)
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrCacheMiss - ключа нет в кэше или срок его жизни истек
	ErrCacheMiss = errors.New("cache miss")
)
