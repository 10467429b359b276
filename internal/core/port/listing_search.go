package port

import (
	"context"
	"section8-underwriter/internal/core/domain"
)

// ListingSearchPort ищет объявление по адресу.
// Отсутствие совпадения - это (nil, nil), а не ошибка
type ListingSearchPort interface {
	FindListing(ctx context.Context, address string) (*domain.ListingRecord, error)
}
