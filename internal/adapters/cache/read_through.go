package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"
)

// Префиксы ключей по типам данных
const (
	keyRentTable   = "safmr:table"
	keyRentRows    = "rent:"
	keyMarketStats = "market:"
	keyListing     = "listing:"
	keyDescription = "desc:"
)

// readThrough отдает значение из кэша или вызывает fetch и кэширует результат.
// Ошибки fetch не кэшируются, а сбой самого кэша только логируется
func readThrough[T any](ctx context.Context, cache port.CachePort, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "ReadThroughCache", "key": key})

	raw, err := cache.Get(ctx, key)
	if err == nil {
		var cached T
		if uerr := json.Unmarshal(raw, &cached); uerr == nil {
			return cached, nil
		}
		logger.Warn("Corrupted cache entry, refetching", nil)
	} else if !errors.Is(err, port.ErrCacheMiss) {
		logger.Warn("Cache read failed", port.Fields{"error": err.Error()})
	}

	value, err := fetch()
	if err != nil {
		return value, err
	}

	if raw, merr := json.Marshal(value); merr == nil {
		if serr := cache.Set(ctx, key, raw, ttl); serr != nil {
			logger.Warn("Cache write failed", port.Fields{"error": serr.Error()})
		}
	}
	return value, nil
}

func addressKey(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

// RentTableSource кэширует всю загруженную таблицу SAFMR целиком
type RentTableSource struct {
	next  port.RentTableSourcePort
	cache port.CachePort
	ttl   time.Duration
}

func NewRentTableSource(next port.RentTableSourcePort, cache port.CachePort, ttl time.Duration) *RentTableSource {
	return &RentTableSource{next: next, cache: cache, ttl: ttl}
}

func (s *RentTableSource) FetchRentTable(ctx context.Context) ([]domain.RentTableRow, error) {
	return readThrough(ctx, s.cache, keyRentTable, s.ttl, func() ([]domain.RentTableRow, error) {
		return s.next.FetchRentTable(ctx)
	})
}

// RentTableProvider кэширует строки SAFMR по zip
type RentTableProvider struct {
	next  port.RentTableProviderPort
	cache port.CachePort
	ttl   time.Duration
}

func NewRentTableProvider(next port.RentTableProviderPort, cache port.CachePort, ttl time.Duration) *RentTableProvider {
	return &RentTableProvider{next: next, cache: cache, ttl: ttl}
}

func (p *RentTableProvider) RowsForZip(ctx context.Context, zip string) ([]domain.RentTableRow, error) {
	return readThrough(ctx, p.cache, keyRentRows+zip, p.ttl, func() ([]domain.RentTableRow, error) {
		return p.next.RowsForZip(ctx, zip)
	})
}

// MarketStatsProvider кэширует статистику Census по zip
type MarketStatsProvider struct {
	next  port.MarketStatsProviderPort
	cache port.CachePort
	ttl   time.Duration
}

func NewMarketStatsProvider(next port.MarketStatsProviderPort, cache port.CachePort, ttl time.Duration) *MarketStatsProvider {
	return &MarketStatsProvider{next: next, cache: cache, ttl: ttl}
}

func (p *MarketStatsProvider) StatsForZip(ctx context.Context, zip string) (domain.MarketStats, error) {
	return readThrough(ctx, p.cache, keyMarketStats+zip, p.ttl, func() (domain.MarketStats, error) {
		return p.next.StatsForZip(ctx, zip)
	})
}

// ListingSearch кэширует результат поиска объявления, включая отсутствие совпадения
type ListingSearch struct {
	next  port.ListingSearchPort
	cache port.CachePort
	ttl   time.Duration
}

func NewListingSearch(next port.ListingSearchPort, cache port.CachePort, ttl time.Duration) *ListingSearch {
	return &ListingSearch{next: next, cache: cache, ttl: ttl}
}

func (s *ListingSearch) FindListing(ctx context.Context, address string) (*domain.ListingRecord, error) {
	return readThrough(ctx, s.cache, keyListing+addressKey(address), s.ttl, func() (*domain.ListingRecord, error) {
		return s.next.FindListing(ctx, address)
	})
}

// DescriptionProvider кэширует описания объектов по адресу
type DescriptionProvider struct {
	next  port.DescriptionProviderPort
	cache port.CachePort
	ttl   time.Duration
}

func NewDescriptionProvider(next port.DescriptionProviderPort, cache port.CachePort, ttl time.Duration) *DescriptionProvider {
	return &DescriptionProvider{next: next, cache: cache, ttl: ttl}
}

func (p *DescriptionProvider) FetchDescription(ctx context.Context, address string) (string, error) {
	return readThrough(ctx, p.cache, keyDescription+addressKey(address), p.ttl, func() (string, error) {
		return p.next.FetchDescription(ctx, address)
	})
}
