package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheFromClient(client, "test:"), mr
}

func TestRedisCache_GetSet(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, port.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.True(t, mr.Exists("test:k"))

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, port.ErrCacheMiss)
}

func TestRedisCache_ConnectionError(t *testing.T) {
	c, mr := newTestRedis(t)
	mr.Close()

	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, port.ErrCacheMiss))
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	now = now.Add(time.Hour)
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, port.ErrCacheMiss)

	got, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

type countingMarket struct {
	calls int
	stats domain.MarketStats
	err   error
}

func (m *countingMarket) StatsForZip(ctx context.Context, zip string) (domain.MarketStats, error) {
	m.calls++
	return m.stats, m.err
}

type countingListings struct {
	calls  int
	record *domain.ListingRecord
}

func (l *countingListings) FindListing(ctx context.Context, address string) (*domain.ListingRecord, error) {
	l.calls++
	return l.record, nil
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("redis down")
}

func (failingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("redis down")
}

func TestMarketStatsProvider_ReadThrough(t *testing.T) {
	c, _ := newTestRedis(t)
	next := &countingMarket{stats: domain.NewMarketStats("46205", 150000, 1000, 80)}
	p := NewMarketStatsProvider(next, c, time.Hour)
	ctx := context.Background()

	first, err := p.StatsForZip(ctx, "46205")
	require.NoError(t, err)
	second, err := p.StatsForZip(ctx, "46205")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 8.0, second.VacancyRatePct)
}

func TestMarketStatsProvider_ErrorsAreNotCached(t *testing.T) {
	next := &countingMarket{err: port.ErrProviderUnavailable}
	p := NewMarketStatsProvider(next, NewMemoryCache(), time.Hour)

	_, err := p.StatsForZip(context.Background(), "46205")
	assert.ErrorIs(t, err, port.ErrProviderUnavailable)
	_, err = p.StatsForZip(context.Background(), "46205")
	assert.ErrorIs(t, err, port.ErrProviderUnavailable)
	assert.Equal(t, 2, next.calls)
}

func TestListingSearch_CachesNoMatch(t *testing.T) {
	next := &countingListings{}
	s := NewListingSearch(next, NewMemoryCache(), time.Hour)

	rec, err := s.FindListing(context.Background(), "12 Elm St")
	require.NoError(t, err)
	assert.Nil(t, rec)
	rec, err = s.FindListing(context.Background(), "  12 ELM   st ")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, 1, next.calls)
}

func TestReadThrough_BrokenCacheFallsBackToProvider(t *testing.T) {
	next := &countingListings{record: &domain.ListingRecord{Source: "Zillow", DaysOnMarket: 12}}
	s := NewListingSearch(next, failingCache{}, time.Hour)

	rec, err := s.FindListing(context.Background(), "12 Elm St")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 12, rec.DaysOnMarket)
}

type countingSource struct {
	calls int
	rows  []domain.RentTableRow
}

func (s *countingSource) FetchRentTable(ctx context.Context) ([]domain.RentTableRow, error) {
	s.calls++
	return s.rows, nil
}

func TestRentTableSource_CachesWholeTable(t *testing.T) {
	c, mr := newTestRedis(t)
	next := &countingSource{rows: []domain.RentTableRow{
		{Zip: "46205", FMR: [5]int{900, 1000, 1200, 1500, 1800}},
	}}
	src := NewRentTableSource(next, c, 7*24*time.Hour)
	ctx := context.Background()

	rows, err := src.FetchRentTable(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, err = src.FetchRentTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.True(t, mr.Exists("test:safmr:table"))

	mr.FastForward(8 * 24 * time.Hour)
	rows, err = src.FetchRentTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1500, rows[0].FMR[3])
	assert.Equal(t, 2, next.calls)
}
