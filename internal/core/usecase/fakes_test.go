package usecase

import (
	"context"
	"sync"
	"time"

	"section8-underwriter/internal/core/domain"

	"github.com/google/uuid"
)

type fakeRentTable struct {
	rows []domain.RentTableRow
	err  error
}

func (f *fakeRentTable) RowsForZip(ctx context.Context, zip string) ([]domain.RentTableRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.RentTableRow
	for _, r := range f.rows {
		if r.Zip == zip {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeMarket struct {
	stats map[string]domain.MarketStats
	err   error
}

func (f *fakeMarket) StatsForZip(ctx context.Context, zip string) (domain.MarketStats, error) {
	if f.err != nil {
		return domain.MarketStats{}, f.err
	}
	return f.stats[zip], nil
}

type fakeListings struct {
	byAddress map[string]*domain.ListingRecord
	err       error
}

func (f *fakeListings) FindListing(ctx context.Context, address string) (*domain.ListingRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byAddress[address], nil
}

type fakeDescriptions struct {
	text  string
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeDescriptions) FetchDescription(ctx context.Context, address string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.text, f.err
}

type fakeMetrics struct {
	mu       sync.Mutex
	deals    map[domain.QualityTier]int
	failures map[string]int
	batches  int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		deals:    make(map[domain.QualityTier]int),
		failures: make(map[string]int),
	}
}

func (f *fakeMetrics) ObserveDeal(tier domain.QualityTier) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deals[tier]++
}

func (f *fakeMetrics) ObserveProviderFailure(provider string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[provider]++
}

func (f *fakeMetrics) ObserveBatch(size int, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
}

type fakePublisher struct {
	taskID uuid.UUID
	result domain.BatchResult
	err    error
	calls  int
}

func (f *fakePublisher) PublishDealSheet(ctx context.Context, taskID uuid.UUID, result domain.BatchResult) error {
	f.calls++
	f.taskID = taskID
	f.result = result
	return f.err
}

type fakeSource struct {
	rows []domain.RentTableRow
	err  error
}

func (f *fakeSource) FetchRentTable(ctx context.Context) ([]domain.RentTableRow, error) {
	return f.rows, f.err
}

type fakeStorage struct {
	saved []domain.RentTableRow
	err   error
}

func (f *fakeStorage) ReplaceAll(ctx context.Context, rows []domain.RentTableRow) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = rows
	return int64(len(rows)), nil
}

func (f *fakeStorage) Count(ctx context.Context) (int64, error) {
	return int64(len(f.saved)), nil
}
