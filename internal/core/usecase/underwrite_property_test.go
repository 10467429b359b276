package usecase

import (
	"context"
	"errors"
	"testing"

	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnderwriteProperty_CombinesProviders(t *testing.T) {
	metrics := newFakeMetrics()
	uc := NewUnderwritePropertyUseCase(
		&fakeRentTable{rows: []domain.RentTableRow{{Zip: "46205", FMR: [5]int{900, 1000, 1200, 1500, 1700}}}},
		&fakeMarket{stats: map[string]domain.MarketStats{"46205": domain.NewMarketStats("46205", 120000, 1000, 50)}},
		&fakeListings{byAddress: map[string]*domain.ListingRecord{
			"10 Main St, Indianapolis, IN": {Source: "Zillow", DaysOnMarket: 100, SquareFeet: 1100},
		}},
		&fakeDescriptions{text: "Needs work throughout, investor special"},
		"Rentcast",
		metrics,
	)

	rec := uc.Execute(context.Background(), 2, domain.PropertyInput{
		Address:   "10 Main St, Indianapolis, IN",
		Zip:       "46205",
		Bedrooms:  3,
		ListPrice: 90000,
	}, domain.DefaultUnderwritingParams())

	assert.Equal(t, 2, rec.Index)
	assert.Equal(t, 1500, rec.Rent.Amount)
	assert.Equal(t, "Rentcast API", rec.DescSource)
	assert.Equal(t, domain.ConditionNeedsWork, rec.Condition)
	assert.Equal(t, []string{"investor special", "needs work"}, rec.Keywords)
	require.NotNil(t, rec.Listing)
	assert.Equal(t, 1100, rec.SquareFeet)
	assert.Contains(t, rec.FlagsText(), "On market 100 days")
	assert.Equal(t, 1, metrics.deals[rec.Quality])
	assert.Empty(t, metrics.failures)
}

func TestUnderwriteProperty_DegradesOnProviderFailures(t *testing.T) {
	metrics := newFakeMetrics()
	boom := errors.New("boom")
	uc := NewUnderwritePropertyUseCase(
		&fakeRentTable{err: boom},
		&fakeMarket{err: port.ErrProviderUnavailable},
		&fakeListings{err: boom},
		&fakeDescriptions{err: boom},
		"Rentcast",
		metrics,
	)

	rec := uc.Execute(context.Background(), 0, domain.PropertyInput{
		Address:   "10 Main St",
		Zip:       "46205",
		Bedrooms:  2,
		ListPrice: 80000,
	}, domain.DefaultUnderwritingParams())

	assert.Equal(t, 1350, rec.Rent.Amount)
	assert.True(t, rec.Rent.Fallback)
	assert.False(t, rec.Market.Known())
	assert.Nil(t, rec.Listing)
	assert.Equal(t, "Rentcast API (no description returned)", rec.DescSource)
	assert.Equal(t, domain.ConditionUnknown, rec.Condition)
	assert.Equal(t, 4, len(metrics.failures))
}

func TestUnderwriteProperty_DescriptionSources(t *testing.T) {
	params := domain.DefaultUnderwritingParams()

	t.Run("input description wins", func(t *testing.T) {
		provider := &fakeDescriptions{text: "Gutted"}
		uc := NewUnderwritePropertyUseCase(&fakeRentTable{}, &fakeMarket{}, nil, provider, "Rentcast", newFakeMetrics())

		rec := uc.Execute(context.Background(), 0, domain.PropertyInput{
			Address: "1 A St", Zip: "1", ListPrice: 50000, Description: "Cute bungalow, fixer",
		}, params)

		assert.Equal(t, DescSourceInput, rec.DescSource)
		assert.Equal(t, 0, provider.calls)
	})

	t.Run("no provider configured", func(t *testing.T) {
		uc := NewUnderwritePropertyUseCase(&fakeRentTable{}, &fakeMarket{}, nil, nil, "Rentcast", newFakeMetrics())

		rec := uc.Execute(context.Background(), 0, domain.PropertyInput{Address: "1 A St", Zip: "1", ListPrice: 50000}, params)

		assert.Equal(t, DescSourceNoKey, rec.DescSource)
	})

	t.Run("no address", func(t *testing.T) {
		provider := &fakeDescriptions{text: "Fire damage"}
		uc := NewUnderwritePropertyUseCase(&fakeRentTable{}, &fakeMarket{}, nil, provider, "Rentcast", newFakeMetrics())

		rec := uc.Execute(context.Background(), 0, domain.PropertyInput{Zip: "1", ListPrice: 50000}, params)

		assert.Equal(t, DescSourceNoAddress, rec.DescSource)
		assert.Equal(t, 0, provider.calls)
	})

	t.Run("short input description is discarded", func(t *testing.T) {
		uc := NewUnderwritePropertyUseCase(&fakeRentTable{}, &fakeMarket{}, nil, nil, "Rentcast", newFakeMetrics())

		rec := uc.Execute(context.Background(), 0, domain.PropertyInput{
			Address: "1 A St", Zip: "1", ListPrice: 50000, Description: "as-is sale",
		}, params)

		assert.Equal(t, DescSourceNoKey, rec.DescSource)
		assert.Empty(t, rec.Description)
		assert.Equal(t, domain.ConditionUnknown, rec.Condition)
		assert.Empty(t, rec.Keywords)
	})

	t.Run("short input description replaced by provider text", func(t *testing.T) {
		provider := &fakeDescriptions{text: "Fire damage throughout"}
		uc := NewUnderwritePropertyUseCase(&fakeRentTable{}, &fakeMarket{}, nil, provider, "Rentcast", newFakeMetrics())

		rec := uc.Execute(context.Background(), 0, domain.PropertyInput{
			Address: "1 A St", Zip: "1", ListPrice: 50000, Description: "as-is sale",
		}, params)

		assert.Equal(t, "Rentcast API", rec.DescSource)
		assert.Equal(t, "Fire damage throughout", rec.Description)
		assert.Equal(t, 1, provider.calls)
	})

	t.Run("provider returns nothing", func(t *testing.T) {
		provider := &fakeDescriptions{}
		uc := NewUnderwritePropertyUseCase(&fakeRentTable{}, &fakeMarket{}, nil, provider, "Rentcast", newFakeMetrics())

		rec := uc.Execute(context.Background(), 0, domain.PropertyInput{
			Address: "1 A St", Zip: "1", ListPrice: 50000, Description: "as-is sale",
		}, params)

		assert.Equal(t, "Rentcast API (no description returned)", rec.DescSource)
		assert.Empty(t, rec.Description)
	})
}
