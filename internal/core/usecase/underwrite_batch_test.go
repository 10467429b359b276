package usecase

import (
	"context"
	"sync"
	"testing"

	"section8-underwriter/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProperty возвращает заранее заданный уровень по адресу
type stubProperty struct {
	tiers  map[string]domain.QualityTier
	cancel context.CancelFunc
	mu     sync.Mutex
	seen   []string
}

func (s *stubProperty) Execute(ctx context.Context, index int, input domain.PropertyInput, params domain.UnderwritingParams) domain.DealRecord {
	s.mu.Lock()
	s.seen = append(s.seen, input.Address)
	s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	return domain.DealRecord{Index: index, Input: input, Quality: s.tiers[input.Address]}
}

func TestUnderwriteBatch_SortsByTierThenInputOrder(t *testing.T) {
	stub := &stubProperty{tiers: map[string]domain.QualityTier{
		"a": domain.TierNoDeal,
		"b": domain.TierCaution,
		"c": domain.TierGreenLight,
		"d": domain.TierCaution,
		"e": domain.TierInspectFirst,
		"f": domain.TierGreenLight,
	}}
	metrics := newFakeMetrics()
	uc := NewUnderwriteBatchUseCase(stub, 3, metrics)

	inputs := []domain.PropertyInput{
		{Address: "a", ListPrice: 50000},
		{Address: "b", ListPrice: 50000},
		{Address: "cheap", ListPrice: 19999},
		{Address: "c", ListPrice: 50000},
		{Address: "d", ListPrice: 50000},
		{Address: "e", ListPrice: 50000},
		{Address: "f", ListPrice: 20000},
	}

	var mu sync.Mutex
	var progressCalls int
	res, err := uc.Execute(context.Background(), inputs, domain.DefaultUnderwritingParams(), func(done, total int, address string) {
		mu.Lock()
		defer mu.Unlock()
		progressCalls++
		assert.Equal(t, 6, total)
	})
	require.NoError(t, err)

	var order []string
	for _, d := range res.Deals {
		order = append(order, d.Input.Address)
	}
	assert.Equal(t, []string{"c", "f", "b", "d", "e", "a"}, order)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "cheap", res.Skipped[0].Address)
	assert.Equal(t, 2, res.Summary[domain.TierGreenLight])
	assert.Equal(t, 2, res.Summary[domain.TierCaution])
	assert.Equal(t, 6, progressCalls)
	assert.NotEmpty(t, res.RunID.String())
	assert.Equal(t, 1, metrics.batches)

	good := res.GoodDeals()
	assert.Len(t, good, 4)
}

func TestUnderwriteBatch_CancelledRunDiscardsResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stub := &stubProperty{tiers: map[string]domain.QualityTier{}, cancel: cancel}
	uc := NewUnderwriteBatchUseCase(stub, 1, newFakeMetrics())

	inputs := make([]domain.PropertyInput, 0, 10)
	for i := 0; i < 10; i++ {
		inputs = append(inputs, domain.PropertyInput{Address: "x", ListPrice: 60000})
	}

	res, err := uc.Execute(ctx, inputs, domain.DefaultUnderwritingParams(), nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Deals)
	assert.Less(t, len(stub.seen), 10)
}

func TestUnderwriteBatch_RejectsInvalidParams(t *testing.T) {
	uc := NewUnderwriteBatchUseCase(&stubProperty{}, 2, newFakeMetrics())
	params := domain.DefaultUnderwritingParams()
	params.LoanTermYears = 0

	_, err := uc.Execute(context.Background(), []domain.PropertyInput{{Address: "a", ListPrice: 50000}}, params, nil)

	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}
