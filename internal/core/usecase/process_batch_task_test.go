package usecase

import (
	"context"
	"errors"
	"testing"

	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port/usecases_port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBatch struct {
	params domain.UnderwritingParams
	err    error
}

func (s *stubBatch) Execute(ctx context.Context, inputs []domain.PropertyInput, params domain.UnderwritingParams, progress usecases_port.ProgressFunc) (domain.BatchResult, error) {
	s.params = params
	if s.err != nil {
		return domain.BatchResult{}, s.err
	}
	return domain.BatchResult{RunID: uuid.New(), Deals: make([]domain.DealRecord, len(inputs))}, nil
}

func TestProcessBatchTask_AppliesOverrideAndPublishes(t *testing.T) {
	batch := &stubBatch{}
	publisher := &fakePublisher{}
	uc := NewProcessBatchTaskUseCase(batch, publisher, domain.DefaultUnderwritingParams())

	rate := 0.065
	taskID := uuid.New()
	err := uc.Execute(context.Background(), taskID, []domain.PropertyInput{{Address: "a"}}, domain.ParamsOverride{InterestRate: &rate})

	require.NoError(t, err)
	assert.Equal(t, 0.065, batch.params.InterestRate)
	assert.Equal(t, 30, batch.params.LoanTermYears)
	assert.Equal(t, taskID, publisher.taskID)
	assert.Len(t, publisher.result.Deals, 1)
}

func TestProcessBatchTask_Errors(t *testing.T) {
	negative := -1.0
	publisher := &fakePublisher{}
	uc := NewProcessBatchTaskUseCase(&stubBatch{}, publisher, domain.DefaultUnderwritingParams())
	err := uc.Execute(context.Background(), uuid.New(), nil, domain.ParamsOverride{TaxRate: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
	assert.Equal(t, 0, publisher.calls)

	boom := errors.New("boom")
	uc = NewProcessBatchTaskUseCase(&stubBatch{err: boom}, publisher, domain.DefaultUnderwritingParams())
	assert.ErrorIs(t, uc.Execute(context.Background(), uuid.New(), nil, domain.ParamsOverride{}), boom)

	publisher = &fakePublisher{err: boom}
	uc = NewProcessBatchTaskUseCase(&stubBatch{}, publisher, domain.DefaultUnderwritingParams())
	assert.ErrorIs(t, uc.Execute(context.Background(), uuid.New(), nil, domain.ParamsOverride{}), boom)
}
