package usecase

import (
	"context"
	"fmt"

	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"
	"section8-underwriter/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

// ProcessBatchTaskUseCase выполняет задачу из очереди и публикует готовый лист
type ProcessBatchTaskUseCase struct {
	batch     usecases_port.UnderwriteBatchPort
	publisher port.DealSheetPublisherPort
	defaults  domain.UnderwritingParams
}

func NewProcessBatchTaskUseCase(
	batch usecases_port.UnderwriteBatchPort,
	publisher port.DealSheetPublisherPort,
	defaults domain.UnderwritingParams,
) *ProcessBatchTaskUseCase {
	return &ProcessBatchTaskUseCase{
		batch:     batch,
		publisher: publisher,
		defaults:  defaults,
	}
}

func (uc *ProcessBatchTaskUseCase) Execute(ctx context.Context, taskID uuid.UUID, inputs []domain.PropertyInput, override domain.ParamsOverride) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ProcessBatchTask",
		"task_id":  taskID.String(),
	})

	params, err := override.Apply(uc.defaults)
	if err != nil {
		return fmt.Errorf("use case: task %s has invalid params: %w", taskID, err)
	}

	result, err := uc.batch.Execute(contextkeys.ContextWithLogger(ctx, ucLogger), inputs, params, nil)
	if err != nil {
		return fmt.Errorf("use case: task %s failed: %w", taskID, err)
	}

	if err := uc.publisher.PublishDealSheet(ctx, taskID, result); err != nil {
		ucLogger.Error("Failed to publish deal sheet", err, nil)
		return fmt.Errorf("use case: task %s publish failed: %w", taskID, err)
	}

	ucLogger.Info("Deal sheet published", port.Fields{"run_id": result.RunID.String(), "deals": len(result.Deals)})
	return nil
}
