package usecases_port

import (
	"context"
	"section8-underwriter/internal/core/domain"

	"github.com/google/uuid"
)

// ProcessBatchTaskPort - задача андеррайтинга, пришедшая из очереди
type ProcessBatchTaskPort interface {
	Execute(ctx context.Context, taskID uuid.UUID, inputs []domain.PropertyInput, override domain.ParamsOverride) error
}
