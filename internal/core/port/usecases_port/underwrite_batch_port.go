package usecases_port

import (
	"context"
	"section8-underwriter/internal/core/domain"
)

// ProgressFunc вызывается после каждого обработанного объекта
type ProgressFunc func(done, total int, address string)

type UnderwriteBatchPort interface {
	Execute(ctx context.Context, inputs []domain.PropertyInput, params domain.UnderwritingParams, progress ProgressFunc) (domain.BatchResult, error)
}
