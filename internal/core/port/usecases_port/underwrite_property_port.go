package usecases_port

import (
	"context"
	"section8-underwriter/internal/core/domain"
)

type UnderwritePropertyPort interface {
	Execute(ctx context.Context, index int, input domain.PropertyInput, params domain.UnderwritingParams) domain.DealRecord
}
