package usecases_port

import (
	"context"
	"section8-underwriter/internal/core/domain"
)

type QuoteRentPort interface {
	Execute(ctx context.Context, zip string, bedrooms, sqft int, params domain.UnderwritingParams) domain.RentRecord
}
