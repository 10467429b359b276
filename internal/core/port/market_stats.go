package port

import (
	"context"
	"section8-underwriter/internal/core/domain"
)

type MarketStatsProviderPort interface {
	StatsForZip(ctx context.Context, zip string) (domain.MarketStats, error)
}
