package port

import (
	"section8-underwriter/internal/core/domain"
	"time"
)

type MetricsPort interface {
	ObserveDeal(tier domain.QualityTier)
	ObserveProviderFailure(provider string)
	ObserveBatch(size int, duration time.Duration)
}
