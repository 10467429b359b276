package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"
	"section8-underwriter/internal/core/port/usecases_port"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// UnderwriteBatchUseCase обрабатывает список объектов пулом воркеров
type UnderwriteBatchUseCase struct {
	property usecases_port.UnderwritePropertyPort
	workers  int
	metrics  port.MetricsPort
}

func NewUnderwriteBatchUseCase(property usecases_port.UnderwritePropertyPort, workers int, metrics port.MetricsPort) *UnderwriteBatchUseCase {
	if workers <= 0 {
		workers = 1
	}
	return &UnderwriteBatchUseCase{
		property: property,
		workers:  workers,
		metrics:  metrics,
	}
}

// Execute отсеивает дешевые объекты, обрабатывает остальные параллельно
// и сортирует записи по уровню, а внутри уровня по порядку во входном списке.
// При отмене контекста частичные результаты отбрасываются.
// progress может вызываться из нескольких горутин одновременно
func (uc *UnderwriteBatchUseCase) Execute(
	ctx context.Context,
	inputs []domain.PropertyInput,
	params domain.UnderwritingParams,
	progress usecases_port.ProgressFunc,
) (domain.BatchResult, error) {
	if err := params.Validate(); err != nil {
		return domain.BatchResult{}, err
	}

	result := domain.BatchResult{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
		Summary:   make(map[domain.QualityTier]int),
	}

	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "UnderwriteBatch",
		"run_id":   result.RunID.String(),
	})
	ctx = contextkeys.ContextWithLogger(ctx, ucLogger)

	type job struct {
		index int
		input domain.PropertyInput
	}
	jobs := make([]job, 0, len(inputs))
	for i, in := range inputs {
		if in.ListPrice < domain.MinListPrice {
			result.Skipped = append(result.Skipped, in)
			continue
		}
		jobs = append(jobs, job{index: i, input: in})
	}

	ucLogger.Info("Starting batch", port.Fields{
		"total":   len(inputs),
		"queued":  len(jobs),
		"skipped": len(result.Skipped),
		"workers": uc.workers,
	})

	deals := make([]domain.DealRecord, len(jobs))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i, j := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			deals[i] = uc.property.Execute(gctx, j.index, j.input, params)
			n := done.Add(1)
			if progress != nil {
				progress(int(n), len(jobs), j.input.Address)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		ucLogger.Warn("Batch aborted, discarding partial results", port.Fields{"processed": done.Load()})
		return domain.BatchResult{}, fmt.Errorf("use case: batch %s aborted: %w", result.RunID, err)
	}
	if err := ctx.Err(); err != nil {
		ucLogger.Warn("Batch cancelled, discarding partial results", port.Fields{"processed": done.Load()})
		return domain.BatchResult{}, fmt.Errorf("use case: batch %s cancelled: %w", result.RunID, err)
	}

	sort.SliceStable(deals, func(a, b int) bool {
		ra, rb := deals[a].Quality.Rank(), deals[b].Quality.Rank()
		if ra != rb {
			return ra < rb
		}
		return deals[a].Index < deals[b].Index
	})

	for _, d := range deals {
		result.Summary[d.Quality]++
	}
	result.Deals = deals
	result.FinishedAt = time.Now().UTC()
	uc.metrics.ObserveBatch(len(deals), result.FinishedAt.Sub(result.StartedAt))

	ucLogger.Info("Batch finished", port.Fields{
		"deals":         len(deals),
		"green_light":   result.Summary[domain.TierGreenLight],
		"caution":       result.Summary[domain.TierCaution],
		"inspect_first": result.Summary[domain.TierInspectFirst],
		"no_deal":       result.Summary[domain.TierNoDeal],
		"duration_ms":   result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	})

	return result, nil
}
