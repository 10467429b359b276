package port

import (
	"context"
	"section8-underwriter/internal/core/domain"

	"github.com/google/uuid"
)

type DealSheetPublisherPort interface {
	PublishDealSheet(ctx context.Context, taskID uuid.UUID, result domain.BatchResult) error
}
