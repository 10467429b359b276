package usecase

import (
	"context"
	"errors"
	"fmt"

	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/port"
)

var ErrEmptyRentTable = errors.New("rent table source returned no rows")

// ImportRentTableUseCase загружает таблицу SAFMR и полностью заменяет ею хранилище
type ImportRentTableUseCase struct {
	source  port.RentTableSourcePort
	storage port.RentTableStoragePort
}

func NewImportRentTableUseCase(source port.RentTableSourcePort, storage port.RentTableStoragePort) *ImportRentTableUseCase {
	return &ImportRentTableUseCase{
		source:  source,
		storage: storage,
	}
}

func (uc *ImportRentTableUseCase) Execute(ctx context.Context) (int64, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "ImportRentTable"})

	ucLogger.Info("Fetching rent table", nil)
	rows, err := uc.source.FetchRentTable(ctx)
	if err != nil {
		return 0, fmt.Errorf("use case: failed to fetch rent table: %w", err)
	}
	if len(rows) == 0 {
		return 0, ErrEmptyRentTable
	}

	saved, err := uc.storage.ReplaceAll(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("use case: failed to store rent table: %w", err)
	}

	ucLogger.Info("Rent table imported", port.Fields{"fetched": len(rows), "saved": saved})
	return saved, nil
}
