package port

import (
	"context"
	"section8-underwriter/internal/core/domain"
)

// RentTableProviderPort отдает строки таблицы SAFMR для zip
type RentTableProviderPort interface {
	RowsForZip(ctx context.Context, zip string) ([]domain.RentTableRow, error)
}

// RentTableSourcePort загружает всю таблицу SAFMR из первоисточника
type RentTableSourcePort interface {
	FetchRentTable(ctx context.Context) ([]domain.RentTableRow, error)
}

// RentTableStoragePort хранит импортированную таблицу
type RentTableStoragePort interface {
	ReplaceAll(ctx context.Context, rows []domain.RentTableRow) (int64, error)
	Count(ctx context.Context) (int64, error)
}
