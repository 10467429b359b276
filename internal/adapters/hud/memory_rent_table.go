package hud

import (
	"context"
	"sync"

	"section8-underwriter/internal/core/domain"
)

// MemoryRentTable держит таблицу SAFMR в памяти процесса.
// Реализует и хранилище для импорта, и провайдера строк
type MemoryRentTable struct {
	mu    sync.RWMutex
	byZip map[string][]domain.RentTableRow
	total int64
}

func NewMemoryRentTable() *MemoryRentTable {
	return &MemoryRentTable{byZip: make(map[string][]domain.RentTableRow)}
}

func (t *MemoryRentTable) ReplaceAll(_ context.Context, rows []domain.RentTableRow) (int64, error) {
	byZip := make(map[string][]domain.RentTableRow, len(rows))
	for _, r := range rows {
		byZip[r.Zip] = append(byZip[r.Zip], r)
	}

	t.mu.Lock()
	t.byZip = byZip
	t.total = int64(len(rows))
	t.mu.Unlock()
	return int64(len(rows)), nil
}

func (t *MemoryRentTable) Count(_ context.Context) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total, nil
}

// RowsForZip возвращает пустой срез для неизвестного zip
func (t *MemoryRentTable) RowsForZip(_ context.Context, zip string) ([]domain.RentTableRow, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rows := t.byZip[zip]
	out := make([]domain.RentTableRow, len(rows))
	copy(out, rows)
	return out, nil
}
