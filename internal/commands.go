package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"section8-underwriter/internal/adapters/hud"
	"section8-underwriter/internal/adapters/metrics"
	postgres_adapter "section8-underwriter/internal/adapters/postgres"
	"section8-underwriter/internal/adapters/sheet"
	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"
	"section8-underwriter/internal/core/port/usecases_port"
	"section8-underwriter/internal/core/usecase"
)

var ErrDatabaseNotConfigured = errors.New("DATABASE_URL is not set")

// AnalyzeOptions - параметры пакетного запуска по файлу
type AnalyzeOptions struct {
	Input  string
	Output string
	// Format выходного файла. Пустое значение - по расширению Output
	Format   sheet.Format
	GoodOnly bool
	Progress usecases_port.ProgressFunc
}

// RunAnalyze читает список объектов из CSV/XLSX, проводит андеррайтинг
// и пишет офферный лист
func RunAnalyze(ctx context.Context, opts Options, a AnalyzeOptions) (domain.BatchResult, error) {
	inFormat, err := sheet.FormatFromFilename(a.Input)
	if err != nil {
		return domain.BatchResult{}, err
	}
	outFormat := a.Format
	if outFormat == "" {
		if outFormat, err = sheet.FormatFromFilename(a.Output); err != nil {
			return domain.BatchResult{}, err
		}
	}

	in, err := os.Open(a.Input)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("failed to open input: %w", err)
	}
	inputs, err := sheet.ReadProperties(in, inFormat)
	in.Close()
	if err != nil {
		return domain.BatchResult{}, err
	}
	if len(inputs) == 0 {
		return domain.BatchResult{}, fmt.Errorf("%s has no properties", a.Input)
	}

	rt, err := newRuntime(ctx, opts)
	if err != nil {
		return domain.BatchResult{}, err
	}
	defer rt.close()

	batch, _, err := rt.newUnderwriter(ctx, metrics.Noop{})
	if err != nil {
		return domain.BatchResult{}, err
	}

	runLogger := rt.baseLogger.WithFields(port.Fields{"command": "analyze", "input": a.Input})
	result, err := batch.Execute(contextkeys.ContextWithLogger(ctx, runLogger), inputs, rt.params, a.Progress)
	if err != nil {
		return domain.BatchResult{}, err
	}

	deals := result.Deals
	if a.GoodOnly {
		deals = result.GoodDeals()
	}
	if err := writeSheetFile(a.Output, outFormat, deals); err != nil {
		return result, err
	}

	runLogger.Info("Offer sheet written", port.Fields{
		"output":  a.Output,
		"deals":   len(deals),
		"skipped": len(result.Skipped),
	})
	return result, nil
}

// writeSheetFile пишет во временный файл рядом с целевым и переименовывает его
func writeSheetFile(path string, format sheet.Format, deals []domain.DealRecord) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".offers-*")
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := sheet.Write(tmp, format, deals); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// RunImportSAFMR скачивает книгу SAFMR и полностью заменяет таблицу rent_table.
// Пустой url означает SAFMR_URL из конфигурации
func RunImportSAFMR(ctx context.Context, opts Options, url string) (int64, error) {
	rt, err := newRuntime(ctx, opts)
	if err != nil {
		return 0, err
	}
	defer rt.close()

	if rt.config.Database.URL == "" {
		return 0, ErrDatabaseNotConfigured
	}
	if url == "" {
		url = rt.config.Providers.SAFMRURL
	}

	pool, err := rt.postgresPool(ctx)
	if err != nil {
		return 0, err
	}
	repo, err := postgres_adapter.NewRentTableRepository(pool)
	if err != nil {
		return 0, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	ctx = contextkeys.ContextWithLogger(ctx, rt.baseLogger.WithFields(port.Fields{"command": "import-safmr", "url": url}))
	return usecase.NewImportRentTableUseCase(hud.NewSAFMRSource(url, rt.config.Providers.UserAgent), repo).Execute(ctx)
}
