package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"
	"section8-underwriter/internal/core/underwriting"
)

// Метки происхождения описания объекта
const (
	DescSourceInput     = "CSV"
	DescSourceNoAddress = "No address"
	DescSourceNoKey     = "No API key — add Description column to CSV"

	minInputDescriptionLen = 10
)

// Имена провайдеров для логов и метрик
const (
	providerRentTable   = "rent_table"
	providerMarketStats = "market_stats"
	providerListing     = "listing_search"
	providerDescription = "description"
)

// UnderwritePropertyUseCase собирает данные по объекту из внешних провайдеров
// и передает их в чистый конвейер расчета. Ошибка любого провайдера
// не прерывает обработку: вместо данных используются значения по умолчанию
type UnderwritePropertyUseCase struct {
	rentTable         port.RentTableProviderPort
	market            port.MarketStatsProviderPort
	listings          port.ListingSearchPort
	descriptions      port.DescriptionProviderPort
	descriptionSource string
	metrics           port.MetricsPort
}

// NewUnderwritePropertyUseCase создает юзкейс.
// listings и descriptions могут быть nil, если провайдер не настроен
func NewUnderwritePropertyUseCase(
	rentTable port.RentTableProviderPort,
	market port.MarketStatsProviderPort,
	listings port.ListingSearchPort,
	descriptions port.DescriptionProviderPort,
	descriptionSource string,
	metrics port.MetricsPort,
) *UnderwritePropertyUseCase {
	return &UnderwritePropertyUseCase{
		rentTable:         rentTable,
		market:            market,
		listings:          listings,
		descriptions:      descriptions,
		descriptionSource: descriptionSource,
		metrics:           metrics,
	}
}

// Execute обрабатывает один объект и всегда возвращает запись
func (uc *UnderwritePropertyUseCase) Execute(ctx context.Context, index int, input domain.PropertyInput, params domain.UnderwritingParams) domain.DealRecord {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "UnderwriteProperty",
		"index":    index,
		"address":  input.Address,
		"zip":      input.Zip,
	})
	zip := underwriting.NormalizeZip(input.Zip)

	var (
		wg         sync.WaitGroup
		rows       []domain.RentTableRow
		stats      domain.MarketStats
		listing    *domain.ListingRecord
		desc       string
		descSource string
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		r, err := uc.rentTable.RowsForZip(ctx, zip)
		if err != nil {
			uc.providerFailed(ucLogger, providerRentTable, err)
			return
		}
		rows = r
	}()
	go func() {
		defer wg.Done()
		s, err := uc.market.StatsForZip(ctx, zip)
		if err != nil {
			uc.providerFailed(ucLogger, providerMarketStats, err)
			return
		}
		stats = s
	}()
	go func() {
		defer wg.Done()
		if uc.listings == nil || strings.TrimSpace(input.Address) == "" {
			return
		}
		rec, err := uc.listings.FindListing(ctx, input.Address)
		if err != nil {
			uc.providerFailed(ucLogger, providerListing, err)
			return
		}
		listing = rec
	}()
	go func() {
		defer wg.Done()
		desc, descSource = uc.resolveDescription(ctx, input, ucLogger)
	}()
	wg.Wait()

	record := underwriting.Underwrite(index, underwriting.Evidence{
		Input:       input,
		RentRows:    rows,
		Market:      stats,
		Listing:     listing,
		Description: desc,
		DescSource:  descSource,
	}, params)

	uc.metrics.ObserveDeal(record.Quality)
	ucLogger.Debug("Property underwritten", port.Fields{
		"quality":    record.Quality,
		"condition":  record.Condition,
		"your_offer": record.Offer.YourOffer,
		"rent":       record.Rent.Amount,
	})

	return record
}

// resolveDescription выбирает описание: собственный текст вызывающего,
// если он достаточно длинный, иначе ответ провайдера описаний.
// Короткий собственный текст отбрасывается
func (uc *UnderwritePropertyUseCase) resolveDescription(ctx context.Context, input domain.PropertyInput, logger port.LoggerPort) (string, string) {
	own := strings.TrimSpace(input.Description)
	if len([]rune(own)) > minInputDescriptionLen {
		return own, DescSourceInput
	}
	if strings.TrimSpace(input.Address) == "" {
		return "", DescSourceNoAddress
	}
	if uc.descriptions == nil {
		return "", DescSourceNoKey
	}

	text, err := uc.descriptions.FetchDescription(ctx, input.Address)
	if err != nil {
		uc.providerFailed(logger, providerDescription, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Sprintf("%s API (no description returned)", uc.descriptionSource)
	}
	return text, fmt.Sprintf("%s API", uc.descriptionSource)
}

func (uc *UnderwritePropertyUseCase) providerFailed(logger port.LoggerPort, provider string, err error) {
	uc.metrics.ObserveProviderFailure(provider)
	logger.Warn("Provider lookup failed, using fallback", port.Fields{
		"provider": provider,
		"error":    err.Error(),
	})
}
