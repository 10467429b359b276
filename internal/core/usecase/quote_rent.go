package usecase

import (
	"context"

	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"
	"section8-underwriter/internal/core/underwriting"
)

// QuoteRentUseCase отвечает на запрос аренды без полного андеррайтинга
type QuoteRentUseCase struct {
	rentTable port.RentTableProviderPort
}

func NewQuoteRentUseCase(rentTable port.RentTableProviderPort) *QuoteRentUseCase {
	return &QuoteRentUseCase{rentTable: rentTable}
}

func (uc *QuoteRentUseCase) Execute(ctx context.Context, zip string, bedrooms, sqft int, params domain.UnderwritingParams) domain.RentRecord {
	zip = underwriting.NormalizeZip(zip)
	bedrooms = domain.EffectiveBedrooms(bedrooms)

	rows, err := uc.rentTable.RowsForZip(ctx, zip)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Warn("Rent table lookup failed, using fallback", port.Fields{
			"use_case": "QuoteRent",
			"zip":      zip,
			"error":    err.Error(),
		})
	}

	rec := underwriting.LookupRent(zip, bedrooms, rows, params)
	return underwriting.AdjustRentForSqft(rec, bedrooms, sqft, params)
}
