package underwriting

import (
	"section8-underwriter/internal/core/domain"
)

// Evidence - данные по объекту, собранные внешними провайдерами.
// Нулевые значения означают, что источник был недоступен
type Evidence struct {
	Input       domain.PropertyInput
	RentRows    []domain.RentTableRow
	Market      domain.MarketStats
	Listing     *domain.ListingRecord
	Description string
	DescSource  string
}

// Underwrite прогоняет объект через весь конвейер расчета и собирает DealRecord.
// Функция чистая: одинаковые входы дают одинаковую запись
func Underwrite(index int, ev Evidence, p domain.UnderwritingParams) domain.DealRecord {
	input := ev.Input
	input.Zip = NormalizeZip(input.Zip)
	input.Bedrooms = domain.EffectiveBedrooms(input.Bedrooms)

	sqft := input.SquareFeet
	if sqft <= 0 && ev.Listing != nil {
		sqft = ev.Listing.SquareFeet
	}

	rent := LookupRent(input.Zip, input.Bedrooms, ev.RentRows, p)
	rent = AdjustRentForSqft(rent, input.Bedrooms, sqft, p)

	descCondition, keywords := ClassifyCondition(ev.Description)
	listingCondition, listingSignals := ListingSignals(ev.Listing)
	marketSignals := PriceAnomalySignals(input.ListPrice, ev.Market)

	offer := ComputeOffer(float64(rent.Amount), input.ListPrice, p)

	fused := FuseSignals(FusionInput{
		DescriptionCondition: descCondition,
		Keywords:             keywords,
		ListingCondition:     listingCondition,
		ListingSignals:       listingSignals,
		MarketSignals:        marketSignals,
		ListPrice:            input.ListPrice,
		Offer:                offer,
	}, p)

	return domain.DealRecord{
		Index:       index,
		Input:       input,
		Quality:     ClassifyDeal(offer, fused.Condition, fused.Flags),
		Rent:        rent,
		Market:      ev.Market,
		Offer:       offer,
		Repair:      EstimateRepairs(fused.Condition, sqft, input.ListPrice, p),
		Condition:   fused.Condition,
		Keywords:    keywords,
		Flags:       fused.Flags,
		Description: ev.Description,
		DescSource:  ev.DescSource,
		SquareFeet:  sqft,
		Listing:     ev.Listing,
	}
}
