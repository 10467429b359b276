package underwriting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"section8-underwriter/internal/core/domain"
)

func TestUnderwrite_SevereMarketAnomalyWithoutDescription(t *testing.T) {
	p := domain.DefaultUnderwritingParams()

	rec := Underwrite(4, Evidence{
		Input:  domain.PropertyInput{Address: "12 Elm St, Gary, IN", Zip: "46404", ListPrice: 30000},
		Market: domain.NewMarketStats("46404", 150000, 1000, 50),
	}, p)

	assert.Equal(t, 4, rec.Index)
	assert.Equal(t, 3, rec.Input.Bedrooms, "missing bedrooms default to 3")
	assert.Equal(t, 1650, rec.Rent.Amount)
	assert.Equal(t, domain.ConditionLikelyDistressed, rec.Condition)
	assert.Equal(t, domain.TierInspectFirst, rec.Quality)

	require.True(t, rec.Offer.Viable)
	assert.Equal(t, 20000.0, rec.Offer.MaxBuyerPrice)

	require.Len(t, rec.Flags, 3)
	assert.Equal(t, flagRehabSevere, rec.Flags[0])
	assert.Contains(t, rec.Flags[1], "severely below market")
	assert.Contains(t, rec.Flags[2], "INSPECT")
	assert.Equal(t, "Heavy", rec.Repair.Tier)
	assert.Equal(t, domain.RepairBasisPrice, rec.Repair.Basis)
}

func TestUnderwrite_GreenLight(t *testing.T) {
	p := domain.DefaultUnderwritingParams()
	rows := []domain.RentTableRow{{Zip: "46205", FMR: [5]int{900, 1010, 1240, 1200, 1800}}}

	rec := Underwrite(0, Evidence{
		Input: domain.PropertyInput{
			Address:     "55 Pine Rd, Indianapolis, IN",
			Zip:         "46205-2211",
			Bedrooms:    3,
			ListPrice:   95000,
			SquareFeet:  1100,
			Description: "Well kept brick ranch with updated kitchen",
		},
		RentRows:   rows,
		Market:     domain.NewMarketStats("46205", 110000, 1000, 60),
		DescSource: "CSV",
	}, p)

	assert.Equal(t, "46205", rec.Input.Zip)
	assert.Equal(t, 1200, rec.Rent.Amount)
	assert.Equal(t, domain.ConditionGood, rec.Condition)
	assert.Empty(t, rec.Flags)
	assert.Equal(t, domain.TierGreenLight, rec.Quality)
	assert.Equal(t, 85000.0, rec.Offer.MaxBuyerPrice)
	assert.Equal(t, domain.RepairBasisSqft, rec.Repair.Basis)
}

func TestUnderwrite_ListingSquareFeetFallback(t *testing.T) {
	p := domain.DefaultUnderwritingParams()

	rec := Underwrite(0, Evidence{
		Input:   domain.PropertyInput{Address: "1 A St", Zip: "99999", Bedrooms: 3, ListPrice: 90000},
		Listing: &domain.ListingRecord{SquareFeet: 700},
	}, p)

	assert.Equal(t, 700, rec.SquareFeet)
	assert.Equal(t, 1518, rec.Rent.Amount)
	assert.Contains(t, rec.Rent.Source, "sqft adj -8%")
}

func TestUnderwrite_UnpricedPropertyStillProducesRecord(t *testing.T) {
	p := domain.DefaultUnderwritingParams()
	p.TargetCashflow = 10000

	rec := Underwrite(1, Evidence{
		Input:       domain.PropertyInput{Address: "9 Oak Ave", Zip: "46205", Bedrooms: 2, ListPrice: 70000},
		Description: "Condemned property, land value only",
		DescSource:  "CSV",
	}, p)

	assert.Equal(t, domain.TierNoDeal, rec.Quality)
	assert.Equal(t, domain.ConditionCritical, rec.Condition)
	assert.Equal(t, []string{"condemned", "land value only"}, rec.Keywords)
	assert.Equal(t, 1350, rec.Rent.Amount)
}
