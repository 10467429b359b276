package underwriting

import "section8-underwriter/internal/core/domain"

// EstimateRepairs оценивает ремонт по площади, а без нее по доле цены
func EstimateRepairs(condition domain.ConditionLabel, sqft int, listPrice float64, p domain.UnderwritingParams) domain.RepairEstimate {
	band := p.Repair.For(condition)
	est := domain.RepairEstimate{Tier: band.Tier, Basis: domain.RepairBasisNone}

	switch {
	case sqft > 0:
		est.Low = roundThousand(band.PerSqftLow * float64(sqft))
		est.High = roundThousand(band.PerSqftHigh * float64(sqft))
		est.Basis = domain.RepairBasisSqft
	case listPrice > 0:
		est.Low = roundThousand(band.PctLow * listPrice)
		est.High = roundThousand(band.PctHigh * listPrice)
		est.Basis = domain.RepairBasisPrice
	}
	return est
}
