package underwriting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"section8-underwriter/internal/core/domain"
)

func TestEstimateRepairs(t *testing.T) {
	p := domain.DefaultUnderwritingParams()

	bySqft := EstimateRepairs(domain.ConditionCritical, 1150, 50000, p)
	assert.Equal(t, domain.RepairEstimate{Low: 40000, High: 75000, Tier: "Full Rehab", Basis: domain.RepairBasisSqft}, bySqft)

	good := EstimateRepairs(domain.ConditionGood, 1300, 0, p)
	assert.Equal(t, 0.0, good.Low)
	assert.Equal(t, 7000.0, good.High)

	byPrice := EstimateRepairs(domain.ConditionNeedsWork, 0, 84000, p)
	assert.Equal(t, domain.RepairEstimate{Low: 7000, High: 13000, Tier: "Moderate", Basis: domain.RepairBasisPrice}, byPrice)

	none := EstimateRepairs(domain.ConditionLikelyDistressed, 0, 0, p)
	assert.Equal(t, domain.RepairEstimate{Tier: "Heavy", Basis: domain.RepairBasisNone}, none)
}
