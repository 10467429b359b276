package underwriting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"section8-underwriter/internal/core/domain"
)

func TestClassifyDeal(t *testing.T) {
	viable := domain.OfferResult{Viable: true}

	tests := []struct {
		name      string
		offer     domain.OfferResult
		condition domain.ConditionLabel
		flags     []string
		want      domain.QualityTier
	}{
		{name: "not viable beats everything", offer: domain.OfferResult{}, condition: domain.ConditionCritical, want: domain.TierNoDeal},
		{name: "critical", offer: viable, condition: domain.ConditionCritical, want: domain.TierInspectFirst},
		{name: "likely distressed", offer: viable, condition: domain.ConditionLikelyDistressed, want: domain.TierInspectFirst},
		{name: "critical flag", offer: viable, condition: domain.ConditionUnknown, flags: []string{flagCritical}, want: domain.TierInspectFirst},
		{name: "inspect headroom flag", offer: viable, condition: domain.ConditionGood, flags: []string{"INSPECT — DSCR supports $1"}, want: domain.TierCaution},
		{name: "any flag", offer: viable, condition: domain.ConditionNeedsWork, flags: []string{"On market 60 days"}, want: domain.TierCaution},
		{name: "clean", offer: viable, condition: domain.ConditionGood, want: domain.TierGreenLight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDeal(tt.offer, tt.condition, tt.flags))
		})
	}
}
