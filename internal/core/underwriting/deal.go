package underwriting

import (
	"strings"

	"section8-underwriter/internal/core/domain"
)

// ClassifyDeal присваивает итоговый уровень в фиксированном порядке проверок
func ClassifyDeal(offer domain.OfferResult, condition domain.ConditionLabel, flags []string) domain.QualityTier {
	if !offer.Viable {
		return domain.TierNoDeal
	}
	if condition == domain.ConditionCritical || condition == domain.ConditionLikelyDistressed {
		return domain.TierInspectFirst
	}
	for _, f := range flags {
		if strings.Contains(f, "CRITICAL") {
			return domain.TierInspectFirst
		}
	}
	if len(flags) > 0 {
		return domain.TierCaution
	}
	return domain.TierGreenLight
}
