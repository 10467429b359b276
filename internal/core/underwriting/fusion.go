package underwriting

import (
	"fmt"
	"strings"

	"section8-underwriter/internal/core/domain"
)

const (
	flagCritical       = "CRITICAL DISTRESS — inspect before offering"
	flagPriceAnomaly   = "Price anomaly — well below zip median, verify condition"
	flagRehabSevere    = "Rehab likely — price severely below zip median"
	headlineKeywordCap = 3
)

// FusionInput - все сигналы по объекту, собранные до слияния
type FusionInput struct {
	DescriptionCondition domain.ConditionLabel
	Keywords             []string
	ListingCondition     domain.ConditionLabel
	ListingSignals       []string
	MarketSignals        []string
	ListPrice            float64
	Offer                domain.OfferResult
}

// Fusion - итоговая метка состояния и упорядоченный список флагов
type Fusion struct {
	Condition domain.ConditionLabel
	Flags     []string
}

// FuseSignals сводит сигналы в одну метку и список флагов.
// Результат описания переопределяется только если он Unknown
func FuseSignals(in FusionInput, p domain.UnderwritingParams) Fusion {
	condition := in.DescriptionCondition
	if condition == "" {
		condition = domain.ConditionUnknown
	}

	if condition == domain.ConditionUnknown {
		switch {
		case in.ListingCondition == domain.ConditionCritical || in.ListingCondition == domain.ConditionNeedsWork:
			condition = in.ListingCondition
		case len(in.MarketSignals) > 0:
			condition = domain.ConditionPossiblyDistressed
			if containsAny(in.MarketSignals, phraseSevereBelowMarket, phraseMajorRehab) {
				condition = domain.ConditionLikelyDistressed
			}
		case in.ListingCondition != "":
			condition = in.ListingCondition
		}
	}

	var flags []string
	if headline := headlineFlag(condition, in); headline != "" {
		flags = append(flags, headline)
	}
	flags = appendUnseen(flags, in.MarketSignals)
	flags = appendUnseen(flags, in.ListingSignals)

	if in.Offer.Viable && in.Offer.Headroom >= in.ListPrice*p.InspectThresholdPct {
		flags = append(flags, fmt.Sprintf("INSPECT — DSCR supports %s (%s above list) — likely needs heavy rehab, verify condition",
			formatUSD(in.Offer.DSCRMaxPrice), formatUSD(in.Offer.Headroom)))
	}

	return Fusion{Condition: condition, Flags: flags}
}

func headlineFlag(condition domain.ConditionLabel, in FusionInput) string {
	switch condition {
	case domain.ConditionCritical:
		return flagCritical
	case domain.ConditionNeedsWork, domain.ConditionLikelyDistressed:
		if len(in.Keywords) > 0 {
			kws := in.Keywords
			if len(kws) > headlineKeywordCap {
				kws = kws[:headlineKeywordCap]
			}
			return "Rehab likely — keywords: " + strings.Join(kws, ", ")
		}
		return flagRehabSevere
	case domain.ConditionPossiblyDistressed:
		return flagPriceAnomaly
	}
	return ""
}

// appendUnseen добавляет сигналы, которых еще нет подстрокой в склеенных флагах
func appendUnseen(flags, signals []string) []string {
	for _, s := range signals {
		if strings.Contains(strings.Join(flags, domain.FlagSeparator), s) {
			continue
		}
		flags = append(flags, s)
	}
	return flags
}

func containsAny(signals []string, phrases ...string) bool {
	for _, s := range signals {
		for _, ph := range phrases {
			if strings.Contains(s, ph) {
				return true
			}
		}
	}
	return false
}
