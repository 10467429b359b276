package underwriting

import (
	"fmt"

	"section8-underwriter/internal/core/domain"
)

const (
	severeRatio       = 0.30
	wellBelowRatio    = 0.50
	highVacancyPct    = 20.0
	elevatedVacancyPc = 12.0
)

// Фразы, по которым слияние сигналов распознает сильную аномалию цены
const (
	phraseSevereBelowMarket = "severely below market"
	phraseMajorRehab        = "major rehab"
)

// PriceAnomalySignals сравнивает цену с медианой zip и уровень пустующих домов.
// Если медиана неизвестна, сигналов нет
func PriceAnomalySignals(listPrice float64, stats domain.MarketStats) []string {
	if !stats.Known() || listPrice <= 0 {
		return nil
	}

	var signals []string
	ratio := listPrice / stats.MedianValue
	switch {
	case ratio < severeRatio:
		signals = append(signals, fmt.Sprintf("Price %.0f%% of zip median (%s) — %s, likely %s needed",
			ratio*100, formatUSD(stats.MedianValue), phraseSevereBelowMarket, phraseMajorRehab))
	case ratio < wellBelowRatio:
		signals = append(signals, fmt.Sprintf("Price %.0f%% of zip median (%s) — well below market, possible distress",
			ratio*100, formatUSD(stats.MedianValue)))
	}

	switch v := stats.VacancyRatePct; {
	case v >= highVacancyPct:
		signals = append(signals, fmt.Sprintf("ZIP has %.1f%% vacancy rate — high distress area, verify rental demand", v))
	case v >= elevatedVacancyPc:
		signals = append(signals, fmt.Sprintf("ZIP has %.1f%% vacancy rate — above average, check Section 8 demand", v))
	}

	return signals
}
