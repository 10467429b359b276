package underwriting

import (
	"fmt"
	"strings"

	"section8-underwriter/internal/core/domain"
)

const (
	priceCutThreshold = -5000.0
	longDOM           = 90
	noticeableDOM     = 45
	insightKeywordCap = 3
)

// ListingSignals переводит метаданные объявления в подсказку о состоянии
// и список сигналов. Пустая метка означает, что состояние не определено
func ListingSignals(rec *domain.ListingRecord) (domain.ConditionLabel, []string) {
	if rec == nil {
		return "", nil
	}

	var condition domain.ConditionLabel
	var signals []string

	source := rec.Source
	if source == "" {
		source = "Listing"
	}

	snippet := strings.TrimSpace(rec.Snippet)
	if snippet != "" && rec.SnippetType == domain.ListingSnippetInsight {
		label, hits := ClassifyCondition(snippet)
		if label == domain.ConditionCritical || label == domain.ConditionNeedsWork {
			condition = label
			if len(hits) > insightKeywordCap {
				hits = hits[:insightKeywordCap]
			}
			signals = append(signals, fmt.Sprintf("%s insight: \"%s\" → %s", source, snippet, strings.Join(hits, ", ")))
		} else {
			signals = append(signals, fmt.Sprintf("%s insight: \"%s\"", source, snippet))
		}
	}

	if rec.PriceChange < priceCutThreshold {
		reduction := rec.PriceReduction
		if reduction == "" {
			reduction = formatUSD(-rec.PriceChange)
		}
		signals = append(signals, fmt.Sprintf("Price reduced %s — motivated seller signal", reduction))
		if condition == "" {
			condition = domain.ConditionNeedsWork
		}
	}

	switch dom := rec.DaysOnMarket; {
	case dom >= longDOM:
		signals = append(signals, fmt.Sprintf("On market %d days — long DOM, likely overpriced or has issues", dom))
		if condition == "" {
			condition = domain.ConditionNeedsWork
		}
	case dom >= noticeableDOM:
		signals = append(signals, fmt.Sprintf("On market %d days", dom))
	}

	return condition, signals
}

// MatchListing ищет первое объявление, в адресе которого есть номер дома
// и первое слово названия улицы. Скоринга и разрешения неоднозначностей нет
func MatchListing(address string, candidates []domain.ListingRecord) (domain.ListingRecord, bool) {
	street := address
	if i := strings.Index(street, ","); i >= 0 {
		street = street[:i]
	}
	tokens := strings.Fields(strings.ToLower(street))
	if len(tokens) < 2 {
		return domain.ListingRecord{}, false
	}
	number, name := tokens[0], tokens[1]

	for _, c := range candidates {
		candidate := strings.ToLower(c.StreetAddress)
		if strings.Contains(candidate, number) && strings.Contains(candidate, name) {
			return c, true
		}
	}
	return domain.ListingRecord{}, false
}
