package underwriting

import (
	"strings"

	"section8-underwriter/internal/core/domain"
)

const minDescriptionLen = 10

// CriticalKeywords - фразы тяжелого состояния, проверяются первыми
var CriticalKeywords = []string{
	"fire damage", "fire-damaged", "burned", "condemned", "structural issue",
	"foundation problem", "black mold", "severe water damage", "gutted",
	"down to studs", "unsafe", "tear down", "land value only", "total rehab",
	"gut rehab", "uninhabitable", "major foundation", "collapsed", "cave-in",
}

// ModerateKeywords - фразы объектов под ремонт
var ModerateKeywords = []string{
	"tlc", "handyman", "investor special", "as-is", "as is", "needs work",
	"fixer", "fixer-upper", "fixer upper", "contractor special",
	"bring your ideas", "blank canvas", "rehab", "cash only", "sold as is",
	"needs updating", "some updates needed", "great bones", "needs repairs",
	"priced to sell", "motivated seller", "below market", "quick sale",
	"diamond in the rough",
}

// ClassifyCondition определяет состояние по тексту описания.
// Совпадения возвращаются в порядке списков: сначала критичные, затем умеренные
func ClassifyCondition(text string) (domain.ConditionLabel, []string) {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < minDescriptionLen {
		return domain.ConditionUnknown, nil
	}

	lower := strings.ToLower(trimmed)
	critical := matchKeywords(lower, CriticalKeywords)
	moderate := matchKeywords(lower, ModerateKeywords)

	switch {
	case len(critical) > 0:
		return domain.ConditionCritical, append(critical, moderate...)
	case len(moderate) > 0:
		return domain.ConditionNeedsWork, moderate
	default:
		return domain.ConditionGood, nil
	}
}

func matchKeywords(lower string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}
