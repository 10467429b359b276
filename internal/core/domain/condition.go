package domain

// ConditionLabel - оценка состояния объекта
type ConditionLabel string

const (
	ConditionUnknown            ConditionLabel = "Unknown"
	ConditionGood               ConditionLabel = "Good"
	ConditionNeedsWork          ConditionLabel = "Needs Work"
	ConditionCritical           ConditionLabel = "Critical"
	ConditionPossiblyDistressed ConditionLabel = "Possibly Distressed"
	ConditionLikelyDistressed   ConditionLabel = "Likely Distressed"
)

// conditionSeverity задает порядок только для отображения
var conditionSeverity = map[ConditionLabel]int{
	ConditionGood:               0,
	ConditionUnknown:            1,
	ConditionNeedsWork:          2,
	ConditionPossiblyDistressed: 3,
	ConditionLikelyDistressed:   4,
	ConditionCritical:           5,
}

// Severity возвращает позицию метки в порядке отображения
func (c ConditionLabel) Severity() int {
	if s, ok := conditionSeverity[c]; ok {
		return s
	}
	return conditionSeverity[ConditionUnknown]
}

func (c ConditionLabel) String() string {
	return string(c)
}

// IsValid проверяет, что метка входит в фиксированный набор
func (c ConditionLabel) IsValid() bool {
	_, ok := conditionSeverity[c]
	return ok
}
