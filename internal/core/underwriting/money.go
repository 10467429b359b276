package underwriting

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// round2 округляет денежную сумму до центов (half away from zero)
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// roundThousand округляет сумму до ближайшей тысячи
func roundThousand(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Div(decimal.NewFromInt(1000)).Round(0).Mul(decimal.NewFromInt(1000)).Float64()
	return f
}

// formatUSD печатает сумму в виде "$150,000"
func formatUSD(v float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("$%d", int64(math.Round(v)))
}
