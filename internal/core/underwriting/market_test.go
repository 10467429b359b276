package underwriting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"section8-underwriter/internal/core/domain"
)

func TestPriceAnomalySignals(t *testing.T) {
	tests := []struct {
		name      string
		listPrice float64
		stats     domain.MarketStats
		want      []string
	}{
		{
			name:      "severely below market",
			listPrice: 30000,
			stats:     domain.NewMarketStats("46205", 150000, 1000, 50),
			want:      []string{"Price 20% of zip median ($150,000) — severely below market, likely major rehab needed"},
		},
		{
			name:      "well below market with high vacancy",
			listPrice: 60000,
			stats:     domain.NewMarketStats("46205", 150000, 1000, 220),
			want: []string{
				"Price 40% of zip median ($150,000) — well below market, possible distress",
				"ZIP has 22.0% vacancy rate — high distress area, verify rental demand",
			},
		},
		{
			name:      "elevated vacancy only",
			listPrice: 120000,
			stats:     domain.NewMarketStats("46205", 150000, 1000, 125),
			want:      []string{"ZIP has 12.5% vacancy rate — above average, check Section 8 demand"},
		},
		{
			name:      "ratio exactly at severe threshold is well below",
			listPrice: 45000,
			stats:     domain.NewMarketStats("46205", 150000, 1000, 50),
			want:      []string{"Price 30% of zip median ($150,000) — well below market, possible distress"},
		},
		{
			name:      "ratio exactly at half of median has no signal",
			listPrice: 75000,
			stats:     domain.NewMarketStats("46205", 150000, 1000, 50),
		},
		{
			name:      "vacancy exactly at high threshold",
			listPrice: 120000,
			stats:     domain.NewMarketStats("46205", 150000, 1000, 200),
			want:      []string{"ZIP has 20.0% vacancy rate — high distress area, verify rental demand"},
		},
		{
			name:      "vacancy exactly at elevated threshold",
			listPrice: 120000,
			stats:     domain.NewMarketStats("46205", 150000, 1000, 120),
			want:      []string{"ZIP has 12.0% vacancy rate — above average, check Section 8 demand"},
		},
		{
			name:      "vacancy just below elevated threshold",
			listPrice: 120000,
			stats:     domain.NewMarketStats("46205", 150000, 1000, 119),
		},
		{
			name:      "at market",
			listPrice: 140000,
			stats:     domain.NewMarketStats("46205", 150000, 1000, 50),
		},
		{
			name:      "unknown median",
			listPrice: 30000,
			stats:     domain.NewMarketStats("46205", 0, 1000, 300),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriceAnomalySignals(tt.listPrice, tt.stats))
		})
	}
}

func TestNewMarketStats_VacancyRate(t *testing.T) {
	assert.Equal(t, 13.3, domain.NewMarketStats("1", 1, 3000, 399).VacancyRatePct)
	assert.Equal(t, 0.0, domain.NewMarketStats("1", 1, 0, 10).VacancyRatePct)
}
