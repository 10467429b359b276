package domain

import (
	"time"

	"github.com/google/uuid"
)

// OfferResult - результат DSCR-расчета для одного объекта
type OfferResult struct {
	Viable bool

	DSCRMaxPrice  float64
	MaxBuyerPrice float64
	YourOffer     float64
	Headroom      float64

	WholesaleFee    float64
	ClosingCosts    float64
	DownPayment     float64
	LoanAmount      float64
	MonthlyMortgage float64
	MonthlyTaxes    float64
	MonthlyIns      float64
	MonthlyEGI      float64
	MonthlyVarExp   float64
	BuyerCashflow   float64
}

// RepairEstimate - диапазон стоимости ремонта, округленный до $1000
type RepairEstimate struct {
	Low   float64
	High  float64
	Tier  string
	Basis string
}

const (
	RepairBasisSqft  = "per-sqft"
	RepairBasisPrice = "pct-of-price"
	RepairBasisNone  = "none"
)

// QualityTier - итоговая оценка сделки
type QualityTier string

const (
	TierGreenLight   QualityTier = "Green Light"
	TierCaution      QualityTier = "Caution"
	TierInspectFirst QualityTier = "Inspect First"
	TierNoDeal       QualityTier = "No Deal"
)

var tierOrder = map[QualityTier]int{
	TierGreenLight:   0,
	TierCaution:      1,
	TierInspectFirst: 2,
	TierNoDeal:       3,
}

// Rank - позиция уровня при сортировке выходного листа
func (t QualityTier) Rank() int {
	if r, ok := tierOrder[t]; ok {
		return r
	}
	return len(tierOrder)
}

// AllTiers возвращает уровни в порядке сортировки
func AllTiers() []QualityTier {
	return []QualityTier{TierGreenLight, TierCaution, TierInspectFirst, TierNoDeal}
}

// DealRecord - итоговая строка по одному объекту
type DealRecord struct {
	Index   int
	Input   PropertyInput
	Quality QualityTier

	Rent   RentRecord
	Market MarketStats
	Offer  OfferResult
	Repair RepairEstimate

	Condition   ConditionLabel
	Keywords    []string
	Flags       []string
	Description string
	DescSource  string
	SquareFeet  int

	Listing *ListingRecord
}

// PriceToMedianRatio - отношение цены к медиане по zip, 0 если медиана неизвестна
func (d DealRecord) PriceToMedianRatio() float64 {
	if d.Market.MedianValue <= 0 {
		return 0
	}
	return d.Input.ListPrice / d.Market.MedianValue
}

// BatchResult - результат обработки одного списка объектов
type BatchResult struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Deals      []DealRecord
	Skipped    []PropertyInput
	Summary    map[QualityTier]int
}

// GoodDeals возвращает сделки уровней Green Light и Caution
func (b BatchResult) GoodDeals() []DealRecord {
	out := make([]DealRecord, 0, len(b.Deals))
	for _, d := range b.Deals {
		if d.Quality == TierGreenLight || d.Quality == TierCaution {
			out = append(out, d)
		}
	}
	return out
}
