package domain

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidParams = errors.New("invalid underwriting params")

// RepairBand - диапазон стоимости ремонта для одной оценки состояния
type RepairBand struct {
	Tier        string  `json:"tier" yaml:"tier"`
	PerSqftLow  float64 `json:"per_sqft_low" yaml:"per_sqft_low"`
	PerSqftHigh float64 `json:"per_sqft_high" yaml:"per_sqft_high"`
	PctLow      float64 `json:"pct_low" yaml:"pct_low"`
	PctHigh     float64 `json:"pct_high" yaml:"pct_high"`
}

// RepairPolicy - таблица диапазонов по всем меткам состояния
type RepairPolicy struct {
	Good               RepairBand `json:"good" yaml:"good"`
	Unknown            RepairBand `json:"unknown" yaml:"unknown"`
	NeedsWork          RepairBand `json:"needs_work" yaml:"needs_work"`
	PossiblyDistressed RepairBand `json:"possibly_distressed" yaml:"possibly_distressed"`
	LikelyDistressed   RepairBand `json:"likely_distressed" yaml:"likely_distressed"`
	Critical           RepairBand `json:"critical" yaml:"critical"`
}

// For возвращает диапазон для метки, неизвестные метки считаются Unknown
func (p RepairPolicy) For(label ConditionLabel) RepairBand {
	switch label {
	case ConditionGood:
		return p.Good
	case ConditionNeedsWork:
		return p.NeedsWork
	case ConditionPossiblyDistressed:
		return p.PossiblyDistressed
	case ConditionLikelyDistressed:
		return p.LikelyDistressed
	case ConditionCritical:
		return p.Critical
	default:
		return p.Unknown
	}
}

// UnderwritingParams - неизменяемый набор параметров андеррайтинга.
// Передается по значению во все чистые функции расчета.
// Ставки указываются долями: 0.075 означает 7.5%
type UnderwritingParams struct {
	InterestRate    float64
	LoanTermYears   int
	DownPaymentPct  float64
	TargetCashflow  float64
	TaxRate         float64
	InsuranceRate   float64
	VacancyRate     float64
	MaintenanceRate float64
	ManagementRate  float64

	WholesaleFee        float64
	ClosingCostPct      float64
	MinDiscount         float64
	InspectThresholdPct float64

	Use110PaymentStandard bool
	RentDatasetLabel      string
	SqftRentAdjustment    bool
	StandardSqft          [MaxBedrooms + 1]int

	Repair RepairPolicy
}

// DefaultUnderwritingParams возвращает параметры по умолчанию
func DefaultUnderwritingParams() UnderwritingParams {
	return UnderwritingParams{
		InterestRate:    0.075,
		LoanTermYears:   30,
		DownPaymentPct:  0.20,
		TargetCashflow:  400,
		TaxRate:         0.015,
		InsuranceRate:   0.0075,
		VacancyRate:     0.05,
		MaintenanceRate: 0.05,
		ManagementRate:  0,

		WholesaleFee:        10000,
		ClosingCostPct:      0.03,
		MinDiscount:         10000,
		InspectThresholdPct: 0.15,

		Use110PaymentStandard: false,
		RentDatasetLabel:      "HUD SAFMR FY2026",
		SqftRentAdjustment:    true,
		StandardSqft:          [MaxBedrooms + 1]int{600, 750, 900, 1100, 1300},

		Repair: RepairPolicy{
			Good:               RepairBand{Tier: "Cosmetic", PerSqftLow: 0, PerSqftHigh: 5, PctLow: 0, PctHigh: 0.03},
			Unknown:            RepairBand{Tier: "Unverified", PerSqftLow: 10, PerSqftHigh: 25, PctLow: 0.05, PctHigh: 0.12},
			NeedsWork:          RepairBand{Tier: "Moderate", PerSqftLow: 15, PerSqftHigh: 30, PctLow: 0.08, PctHigh: 0.15},
			PossiblyDistressed: RepairBand{Tier: "Moderate-Heavy", PerSqftLow: 20, PerSqftHigh: 40, PctLow: 0.10, PctHigh: 0.20},
			LikelyDistressed:   RepairBand{Tier: "Heavy", PerSqftLow: 30, PerSqftHigh: 55, PctLow: 0.15, PctHigh: 0.30},
			Critical:           RepairBand{Tier: "Full Rehab", PerSqftLow: 35, PerSqftHigh: 65, PctLow: 0.20, PctHigh: 0.40},
		},
	}
}

// Validate проверяет параметры на отрицательные и нечисловые значения.
// Допустимость самой сделки (например, closing >= 100%) решает расчет оффера
func (p UnderwritingParams) Validate() error {
	rates := map[string]float64{
		"interest_rate":         p.InterestRate,
		"down_payment_pct":      p.DownPaymentPct,
		"target_cashflow":       p.TargetCashflow,
		"tax_rate":              p.TaxRate,
		"insurance_rate":        p.InsuranceRate,
		"vacancy_rate":          p.VacancyRate,
		"maintenance_rate":      p.MaintenanceRate,
		"management_rate":       p.ManagementRate,
		"wholesale_fee":         p.WholesaleFee,
		"closing_cost_pct":      p.ClosingCostPct,
		"min_discount":          p.MinDiscount,
		"inspect_threshold_pct": p.InspectThresholdPct,
	}
	for name, v := range rates {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidParams, name, v)
		}
	}
	if p.LoanTermYears <= 0 {
		return fmt.Errorf("%w: loan_term_years must be positive, got %d", ErrInvalidParams, p.LoanTermYears)
	}
	if p.DownPaymentPct > 1 {
		return fmt.Errorf("%w: down_payment_pct must not exceed 1, got %v", ErrInvalidParams, p.DownPaymentPct)
	}
	for beds, sqft := range p.StandardSqft {
		if sqft <= 0 {
			return fmt.Errorf("%w: standard_sqft for %d bedrooms must be positive", ErrInvalidParams, beds)
		}
	}
	return nil
}

// ParamsOverride - частичное переопределение параметров.
// Используется и для YAML-файла политики, и для запросов API
type ParamsOverride struct {
	InterestRate          *float64      `json:"interest_rate,omitempty" yaml:"interest_rate"`
	LoanTermYears         *int          `json:"loan_term_years,omitempty" yaml:"loan_term_years"`
	DownPaymentPct        *float64      `json:"down_payment_pct,omitempty" yaml:"down_payment_pct"`
	TargetCashflow        *float64      `json:"target_cashflow,omitempty" yaml:"target_cashflow"`
	TaxRate               *float64      `json:"tax_rate,omitempty" yaml:"tax_rate"`
	InsuranceRate         *float64      `json:"insurance_rate,omitempty" yaml:"insurance_rate"`
	VacancyRate           *float64      `json:"vacancy_rate,omitempty" yaml:"vacancy_rate"`
	MaintenanceRate       *float64      `json:"maintenance_rate,omitempty" yaml:"maintenance_rate"`
	ManagementRate        *float64      `json:"management_rate,omitempty" yaml:"management_rate"`
	WholesaleFee          *float64      `json:"wholesale_fee,omitempty" yaml:"wholesale_fee"`
	ClosingCostPct        *float64      `json:"closing_cost_pct,omitempty" yaml:"closing_cost_pct"`
	MinDiscount           *float64      `json:"min_discount,omitempty" yaml:"min_discount"`
	InspectThresholdPct   *float64      `json:"inspect_threshold_pct,omitempty" yaml:"inspect_threshold_pct"`
	Use110PaymentStandard *bool         `json:"use_110_payment_standard,omitempty" yaml:"use_110_payment_standard"`
	RentDatasetLabel      *string       `json:"rent_dataset_label,omitempty" yaml:"rent_dataset_label"`
	SqftRentAdjustment    *bool         `json:"sqft_rent_adjustment,omitempty" yaml:"sqft_rent_adjustment"`
	StandardSqft          []int         `json:"standard_sqft,omitempty" yaml:"standard_sqft"`
	Repair                *RepairPolicy `json:"repair,omitempty" yaml:"repair"`
}

// Apply возвращает копию параметров с примененными переопределениями
func (o ParamsOverride) Apply(p UnderwritingParams) (UnderwritingParams, error) {
	setFloat(&p.InterestRate, o.InterestRate)
	setFloat(&p.DownPaymentPct, o.DownPaymentPct)
	setFloat(&p.TargetCashflow, o.TargetCashflow)
	setFloat(&p.TaxRate, o.TaxRate)
	setFloat(&p.InsuranceRate, o.InsuranceRate)
	setFloat(&p.VacancyRate, o.VacancyRate)
	setFloat(&p.MaintenanceRate, o.MaintenanceRate)
	setFloat(&p.ManagementRate, o.ManagementRate)
	setFloat(&p.WholesaleFee, o.WholesaleFee)
	setFloat(&p.ClosingCostPct, o.ClosingCostPct)
	setFloat(&p.MinDiscount, o.MinDiscount)
	setFloat(&p.InspectThresholdPct, o.InspectThresholdPct)
	if o.LoanTermYears != nil {
		p.LoanTermYears = *o.LoanTermYears
	}
	if o.Use110PaymentStandard != nil {
		p.Use110PaymentStandard = *o.Use110PaymentStandard
	}
	if o.RentDatasetLabel != nil {
		p.RentDatasetLabel = *o.RentDatasetLabel
	}
	if o.SqftRentAdjustment != nil {
		p.SqftRentAdjustment = *o.SqftRentAdjustment
	}
	if len(o.StandardSqft) > 0 {
		if len(o.StandardSqft) != MaxBedrooms+1 {
			return p, fmt.Errorf("%w: standard_sqft needs %d values, got %d", ErrInvalidParams, MaxBedrooms+1, len(o.StandardSqft))
		}
		copy(p.StandardSqft[:], o.StandardSqft)
	}
	if o.Repair != nil {
		p.Repair = *o.Repair
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
