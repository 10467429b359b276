package rest

import (
	"encoding/json"
	"time"

	"section8-underwriter/internal/core/domain"
)

type PropertyRequestDTO struct {
	Address     string  `json:"address"`
	Zip         string  `json:"zip"`
	Bedrooms    *int    `json:"bedrooms,omitempty"`
	ListPrice   float64 `json:"list_price"`
	SquareFeet  int     `json:"sqft,omitempty"`
	Description string  `json:"description,omitempty"`
	AgentName   string  `json:"agent_name,omitempty"`
	AgentEmail  string  `json:"agent_email,omitempty"`
}

// UnderwriteRequestDTO - тело POST /api/v1/underwrite
type UnderwriteRequestDTO struct {
	Properties []PropertyRequestDTO `json:"properties"`
	Params     json.RawMessage      `json:"params,omitempty"`
}

type RentResponseDTO struct {
	Source   string `json:"source"`
	Amount   int    `json:"amount"`
	Fallback bool   `json:"fallback"`
}

type MarketResponseDTO struct {
	MedianValue    float64 `json:"median_value"`
	TotalUnits     int     `json:"total_units"`
	VacantUnits    int     `json:"vacant_units"`
	VacancyRatePct float64 `json:"vacancy_rate_pct"`
}

type OfferResponseDTO struct {
	Viable          bool    `json:"viable"`
	DSCRMaxPrice    float64 `json:"dscr_max_price"`
	MaxBuyerPrice   float64 `json:"max_buyer_price"`
	YourOffer       float64 `json:"your_offer"`
	Headroom        float64 `json:"headroom"`
	WholesaleFee    float64 `json:"wholesale_fee"`
	ClosingCosts    float64 `json:"closing_costs"`
	DownPayment     float64 `json:"down_payment"`
	LoanAmount      float64 `json:"loan_amount"`
	MonthlyMortgage float64 `json:"monthly_mortgage"`
	MonthlyTaxes    float64 `json:"monthly_taxes"`
	MonthlyIns      float64 `json:"monthly_insurance"`
	MonthlyEGI      float64 `json:"monthly_egi"`
	MonthlyVarExp   float64 `json:"monthly_variable_expenses"`
	BuyerCashflow   float64 `json:"buyer_cashflow"`
}

type RepairResponseDTO struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Tier  string  `json:"tier"`
	Basis string  `json:"basis"`
}

type ListingResponseDTO struct {
	Source       string  `json:"source"`
	DaysOnMarket int     `json:"days_on_market,omitempty"`
	PriceChange  float64 `json:"price_change,omitempty"`
	HomeType     string  `json:"home_type,omitempty"`
	DetailURL    string  `json:"detail_url,omitempty"`
}

type DealResponseDTO struct {
	Quality    string              `json:"quality"`
	Address    string              `json:"address"`
	Zip        string              `json:"zip"`
	Bedrooms   int                 `json:"bedrooms"`
	SquareFeet int                 `json:"sqft,omitempty"`
	ListPrice  float64             `json:"list_price"`
	Rent       RentResponseDTO     `json:"rent"`
	Market     MarketResponseDTO   `json:"market"`
	Offer      OfferResponseDTO    `json:"offer"`
	Repair     RepairResponseDTO   `json:"repair"`
	Condition  string              `json:"condition"`
	Keywords   []string            `json:"keywords,omitempty"`
	Flags      []string            `json:"flags,omitempty"`
	DescSource string              `json:"description_source,omitempty"`
	AgentName  string              `json:"agent_name,omitempty"`
	AgentEmail string              `json:"agent_email,omitempty"`
	Listing    *ListingResponseDTO `json:"listing,omitempty"`
}

type UnderwriteResponseDTO struct {
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Summary    map[string]int    `json:"summary"`
	Skipped    int               `json:"skipped"`
	Deals      []DealResponseDTO `json:"deals"`
}

func toDomainInputs(dtos []PropertyRequestDTO) []domain.PropertyInput {
	inputs := make([]domain.PropertyInput, 0, len(dtos))
	for _, d := range dtos {
		beds := domain.DefaultBedrooms
		if d.Bedrooms != nil {
			beds = *d.Bedrooms
		}
		inputs = append(inputs, domain.PropertyInput{
			Address:     d.Address,
			Zip:         d.Zip,
			Bedrooms:    beds,
			ListPrice:   d.ListPrice,
			SquareFeet:  d.SquareFeet,
			Description: d.Description,
			AgentName:   d.AgentName,
			AgentEmail:  d.AgentEmail,
		})
	}
	return inputs
}

func toUnderwriteResponse(result domain.BatchResult, goodOnly bool) UnderwriteResponseDTO {
	deals := result.Deals
	if goodOnly {
		deals = result.GoodDeals()
	}

	resp := UnderwriteResponseDTO{
		RunID:      result.RunID.String(),
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Summary:    make(map[string]int, len(result.Summary)),
		Skipped:    len(result.Skipped),
		Deals:      make([]DealResponseDTO, 0, len(deals)),
	}
	for tier, n := range result.Summary {
		resp.Summary[string(tier)] = n
	}
	for _, d := range deals {
		resp.Deals = append(resp.Deals, toDealResponse(d))
	}
	return resp
}

func toDealResponse(d domain.DealRecord) DealResponseDTO {
	dto := DealResponseDTO{
		Quality:    string(d.Quality),
		Address:    d.Input.Address,
		Zip:        d.Input.Zip,
		Bedrooms:   d.Input.Bedrooms,
		SquareFeet: d.SquareFeet,
		ListPrice:  d.Input.ListPrice,
		Rent: RentResponseDTO{
			Source:   d.Rent.Source,
			Amount:   d.Rent.Amount,
			Fallback: d.Rent.Fallback,
		},
		Market: MarketResponseDTO{
			MedianValue:    d.Market.MedianValue,
			TotalUnits:     d.Market.TotalUnits,
			VacantUnits:    d.Market.VacantUnits,
			VacancyRatePct: d.Market.VacancyRatePct,
		},
		Offer: OfferResponseDTO{
			Viable:          d.Offer.Viable,
			DSCRMaxPrice:    d.Offer.DSCRMaxPrice,
			MaxBuyerPrice:   d.Offer.MaxBuyerPrice,
			YourOffer:       d.Offer.YourOffer,
			Headroom:        d.Offer.Headroom,
			WholesaleFee:    d.Offer.WholesaleFee,
			ClosingCosts:    d.Offer.ClosingCosts,
			DownPayment:     d.Offer.DownPayment,
			LoanAmount:      d.Offer.LoanAmount,
			MonthlyMortgage: d.Offer.MonthlyMortgage,
			MonthlyTaxes:    d.Offer.MonthlyTaxes,
			MonthlyIns:      d.Offer.MonthlyIns,
			MonthlyEGI:      d.Offer.MonthlyEGI,
			MonthlyVarExp:   d.Offer.MonthlyVarExp,
			BuyerCashflow:   d.Offer.BuyerCashflow,
		},
		Repair: RepairResponseDTO{
			Low:   d.Repair.Low,
			High:  d.Repair.High,
			Tier:  d.Repair.Tier,
			Basis: d.Repair.Basis,
		},
		Condition:  string(d.Condition),
		Keywords:   d.Keywords,
		Flags:      d.Flags,
		DescSource: d.DescSource,
		AgentName:  d.Input.AgentName,
		AgentEmail: d.Input.AgentEmail,
	}
	if d.Listing != nil {
		dto.Listing = &ListingResponseDTO{
			Source:       d.Listing.Source,
			DaysOnMarket: d.Listing.DaysOnMarket,
			PriceChange:  d.Listing.PriceChange,
			HomeType:     d.Listing.HomeType,
			DetailURL:    d.Listing.DetailURL,
		}
	}
	return dto
}
