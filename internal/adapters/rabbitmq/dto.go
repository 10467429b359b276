package rabbitmq

import (
	"encoding/json"
	"time"

	"section8-underwriter/internal/core/domain"

	"github.com/google/uuid"
)

// PropertyDTO - объект во входящей задаче
type PropertyDTO struct {
	Address     string  `json:"address"`
	Zip         string  `json:"zip"`
	Bedrooms    int     `json:"bedrooms"`
	ListPrice   float64 `json:"list_price"`
	SquareFeet  int     `json:"sqft"`
	Description string  `json:"description"`
	AgentName   string  `json:"agent_name"`
	AgentEmail  string  `json:"agent_email"`
}

// UnderwriteBatchTaskDTO - тело сообщения из underwrite_batch_tasks
type UnderwriteBatchTaskDTO struct {
	TaskID     uuid.UUID       `json:"task_id"`
	Properties []PropertyDTO   `json:"properties"`
	Params     json.RawMessage `json:"params,omitempty"`
}

// DealDTO - одна сделка в исходящем событии
type DealDTO struct {
	Quality       string   `json:"quality"`
	Address       string   `json:"address"`
	Zip           string   `json:"zip"`
	Bedrooms      int      `json:"bedrooms"`
	ListPrice     float64  `json:"list_price"`
	Rent          int      `json:"rent"`
	RentSource    string   `json:"rent_source"`
	DSCRMaxPrice  float64  `json:"dscr_max_price"`
	MaxBuyerPrice float64  `json:"max_buyer_price"`
	YourOffer     float64  `json:"your_offer"`
	Headroom      float64  `json:"headroom"`
	BuyerCashflow float64  `json:"buyer_cashflow"`
	RepairLow     float64  `json:"repair_low"`
	RepairHigh    float64  `json:"repair_high"`
	Condition     string   `json:"condition"`
	Keywords      []string `json:"keywords,omitempty"`
	Flags         []string `json:"flags,omitempty"`
	AgentName     string   `json:"agent_name,omitempty"`
	AgentEmail    string   `json:"agent_email,omitempty"`
	ListingURL    string   `json:"listing_url,omitempty"`
}

// DealSheetReadyDTO - событие deals.sheet.ready
type DealSheetReadyDTO struct {
	TaskID     uuid.UUID      `json:"task_id"`
	RunID      uuid.UUID      `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Skipped    int            `json:"skipped"`
	Summary    map[string]int `json:"summary"`
	Deals      []DealDTO      `json:"deals"`
}

func toDomainInputs(dtos []PropertyDTO) []domain.PropertyInput {
	inputs := make([]domain.PropertyInput, 0, len(dtos))
	for _, d := range dtos {
		inputs = append(inputs, domain.PropertyInput{
			Address:     d.Address,
			Zip:         d.Zip,
			Bedrooms:    d.Bedrooms,
			ListPrice:   d.ListPrice,
			SquareFeet:  d.SquareFeet,
			Description: d.Description,
			AgentName:   d.AgentName,
			AgentEmail:  d.AgentEmail,
		})
	}
	return inputs
}

func toDealSheetDTO(taskID uuid.UUID, result domain.BatchResult) DealSheetReadyDTO {
	dto := DealSheetReadyDTO{
		TaskID:     taskID,
		RunID:      result.RunID,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Skipped:    len(result.Skipped),
		Summary:    make(map[string]int, len(result.Summary)),
		Deals:      make([]DealDTO, 0, len(result.Deals)),
	}
	for tier, n := range result.Summary {
		dto.Summary[string(tier)] = n
	}
	for _, d := range result.Deals {
		deal := DealDTO{
			Quality:       string(d.Quality),
			Address:       d.Input.Address,
			Zip:           d.Input.Zip,
			Bedrooms:      d.Input.Bedrooms,
			ListPrice:     d.Input.ListPrice,
			Rent:          d.Rent.Amount,
			RentSource:    d.Rent.Source,
			DSCRMaxPrice:  d.Offer.DSCRMaxPrice,
			MaxBuyerPrice: d.Offer.MaxBuyerPrice,
			YourOffer:     d.Offer.YourOffer,
			Headroom:      d.Offer.Headroom,
			BuyerCashflow: d.Offer.BuyerCashflow,
			RepairLow:     d.Repair.Low,
			RepairHigh:    d.Repair.High,
			Condition:     string(d.Condition),
			Keywords:      d.Keywords,
			Flags:         d.Flags,
			AgentName:     d.Input.AgentName,
			AgentEmail:    d.Input.AgentEmail,
		}
		if d.Listing != nil {
			deal.ListingURL = d.Listing.DetailURL
		}
		dto.Deals = append(dto.Deals, deal)
	}
	return dto
}
