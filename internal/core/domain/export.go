package domain

import (
	"fmt"
	"strings"
)

const (
	descriptionExportLimit = 400
	keywordsExportLimit    = 6
)

// FlagSeparator - разделитель флагов в плоской строке выгрузки
const FlagSeparator = " | "

// ExportColumns - фиксированный порядок колонок офферного листа
var ExportColumns = []string{
	"Quality",
	"Address",
	"Zip",
	"Beds",
	"Sqft",
	"List Price",
	"S8 Rent ($/mo)",
	"Rent Source",
	"Zip Median Home Value",
	"Zip Vacancy Rate (%)",
	"Price vs Zip Median",
	"Your Offer",
	"Max Buyer Price",
	"DSCR Max (uncapped)",
	"DSCR Headroom",
	"Wholesale Fee",
	"Closing Costs",
	"Down Payment",
	"Loan Amount",
	"Est. Buyer CF ($/mo)",
	"Monthly EGI",
	"Monthly Variable Expenses",
	"Monthly Mortgage",
	"Monthly Taxes",
	"Monthly Insurance",
	"Repair Low",
	"Repair High",
	"Repair Tier",
	"Condition",
	"Distress Keywords",
	"Inspection Flags",
	"Listing Description",
	"Desc Source",
	"Zillow Insight",
	"Days on Market",
	"Price Reduction",
	"Tax Assessed Value",
	"Agent Name",
	"Agent Email",
}

// FlagsText возвращает флаги одной строкой через " | "
func (d DealRecord) FlagsText() string {
	return strings.Join(d.Flags, FlagSeparator)
}

// ExportRow возвращает значения строки в порядке ExportColumns.
// Денежные поля остаются числами, чтобы таблица могла их форматировать
func (d DealRecord) ExportRow() []interface{} {
	ratio := "N/A"
	if r := d.PriceToMedianRatio(); r > 0 {
		ratio = fmt.Sprintf("%.0f%%", r*100)
	}

	keywords := d.Keywords
	if len(keywords) > keywordsExportLimit {
		keywords = keywords[:keywordsExportLimit]
	}

	description := d.Description
	if r := []rune(description); len(r) > descriptionExportLimit {
		description = string(r[:descriptionExportLimit])
	}

	var insight, reduction string
	var dom int
	var assessed float64
	if d.Listing != nil {
		insight = d.Listing.Snippet
		reduction = d.Listing.PriceReduction
		dom = d.Listing.DaysOnMarket
		assessed = d.Listing.TaxAssessedValue
	}

	return []interface{}{
		string(d.Quality),
		d.Input.Address,
		d.Input.Zip,
		d.Input.Bedrooms,
		d.SquareFeet,
		d.Input.ListPrice,
		d.Rent.Amount,
		d.Rent.Source,
		d.Market.MedianValue,
		d.Market.VacancyRatePct,
		ratio,
		d.Offer.YourOffer,
		d.Offer.MaxBuyerPrice,
		d.Offer.DSCRMaxPrice,
		d.Offer.Headroom,
		d.Offer.WholesaleFee,
		d.Offer.ClosingCosts,
		d.Offer.DownPayment,
		d.Offer.LoanAmount,
		d.Offer.BuyerCashflow,
		d.Offer.MonthlyEGI,
		d.Offer.MonthlyVarExp,
		d.Offer.MonthlyMortgage,
		d.Offer.MonthlyTaxes,
		d.Offer.MonthlyIns,
		d.Repair.Low,
		d.Repair.High,
		d.Repair.Tier,
		string(d.Condition),
		strings.Join(keywords, ", "),
		d.FlagsText(),
		description,
		d.DescSource,
		insight,
		dom,
		reduction,
		assessed,
		d.Input.AgentName,
		d.Input.AgentEmail,
	}
}
