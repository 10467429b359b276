package underwriting

import (
	"math"

	"section8-underwriter/internal/core/domain"
)

// MortgageConstant - ежемесячный платеж на доллар кредита.
// При нулевой ставке кредит гасится равными долями
func MortgageConstant(monthlyRate float64, payments int) float64 {
	if payments <= 0 {
		return 0
	}
	if monthlyRate <= 0 {
		return 1 / float64(payments)
	}
	growth := math.Pow(1+monthlyRate, float64(payments))
	return monthlyRate * growth / (growth - 1)
}

// ComputeOffer решает DSCR-уравнение относительно цены покупателя:
//
//	EGI - varExp - (tax+ins)/12*P - k*(1-down)*P = targetCF
//
// ограничивает цену ценой листинга и минимальной скидкой и
// выводит оффер оптовика. Все денежные поля округлены до центов
func ComputeOffer(rent, listPrice float64, p domain.UnderwritingParams) domain.OfferResult {
	res := domain.OfferResult{WholesaleFee: round2(p.WholesaleFee)}
	if rent <= 0 || listPrice <= 0 {
		return res
	}

	egi := rent * (1 - p.VacancyRate)
	varExp := rent * (p.MaintenanceRate + p.ManagementRate)
	res.MonthlyEGI = round2(egi)
	res.MonthlyVarExp = round2(varExp)

	k := MortgageConstant(p.InterestRate/12, p.LoanTermYears*12)
	coefficient := (p.TaxRate+p.InsuranceRate)/12 + k*(1-p.DownPaymentPct)
	numerator := egi - varExp - p.TargetCashflow
	if numerator <= 0 || coefficient <= 0 {
		return res
	}

	dscrMax := numerator / coefficient
	res.DSCRMaxPrice = round2(dscrMax)
	res.Headroom = round2(math.Max(0, dscrMax-listPrice))

	buyer := math.Min(dscrMax, listPrice)
	if ceiling := listPrice - p.MinDiscount; buyer > ceiling {
		buyer = ceiling
	}
	if buyer <= 0 || p.ClosingCostPct >= 1 {
		return res
	}

	down := buyer * p.DownPaymentPct
	loan := buyer - down
	mortgage := loan * k
	taxes := buyer * p.TaxRate / 12
	ins := buyer * p.InsuranceRate / 12

	offer := (buyer - p.WholesaleFee) / (1 + p.ClosingCostPct)

	res.MaxBuyerPrice = round2(buyer)
	res.DownPayment = round2(down)
	res.LoanAmount = round2(loan)
	res.MonthlyMortgage = round2(mortgage)
	res.MonthlyTaxes = round2(taxes)
	res.MonthlyIns = round2(ins)
	res.BuyerCashflow = round2(egi - varExp - taxes - ins - mortgage)
	res.YourOffer = round2(offer)
	res.ClosingCosts = round2(offer * p.ClosingCostPct)
	res.Viable = offer > 0

	return res
}
