package underwriting

import (
	"fmt"
	"math"
	"strings"

	"section8-underwriter/internal/core/domain"
)

// FallbackRentSource - метка аренды, когда zip нет в таблице SAFMR
const FallbackRentSource = "Estimated (zip not in SAFMR dataset)"

var fallbackRent = [domain.MaxBedrooms + 1]int{950, 1100, 1350, 1650, 1950}

// FallbackRent возвращает аренду из запасной таблицы
func FallbackRent(bedrooms int) int {
	return fallbackRent[domain.ClampBedrooms(bedrooms)]
}

// NormalizeZip убирает пробелы и суффикс ZIP+4, дополняет нулями до 5 цифр
func NormalizeZip(raw string) string {
	zip := strings.TrimSpace(raw)
	if i := strings.Index(zip, "-"); i >= 0 {
		zip = zip[:i]
	}
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return ""
	}
	for len(zip) < 5 {
		zip = "0" + zip
	}
	return zip
}

// LookupRent выбирает аренду по точному совпадению zip.
// При Use110PaymentStandard берется колонка 110%, если она заполнена,
// иначе колонка 100% FMR. Без совпадения возвращается запасная таблица
func LookupRent(zip string, bedrooms int, rows []domain.RentTableRow, p domain.UnderwritingParams) domain.RentRecord {
	zip = NormalizeZip(zip)
	beds := domain.ClampBedrooms(bedrooms)

	for _, row := range rows {
		if NormalizeZip(row.Zip) != zip || zip == "" {
			continue
		}
		if p.Use110PaymentStandard && row.PS110[beds] > 0 {
			return domain.RentRecord{
				Amount: row.PS110[beds],
				Source: fmt.Sprintf("%s (110%% PS, zip %s)", p.RentDatasetLabel, zip),
			}
		}
		if row.FMR[beds] > 0 {
			return domain.RentRecord{
				Amount: row.FMR[beds],
				Source: fmt.Sprintf("%s (100%% FMR, zip %s)", p.RentDatasetLabel, zip),
			}
		}
	}

	return domain.RentRecord{
		Amount:   fallbackRent[beds],
		Source:   FallbackRentSource,
		Fallback: true,
	}
}

// SqftAdjustmentPct возвращает поправку аренды в процентах
// по отношению фактической площади к стандартной
func SqftAdjustmentPct(ratio float64) int {
	switch {
	case ratio < 0.70:
		return -8
	case ratio < 0.85:
		return -4
	case ratio > 1.40:
		return 7
	case ratio > 1.20:
		return 4
	default:
		return 0
	}
}

// AdjustRentForSqft применяет поправку на площадь и отмечает ее в метке.
// Без площади или при выключенной поправке запись возвращается как есть
func AdjustRentForSqft(rec domain.RentRecord, bedrooms, sqft int, p domain.UnderwritingParams) domain.RentRecord {
	if !p.SqftRentAdjustment || sqft <= 0 || rec.Amount <= 0 {
		return rec
	}
	standard := p.StandardSqft[domain.ClampBedrooms(bedrooms)]
	if standard <= 0 {
		return rec
	}

	pct := SqftAdjustmentPct(float64(sqft) / float64(standard))
	if pct == 0 {
		return rec
	}

	rec.Amount = int(math.Round(float64(rec.Amount) * float64(100+pct) / 100))
	rec.Source = fmt.Sprintf("%s, sqft adj %+d%%", rec.Source, pct)
	return rec
}
