package domain

import "math"

// MinListPrice - объекты дешевле этой суммы отсекаются до андеррайтинга
const MinListPrice = 20000.0

// DefaultBedrooms подставляется, когда количество спален не указано
const DefaultBedrooms = 3

// MaxBedrooms - верхняя граница для поиска аренды в таблице HUD
const MaxBedrooms = 4

// PropertyInput - одна строка входного списка объектов
type PropertyInput struct {
	Address     string
	Zip         string
	Bedrooms    int
	ListPrice   float64
	SquareFeet  int
	Description string
	AgentName   string
	AgentEmail  string
}

// EffectiveBedrooms подставляет DefaultBedrooms вместо нуля и отрицательных значений
func EffectiveBedrooms(beds int) int {
	if beds <= 0 {
		return DefaultBedrooms
	}
	return beds
}

// ClampBedrooms приводит количество спален к диапазону таблицы аренды [0,4]
func ClampBedrooms(beds int) int {
	if beds < 0 {
		return 0
	}
	if beds > MaxBedrooms {
		return MaxBedrooms
	}
	return beds
}

// RentTableRow - строка таблицы SAFMR для одного zip.
// Индекс массива - количество спален, 0 означает отсутствие значения
type RentTableRow struct {
	Zip   string
	FMR   [MaxBedrooms + 1]int
	PS110 [MaxBedrooms + 1]int
}

// RentRecord - итоговая месячная аренда и метка ее происхождения
type RentRecord struct {
	Amount   int
	Source   string
	Fallback bool
}

// MarketStats - статистика по zip из Census ACS.
// Нулевое значение означает "неизвестно"
type MarketStats struct {
	Zip            string
	MedianValue    float64
	TotalUnits     int
	VacantUnits    int
	VacancyRatePct float64
}

// NewMarketStats собирает статистику и вычисляет процент пустующих единиц
func NewMarketStats(zip string, median float64, total, vacant int) MarketStats {
	stats := MarketStats{
		Zip:         zip,
		MedianValue: median,
		TotalUnits:  total,
		VacantUnits: vacant,
	}
	if total > 0 {
		stats.VacancyRatePct = math.Round(float64(vacant)/float64(total)*1000) / 10
	}
	return stats
}

// Known сообщает, удалось ли получить медианную стоимость
func (m MarketStats) Known() bool {
	return m.MedianValue > 0
}

// ListingRecord - метаданные объявления из поисковой выдачи площадки
type ListingRecord struct {
	Source           string
	ExternalID       string
	StreetAddress    string
	Snippet          string
	SnippetType      string
	DaysOnMarket     int
	PriceChange      float64
	PriceReduction   string
	TaxAssessedValue float64
	SquareFeet       int
	Bedrooms         int
	Bathrooms        float64
	HomeType         string
	StatusText       string
	BrokerName       string
	DetailURL        string
	NonOwnerOccupied bool
}

// ListingSnippetInsight - тип сниппета, который пишет агент объявления
const ListingSnippetInsight = "homeInsight"
