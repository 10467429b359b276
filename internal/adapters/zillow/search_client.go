package zillow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"section8-underwriter/internal/adapters/breaker"
	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"
	"section8-underwriter/internal/core/underwriting"

	"github.com/go-resty/resty/v2"
	"github.com/mmcloughlin/geohash"
)

const (
	SourceName = "Zillow"

	// bboxDelta - полуширина области поиска в градусах (около 3 км)
	bboxDelta = 0.03
	// areaKeyPrecision - точность geohash для ключа кэша области
	areaKeyPrecision = 7

	searchPath = "/async-create-search-page-state"
	browserUA  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// Bounds - прямоугольник поиска на карте
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

func boundsAround(p Point) Bounds {
	return Bounds{
		North: p.Lat + bboxDelta,
		South: p.Lat - bboxDelta,
		East:  p.Lng + bboxDelta,
		West:  p.Lng - bboxDelta,
	}
}

type geocoder interface {
	Geocode(ctx context.Context, address string) (Point, error)
}

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// SearchClient находит объявление по адресу через поиск Zillow по карте.
// Результаты поиска по области кэшируются по geohash центра
type SearchClient struct {
	http     *resty.Client
	geocoder geocoder
	cache    port.CachePort
	cacheTTL time.Duration
	breaker  *breaker.Breaker
}

func NewSearchClient(cfg Config, geo geocoder, cache port.CachePort) *SearchClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", browserUA).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Referer", strings.TrimRight(cfg.BaseURL, "/")+"/")

	return &SearchClient{
		http:     client,
		geocoder: geo,
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		breaker:  breaker.New(breaker.Settings{Name: "zillow", ConsecutiveFailures: 3, OpenTimeout: 2 * time.Minute}),
	}
}

// FindListing возвращает (nil, nil), если адрес не найден или не совпал ни с одним объявлением
func (c *SearchClient) FindListing(ctx context.Context, address string) (*domain.ListingRecord, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ZillowSearchClient",
		"method":    "FindListing",
	})

	point, err := c.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			logger.Debug("Address not geocoded", nil)
			return nil, nil
		}
		return nil, err
	}

	candidates, err := c.searchArea(ctx, point)
	if err != nil {
		return nil, err
	}

	rec, ok := underwriting.MatchListing(address, candidates)
	if !ok {
		logger.Debug("No listing matched the address", port.Fields{"candidates": len(candidates)})
		return nil, nil
	}
	return &rec, nil
}

func (c *SearchClient) searchArea(ctx context.Context, center Point) ([]domain.ListingRecord, error) {
	key := "zillow:area:" + geohash.EncodeWithPrecision(center.Lat, center.Lng, areaKeyPrecision)

	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, key); err == nil {
			var cached []domain.ListingRecord
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	listings, err := breaker.Do(c.breaker, func() ([]domain.ListingRecord, error) {
		return c.search(ctx, boundsAround(center))
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if raw, err := json.Marshal(listings); err == nil {
			_ = c.cache.Set(ctx, key, raw, c.cacheTTL)
		}
	}
	return listings, nil
}

type searchRequest struct {
	SearchQueryState searchQueryState    `json:"searchQueryState"`
	Wants            map[string][]string `json:"wants"`
	RequestID        int                 `json:"requestId"`
	IsDebugRequest   bool                `json:"isDebugRequest"`
}

type searchQueryState struct {
	Pagination    struct{} `json:"pagination"`
	IsMapVisible  bool     `json:"isMapVisible"`
	MapBounds     Bounds   `json:"mapBounds"`
	IsListVisible bool     `json:"isListVisible"`
}

type searchResponse struct {
	Cat1 struct {
		SearchResults struct {
			ListResults []listResult `json:"listResults"`
		} `json:"searchResults"`
	} `json:"cat1"`
}

type listResult struct {
	Zpid           string `json:"zpid"`
	AddressStreet  string `json:"addressStreet"`
	FlexFieldText  string `json:"flexFieldText"`
	ContentType    string `json:"contentType"`
	PriceReduction string `json:"priceReduction"`
	DetailURL      string `json:"detailUrl"`
	BrokerName     string `json:"brokerName"`
	StatusText     string `json:"statusText"`
	HdpData        struct {
		HomeInfo homeInfo `json:"homeInfo"`
	} `json:"hdpData"`
}

type homeInfo struct {
	DaysOnZillow       int     `json:"daysOnZillow"`
	PriceChange        float64 `json:"priceChange"`
	TaxAssessedValue   float64 `json:"taxAssessedValue"`
	Bedrooms           int     `json:"bedrooms"`
	Bathrooms          float64 `json:"bathrooms"`
	LivingArea         float64 `json:"livingArea"`
	HomeType           string  `json:"homeType"`
	IsNonOwnerOccupied bool    `json:"isNonOwnerOccupied"`
}

func (c *SearchClient) search(ctx context.Context, b Bounds) ([]domain.ListingRecord, error) {
	body := searchRequest{
		SearchQueryState: searchQueryState{IsMapVisible: true, MapBounds: b, IsListVisible: true},
		Wants:            map[string][]string{"cat1": {"listResults"}},
		RequestID:        2,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Put(searchPath)
	if err != nil {
		return nil, fmt.Errorf("zillow: %w: %v", port.ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("zillow: search status %d: %w", resp.StatusCode(), port.ErrProviderUnavailable)
	}

	var out searchResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("zillow: malformed search response: %w", err)
	}
	results := out.Cat1.SearchResults.ListResults
	listings := make([]domain.ListingRecord, 0, len(results))
	for _, r := range results {
		listings = append(listings, toListingRecord(r))
	}
	return listings, nil
}

func toListingRecord(r listResult) domain.ListingRecord {
	hi := r.HdpData.HomeInfo
	return domain.ListingRecord{
		Source:           SourceName,
		ExternalID:       r.Zpid,
		StreetAddress:    r.AddressStreet,
		Snippet:          r.FlexFieldText,
		SnippetType:      r.ContentType,
		DaysOnMarket:     hi.DaysOnZillow,
		PriceChange:      hi.PriceChange,
		PriceReduction:   r.PriceReduction,
		TaxAssessedValue: hi.TaxAssessedValue,
		SquareFeet:       int(hi.LivingArea),
		Bedrooms:         hi.Bedrooms,
		Bathrooms:        hi.Bathrooms,
		HomeType:         hi.HomeType,
		StatusText:       r.StatusText,
		BrokerName:       r.BrokerName,
		DetailURL:        r.DetailURL,
		NonOwnerOccupied: hi.IsNonOwnerOccupied,
	}
}
