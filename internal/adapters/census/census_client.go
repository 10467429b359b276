package census

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"section8-underwriter/internal/adapters/breaker"
	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"

	"github.com/go-resty/resty/v2"
)

// Переменные ACS 5-year
const (
	varMedianValue = "B25077_001E"
	varTotalUnits  = "B25002_001E"
	varVacantUnits = "B25002_003E"

	geographyZCTA = "zip code tabulation area"

	// unknownSentinel - маркер Census для отсутствующей оценки
	unknownSentinel = "-666666666"
)

type Config struct {
	BaseURL string
	Year    int
	APIKey  string
	Timeout time.Duration
}

// Client получает рыночную статистику по zip из Census ACS
type Client struct {
	http    *resty.Client
	year    int
	apiKey  string
	breaker *breaker.Breaker
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    client,
		year:    cfg.Year,
		apiKey:  cfg.APIKey,
		breaker: breaker.New(breaker.Settings{Name: "census", ConsecutiveFailures: 5, OpenTimeout: time.Minute}),
	}
}

func (c *Client) StatsForZip(ctx context.Context, zip string) (domain.MarketStats, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "CensusClient",
		"method":    "StatsForZip",
		"zip":       zip,
	})

	stats, err := breaker.Do(c.breaker, func() (domain.MarketStats, error) {
		return c.fetch(ctx, zip)
	})
	if err != nil {
		logger.Debug("Census lookup failed", port.Fields{"error": err.Error()})
		return domain.MarketStats{Zip: zip}, err
	}
	return stats, nil
}

func (c *Client) fetch(ctx context.Context, zip string) (domain.MarketStats, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("get", strings.Join([]string{varMedianValue, varTotalUnits, varVacantUnits}, ",")).
		SetQueryParam("for", geographyZCTA+":"+zip)
	if c.apiKey != "" {
		req.SetQueryParam("key", c.apiKey)
	}

	resp, err := req.Get(fmt.Sprintf("/data/%d/acs/acs5", c.year))
	if err != nil {
		return domain.MarketStats{}, fmt.Errorf("census: %w: %v", port.ErrProviderUnavailable, err)
	}
	switch {
	case resp.StatusCode() == 204 || resp.StatusCode() == 404:
		return domain.MarketStats{}, fmt.Errorf("census: zip %s: %w", zip, port.ErrNotFound)
	case resp.StatusCode() >= 500:
		return domain.MarketStats{}, fmt.Errorf("census: status %d: %w", resp.StatusCode(), port.ErrProviderUnavailable)
	case resp.IsError():
		return domain.MarketStats{}, fmt.Errorf("census: unexpected status %d for zip %s", resp.StatusCode(), zip)
	}

	return parseACSResponse(zip, resp.Body())
}

// parseACSResponse разбирает таблицу вида [[заголовки...], [значения...]]
func parseACSResponse(zip string, body []byte) (domain.MarketStats, error) {
	var table [][]string
	if err := json.Unmarshal(body, &table); err != nil {
		return domain.MarketStats{}, fmt.Errorf("census: malformed response: %w", err)
	}
	if len(table) < 2 {
		return domain.MarketStats{}, fmt.Errorf("census: zip %s: %w", zip, port.ErrNotFound)
	}

	index := make(map[string]int, len(table[0]))
	for i, h := range table[0] {
		index[h] = i
	}
	row := table[1]
	value := func(name string) int {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return 0
		}
		return parseEstimate(row[i])
	}

	return domain.NewMarketStats(zip, float64(value(varMedianValue)), value(varTotalUnits), value(varVacantUnits)), nil
}

func parseEstimate(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == unknownSentinel {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
