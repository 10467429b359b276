package rentcast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/port"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// SourceName - имя провайдера в метке происхождения описания
const SourceName = "Rentcast"

var (
	ErrUnauthorized = errors.New("rentcast: api key rejected")
	ErrRateLimited  = errors.New("rentcast: rate limit reached")
)

type Config struct {
	BaseURL string
	APIKey  string
	RPS     float64
	Timeout time.Duration
}

// Client достает описание объявления о продаже из Rentcast
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf("rentcast: api key is required")
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("X-Api-Key", key).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), 1),
	}, nil
}

type saleListing struct {
	Description        string `json:"description"`
	PublicRemarks      string `json:"publicRemarks"`
	Remarks            string `json:"remarks"`
	ListingDescription string `json:"listingDescription"`
}

// text возвращает первое непустое поле с описанием
func (l saleListing) text() string {
	for _, s := range []string{l.Description, l.PublicRemarks, l.Remarks, l.ListingDescription} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// FetchDescription возвращает пустую строку без ошибки, если объявление
// найдено, но описания в нем нет, или объявления нет вовсе
func (c *Client) FetchDescription(ctx context.Context, address string) (string, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "RentcastClient",
		"method":    "FetchDescription",
	})

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"address": address, "limit": "1", "status": "Active"}).
		Get("/v1/listings/sale")
	if err != nil {
		return "", fmt.Errorf("rentcast: %w: %v", port.ErrProviderUnavailable, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		logger.Warn("Rentcast API key is invalid", nil)
		return "", ErrUnauthorized
	case http.StatusTooManyRequests:
		logger.Warn("Rentcast rate limit reached", nil)
		return "", ErrRateLimited
	case http.StatusNotFound:
		return "", nil
	default:
		return "", fmt.Errorf("rentcast: status %d: %w", resp.StatusCode(), port.ErrProviderUnavailable)
	}

	listings, err := decodeListings(resp.Body())
	if err != nil {
		return "", err
	}
	if len(listings) == 0 {
		return "", nil
	}
	return listings[0].text(), nil
}

// decodeListings понимает и голый массив, и объект {"listings": [...]}
func decodeListings(body []byte) ([]saleListing, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var list []saleListing
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("rentcast: malformed response: %w", err)
		}
		return list, nil
	}
	var wrapped struct {
		Listings []saleListing `json:"listings"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("rentcast: malformed response: %w", err)
	}
	return wrapped.Listings, nil
}
