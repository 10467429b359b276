package zillow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"section8-underwriter/internal/core/port"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Point - координаты найденного адреса
type Point struct {
	Lat float64
	Lng float64
}

type nominatimHit struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocoder ищет координаты адреса в Nominatim (OpenStreetMap).
// Публичный Nominatim разрешает не больше одного запроса в секунду
type Geocoder struct {
	http    *resty.Client
	limiter *rate.Limiter
}

func NewGeocoder(baseURL, userAgent string, timeout time.Duration) *Geocoder {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	return &Geocoder{
		http:    client,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (g *Geocoder) Geocode(ctx context.Context, address string) (Point, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return Point{}, err
	}

	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"q": address, "format": "json", "limit": "1"}).
		Get("/search")
	if err != nil {
		return Point{}, fmt.Errorf("nominatim: %w: %v", port.ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return Point{}, fmt.Errorf("nominatim: status %d: %w", resp.StatusCode(), port.ErrProviderUnavailable)
	}
	var hits []nominatimHit
	if err := json.Unmarshal(resp.Body(), &hits); err != nil {
		return Point{}, fmt.Errorf("nominatim: malformed response: %w", err)
	}
	if len(hits) == 0 {
		return Point{}, fmt.Errorf("nominatim: address %q: %w", address, port.ErrNotFound)
	}

	lat, errLat := strconv.ParseFloat(hits[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(hits[0].Lon, 64)
	if errLat != nil || errLng != nil {
		return Point{}, fmt.Errorf("nominatim: malformed coordinates %q,%q", hits[0].Lat, hits[0].Lon)
	}
	return Point{Lat: lat, Lng: lng}, nil
}
