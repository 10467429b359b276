package hud

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"

	"github.com/go-resty/resty/v2"
)

const downloadTimeout = 60 * time.Second

// SAFMRSource скачивает книгу HUD Small Area FMR
type SAFMRSource struct {
	client *resty.Client
	url    string
}

func NewSAFMRSource(url, userAgent string) *SAFMRSource {
	client := resty.New().
		SetTimeout(downloadTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(2*time.Second).
		SetHeader("User-Agent", userAgent)
	return &SAFMRSource{client: client, url: url}
}

func (s *SAFMRSource) FetchRentTable(ctx context.Context) ([]domain.RentTableRow, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "SAFMRSource",
		"method":    "FetchRentTable",
		"url":       s.url,
	})

	resp, err := s.client.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("hud: download failed: %w: %v", port.ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("hud: download failed with status %d: %w", resp.StatusCode(), port.ErrProviderUnavailable)
	}

	logger.Info("SAFMR workbook downloaded", port.Fields{"bytes": len(resp.Body())})
	rows, err := ParseSAFMRWorkbook(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, err
	}
	logger.Info("SAFMR workbook parsed", port.Fields{"rows": len(rows)})
	return rows, nil
}
