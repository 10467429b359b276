package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"section8-underwriter/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("REST_PORT", "")
	t.Setenv("CACHE_TTL_LISTING", "")
	t.Setenv("RABBITMQ_ENABLED", "true")
	t.Setenv("RABBITMQ_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Rest.Port)
	assert.Equal(t, time.Hour, cfg.Cache.ListingTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.RentTTL)
	assert.False(t, cfg.RabbitMQ.Enabled, "rabbitmq is disabled without URL")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("REST_PORT", "9090")
	t.Setenv("UNDERWRITE_WORKERS", "8")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("RENTCAST_RPS", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Rest.Port)
	assert.Equal(t, 8, cfg.UnderwriteWorkers)
	assert.Equal(t, 3*time.Second, cfg.Providers.HTTPTimeout)
	assert.Equal(t, 3.0, cfg.Providers.RentcastRPS)
}

func TestLoadConfig_CORSOrigins(t *testing.T) {
	t.Setenv("REST_CORS_ORIGINS", "http://localhost:5173, https://deals.example.com,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:5173", "https://deals.example.com"}, cfg.Rest.AllowedOrigins)
}

func TestLoadConfig_ExplicitMissingEnvFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestParseUnderwritingParams(t *testing.T) {
	params, err := ParseUnderwritingParams([]byte(`
interest_rate: 0.065
target_cashflow: 300
use_110_payment_standard: true
standard_sqft: [500, 700, 900, 1200, 1500]
`))
	require.NoError(t, err)

	assert.Equal(t, 0.065, params.InterestRate)
	assert.Equal(t, 300.0, params.TargetCashflow)
	assert.True(t, params.Use110PaymentStandard)
	assert.Equal(t, [5]int{500, 700, 900, 1200, 1500}, params.StandardSqft)
	assert.Equal(t, 30, params.LoanTermYears, "untouched keys keep defaults")
}

func TestParseUnderwritingParams_Errors(t *testing.T) {
	_, err := ParseUnderwritingParams([]byte("interest_rte: 0.07\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = ParseUnderwritingParams([]byte("tax_rate: -0.1\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	_, err = ParseUnderwritingParams([]byte("standard_sqft: [1, 2]\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestLoadUnderwritingParams(t *testing.T) {
	params, err := LoadUnderwritingParams("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultUnderwritingParams(), params)

	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wholesale_fee: 15000\n"), 0o600))

	params, err = LoadUnderwritingParams(path)
	require.NoError(t, err)
	assert.Equal(t, 15000.0, params.WholesaleFee)

	params, err = LoadUnderwritingParams("")
	require.NoError(t, err)
	empty, err := ParseUnderwritingParams(nil)
	require.NoError(t, err)
	assert.Equal(t, params, empty)
}
