package census

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"section8-underwriter/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Year: 2022})
}

func TestStatsForZip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2022/acs/acs5", r.URL.Path)
		assert.Equal(t, "B25077_001E,B25002_001E,B25002_003E", r.URL.Query().Get("get"))
		assert.Equal(t, "zip code tabulation area:46205", r.URL.Query().Get("for"))
		assert.Empty(t, r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`[["B25077_001E","B25002_001E","B25002_003E","zip code tabulation area"],["152300","11873","1781","46205"]]`))
	})

	stats, err := c.StatsForZip(context.Background(), "46205")
	require.NoError(t, err)
	assert.Equal(t, 152300.0, stats.MedianValue)
	assert.Equal(t, 11873, stats.TotalUnits)
	assert.Equal(t, 1781, stats.VacantUnits)
	assert.Equal(t, 15.0, stats.VacancyRatePct)
	assert.True(t, stats.Known())
}

func TestStatsForZip_SentinelMeansUnknown(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[["B25077_001E","B25002_001E","B25002_003E","zip code tabulation area"],["-666666666","0","0","46205"]]`))
	})

	stats, err := c.StatsForZip(context.Background(), "46205")
	require.NoError(t, err)
	assert.False(t, stats.Known())
	assert.Equal(t, 0.0, stats.VacancyRatePct)
}

func TestStatsForZip_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	_, err := c.StatsForZip(context.Background(), "00000")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestStatsForZip_ServerErrorTripsBreaker(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 6; i++ {
		_, err := c.StatsForZip(context.Background(), "46205")
		assert.ErrorIs(t, err, port.ErrProviderUnavailable)
	}
	assert.Equal(t, 5, calls)
}

func TestStatsForZip_APIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`[["B25077_001E"],["100000"]]`))
	}))
	defer srv.Close()

	stats, err := NewClient(Config{BaseURL: srv.URL, Year: 2022, APIKey: "secret"}).StatsForZip(context.Background(), "46205")
	require.NoError(t, err)
	assert.Equal(t, 100000.0, stats.MedianValue)
	assert.Equal(t, 0, stats.TotalUnits)
}

func TestParseEstimate(t *testing.T) {
	assert.Equal(t, 0, parseEstimate("-666666666"))
	assert.Equal(t, 0, parseEstimate("abc"))
	assert.Equal(t, 0, parseEstimate(""))
	assert.Equal(t, 42, parseEstimate(" 42 "))
}
