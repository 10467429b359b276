package metrics

import (
	"net/http"
	"time"

	"section8-underwriter/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "underwriter"

// PrometheusMetrics реализует MetricsPort и отдает /metrics
type PrometheusMetrics struct {
	registry *prometheus.Registry

	deals            *prometheus.CounterVec
	providerFailures *prometheus.CounterVec
	batchSize        prometheus.Histogram
	batchDuration    prometheus.Histogram
}

func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		deals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deals_total",
				Help:      "Underwritten properties by quality tier",
			},
			[]string{"tier"},
		),
		providerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_failures_total",
				Help:      "Failed external lookups that fell back to defaults",
			},
			[]string{"provider"},
		),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Properties underwritten per batch",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of a batch run",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}

	m.registry.MustRegister(
		m.deals,
		m.providerFailures,
		m.batchSize,
		m.batchDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, tier := range domain.AllTiers() {
		m.deals.WithLabelValues(string(tier))
	}
	return m
}

func (m *PrometheusMetrics) ObserveDeal(tier domain.QualityTier) {
	m.deals.WithLabelValues(string(tier)).Inc()
}

func (m *PrometheusMetrics) ObserveProviderFailure(provider string) {
	m.providerFailures.WithLabelValues(provider).Inc()
}

func (m *PrometheusMetrics) ObserveBatch(size int, duration time.Duration) {
	m.batchSize.Observe(float64(size))
	m.batchDuration.Observe(duration.Seconds())
}

func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Noop - метрики для CLI, где их некому собирать
type Noop struct{}

func (Noop) ObserveDeal(domain.QualityTier)  {}
func (Noop) ObserveProviderFailure(string)   {}
func (Noop) ObserveBatch(int, time.Duration) {}
