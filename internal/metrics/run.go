package metrics

import (
	"context"
	"fmt"
	"time"

	"catalog/feedsync/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var outcomes = []domain.Outcome{
	domain.OutcomeDelivered,
	domain.OutcomeFailed,
	domain.OutcomeFallback,
	domain.OutcomeFallbackFailed,
}

// RunMetrics holds the gauges of a single run. A batch job has no scrape
// endpoint, so the registry is pushed to a Pushgateway when the run ends.
type RunMetrics struct {
	registry *prometheus.Registry

	products prometheus.Gauge
	variants prometheus.Gauge
	images   prometheus.Gauge
	bytes    prometheus.Gauge
	duration prometheus.Gauge
	lastRun  prometheus.Gauge
	outcome  *prometheus.GaugeVec
}

func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		products: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedsync_products",
			Help: "Products written to the output document",
		}),
		variants: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedsync_variants",
			Help: "Variants written to the output document",
		}),
		images: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedsync_images",
			Help: "Image references written to the output document",
		}),
		bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedsync_document_bytes",
			Help: "Size of the output document",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedsync_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedsync_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		outcome: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "feedsync_run_outcome",
			Help: "1 for the outcome of the last run, 0 for the others",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(m.products, m.variants, m.images, m.bytes, m.duration, m.lastRun, m.outcome)
	return m
}

// ObserveDocument records what the transform produced.
func (m *RunMetrics) ObserveDocument(products, variants, images, size int) {
	m.products.Set(float64(products))
	m.variants.Set(float64(variants))
	m.images.Set(float64(images))
	m.bytes.Set(float64(size))
}

// ObserveOutcome records how the run ended.
func (m *RunMetrics) ObserveOutcome(outcome domain.Outcome, took time.Duration, finished time.Time) {
	for _, o := range outcomes {
		value := 0.0
		if o == outcome {
			value = 1
		}
		m.outcome.WithLabelValues(o.String()).Set(value)
	}
	m.duration.Set(took.Seconds())
	m.lastRun.Set(float64(finished.Unix()))
}

func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Push replaces the job's metric group on the Pushgateway at url.
func (m *RunMetrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
