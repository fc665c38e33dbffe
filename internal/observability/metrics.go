package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for one table run.
type Metrics struct {
	RowsRead       prometheus.Counter
	RowsSelected   prometheus.Counter
	EntriesEmitted prometheus.Counter
	RunFailures    prometheus.Counter
	RunDuration    prometheus.Gauge
	LastSuccess    prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates the run metrics on a private registry. A CLI run has no
// scrape endpoint, so the registry is written out with WriteTextfile instead.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "suntable",
			Name:      "rows_read_total",
			Help:      "CSV rows read, header included.",
		}),
		RowsSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "suntable",
			Name:      "rows_selected_total",
			Help:      "Data rows chosen by the sampling rule.",
		}),
		EntriesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "suntable",
			Name:      "entries_emitted_total",
			Help:      "Array-literal lines written.",
		}),
		RunFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "suntable",
			Name:      "run_failures_total",
			Help:      "Runs aborted by an input or output error.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "suntable",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "suntable",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last successful run finished.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RowsRead,
		m.RowsSelected,
		m.EntriesEmitted,
		m.RunFailures,
		m.RunDuration,
		m.LastSuccess,
	)

	return m
}

// NewMetricsForTesting returns fresh metrics; each call has its own registry
// so tests never collide.
func NewMetricsForTesting() *Metrics {
	return NewMetrics()
}

// Registry exposes the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile atomically writes all metrics to path in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
