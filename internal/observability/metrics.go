package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tephra_map"

// Metrics holds the Prometheus counters, histograms, and gauges for one map run.
type Metrics struct {
	SamplesLoaded        prometheus.Counter
	SamplesClassified    *prometheus.CounterVec // labels: tephra, composition
	SummaryRows          prometheus.Gauge
	SinkWrites           *prometheus.CounterVec // labels: sink, outcome={success,error}
	MapsRendered         prometheus.Counter
	RunDuration          prometheus.Histogram
	LastSuccessTimestamp prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates all run metrics and registers them on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SamplesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_loaded_total",
			Help:      "Total sample rows read from the input tables.",
		}),
		SamplesClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_classified_total",
			Help:      "Samples by tephra layer and classified composition.",
		}, []string{"tephra", "composition"}),
		SummaryRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "summary_rows",
			Help:      "Rows in the most recent site summary table.",
		}),
		SinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_sink_writes_total",
			Help:      "Summary sink writes by sink and outcome.",
		}, []string{"sink", "outcome"}),
		MapsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maps_rendered_total",
			Help:      "Map images written.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete load-aggregate-render run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without error.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.SamplesLoaded,
		m.SamplesClassified,
		m.SummaryRows,
		m.SinkWrites,
		m.MapsRendered,
		m.RunDuration,
		m.LastSuccessTimestamp,
	)

	return m
}

// NewMetricsForTesting returns unshared Metrics so tests never collide on registration.
func NewMetricsForTesting() *Metrics {
	return NewMetrics()
}

// WriteTextfile dumps every metric in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
