package metrics

import (
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

// Namespace prefixes every metric exported by capplan.
const Namespace = "capplan"

// Status label values for solve outcomes.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the collectors updated by the driver. Each instance owns its
// registry so several instances can coexist in one process.
type Metrics struct {
	registry   *prometheus.Registry
	solves     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	iterations *prometheus.GaugeVec
	gridPoints *prometheus.GaugeVec
	active     prometheus.Gauge
}

// New creates a Metrics instance with Go runtime collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "solves_total",
			Help:      "Number of model solves by outcome.",
		}, []string{"model", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall-clock time of model solves.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"model"}),
		iterations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "solve_iterations",
			Help:      "Sweeps performed by the last solve of a model.",
		}, []string{"model"}),
		gridPoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "grid_points",
			Help:      "Rows of the last output grid of a model.",
		}, []string{"model"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_solves",
			Help:      "Solves currently in progress.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.solves, m.duration, m.iterations, m.gridPoints, m.active,
	)
	return m
}

// Start marks a solve as in progress. The returned function marks it done.
func (m *Metrics) Start() func() {
	if m == nil {
		return func() {}
	}
	m.active.Inc()
	return m.active.Dec
}

// ObserveSolve records the outcome of one solve. iterations and points are
// only recorded for successful solves.
func (m *Metrics) ObserveSolve(model string, d time.Duration, iterations, points int, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(model).Observe(d.Seconds())
	if err != nil {
		m.solves.WithLabelValues(model, StatusFailure).Inc()
		return
	}
	m.solves.WithLabelValues(model, StatusSuccess).Inc()
	m.iterations.WithLabelValues(model).Set(float64(iterations))
	m.gridPoints.WithLabelValues(model).Set(float64(points))
}

// WritePrometheus writes every metric in text exposition format.
func (m *Metrics) WritePrometheus(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	if closer, ok := enc.(expfmt.Closer); ok {
		return closer.Close()
	}
	return nil
}

// WriteTextfile atomically writes every metric to path.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return errors.New("metrics: empty textfile path")
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
