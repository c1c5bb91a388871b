package converter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds per-engine conversion metrics.
type Metrics struct {
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics registers conversion metrics on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "document_conversions_total",
				Help: "Total number of document conversions by engine and outcome.",
			},
			[]string{"engine", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "document_conversion_duration_seconds",
				Help:    "Time spent inside conversion engines.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"engine"},
		),
	}
	if err := reg.Register(m.conversions); err != nil {
		return nil, err
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(engine, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(engine, status).Inc()
	m.duration.WithLabelValues(engine).Observe(d.Seconds())
}
