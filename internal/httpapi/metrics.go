package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "tally"

// Metrics holds the Prometheus collectors of the series API.
type Metrics struct {
	SeriesBuilt    *prometheus.CounterVec
	SeriesErrors   *prometheus.CounterVec
	BuildDuration  *prometheus.HistogramVec
	PointsIngested prometheus.Counter
}

// NewMetrics registers the API collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SeriesBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "series",
			Name:      "built_total",
			Help:      "Total number of series built by granularity",
		}, []string{"granularity"}),
		SeriesErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "series",
			Name:      "errors_total",
			Help:      "Total number of rejected series requests by error kind",
		}, []string{"kind"}),
		BuildDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "series",
			Name:      "build_duration_seconds",
			Help:      "Time spent building one series",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"granularity"}),
		PointsIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "series",
			Name:      "points_ingested_total",
			Help:      "Total number of points received across all requests",
		}),
	}
}
