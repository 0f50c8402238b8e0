// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests             *prometheus.CounterVec
	CounterHandleRequestPanic   prometheus.Counter
	CounterWeightsRecorded      prometheus.Counter
	CounterGoalsReached         prometheus.Counter
	CounterDashboards           *prometheus.CounterVec
	CounterAggregationFallbacks prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge
	GaugeStreams  prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("vitals", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("vitals", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterWeightsRecorded := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "weights_recorded",
		Help:      "The total number of recorded or edited weight entries",
	})
	counterGoalsReached := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "goals_reached",
		Help:      "The total number of writes after which the latest weight met the goal",
	})
	counterDashboards := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "dashboards",
		Help:      "The total number of dashboards built, by range",
	}, []string{"range"})
	counterAggregationFallbacks := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "aggregation_fallbacks",
		Help:      "Buckets whose mean was not finite and fell back to the first weight",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeStreams := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "open_streams",
		Help:      "Current number of open dashboard streams",
	})

	histReqDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets: []float64{
				0.0001, 0.0005, 0.001, 0.005, 0.01,
				0.05, 0.1, 0.5, 1, 5, 10, 60,
			},
			Name: "request_duration_seconds",
			Help: "Total duration of requests in seconds",
		},
	)

	return &Manager{
		CounterRequests:             counterRequests,
		CounterHandleRequestPanic:   counterHandleRequestPanic,
		CounterWeightsRecorded:      counterWeightsRecorded,
		CounterGoalsReached:         counterGoalsReached,
		CounterDashboards:           counterDashboards,
		CounterAggregationFallbacks: counterAggregationFallbacks,
		GaugeRequests:               gaugeRequests,
		GaugeStreams:                gaugeStreams,
		HistRequestDuration:         histReqDuration,
	}
}
