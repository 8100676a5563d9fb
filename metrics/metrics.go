package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec   // requests by method, route and status code
	HTTPRequestDuration *prometheus.HistogramVec // latency by method and route
	ActiveRequests      prometheus.Gauge         // requests currently being served

	Operations *prometheus.CounterVec // forfait operations by name and result
}

// Operation results recorded by RecordOperation.
const (
	ResultSuccess  = "success"
	ResultNotFound = "not_found"
	ResultError    = "error"
	ResultInvalid  = "invalid"
)

// NewMetrics registers the collectors on reg, or on the default registerer
// when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status code",
			},
			[]string{"method", "route", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),

		ActiveRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_requests",
				Help: "Current number of in-flight HTTP requests",
			},
		),

		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forfaits_operations_total",
				Help: "Total number of forfait operations by operation and result",
			},
			[]string{"operation", "result"},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
}

func (m *Metrics) RecordHTTPDuration(method, route string, d time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) IncrementActiveRequests() {
	m.ActiveRequests.Inc()
}

func (m *Metrics) DecrementActiveRequests() {
	m.ActiveRequests.Dec()
}

// RecordOperation counts one forfait operation outcome.
func (m *Metrics) RecordOperation(operation, result string) {
	m.Operations.WithLabelValues(operation, result).Inc()
}
