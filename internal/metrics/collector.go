// ABOUTME: Prometheus collector mirroring the handler's request and detection counters
// ABOUTME: Uses a private registry exposed over HTTP by the mcp command's metrics endpoint
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "amb"

// Collector holds all Prometheus metrics for the pipeline
type Collector struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Hallucinations  *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of processed requests by outcome",
		},
		[]string{"outcome"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request processing duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .2, .5, 1, 2.5, 5},
		},
		[]string{"outcome"},
	)

	hallucinations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hallucinations_detected_total",
			Help:      "Total number of hallucination detections by detector",
		},
		[]string{"detection_type"},
	)

	registry.MustRegister(requests, requestDuration, hallucinations)

	return &Collector{
		registry:        registry,
		Requests:        requests,
		RequestDuration: requestDuration,
		Hallucinations:  hallucinations,
	}
}

// ObserveRequest records one request outcome and its duration
func (c *Collector) ObserveRequest(outcome string, elapsed time.Duration) {
	c.Requests.WithLabelValues(outcome).Inc()
	c.RequestDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveHallucination records one positive detection
func (c *Collector) ObserveHallucination(detectionType string) {
	c.Hallucinations.WithLabelValues(detectionType).Inc()
}

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
