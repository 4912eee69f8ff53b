package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "adminconsole"

// Recorder owns the console's collectors on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	staleLoads  *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "REST backend calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "REST backend call latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		staleLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_loads_discarded_total",
			Help:      "Screen loads dropped because a newer load was issued.",
		}, []string{"screen"}),
	}
	r.registry.MustRegister(
		r.apiRequests,
		r.apiDuration,
		r.staleLoads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveAPICall records one backend call. A nil recorder is a no-op.
func (r *Recorder) ObserveAPICall(operation, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.apiRequests.WithLabelValues(operation, outcome).Inc()
	r.apiDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// StaleLoad counts a discarded screen load.
func (r *Recorder) StaleLoad(screen string) {
	if r == nil {
		return
	}
	r.staleLoads.WithLabelValues(screen).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer is exposed for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}
