// Package metrics exposes Prometheus instruments for the HTTP API, the
// invoice event publisher and the report cache.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

type Metrics struct {
	// Registry owns every collector below; /metrics serves it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	domainErrors    *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
}

// New registers the application metrics in a private registry, so several
// instances can coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "factures_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factures_http_requests_total",
				Help: "HTTP requests by route and status code.",
			},
			[]string{"route", "method", "status"},
		),
		domainErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factures_domain_errors_total",
				Help: "Errors returned to API clients, by kind.",
			},
			[]string{"kind"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "factures_invoice_events_total",
				Help: "Invoice events handed to the broker, by result.",
			},
			[]string{"result"},
		),
	}
}

// ObserveRequest records one served request. route is the mux pattern, not
// the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requestDuration.WithLabelValues(route, method).Observe(d.Seconds())
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// IncrDomainError counts an error by kind (validation, not_found, conflict, internal).
func (m *Metrics) IncrDomainError(kind string) {
	m.domainErrors.WithLabelValues(kind).Inc()
}

// IncrEvent counts a publish attempt by result (ok, failed).
func (m *Metrics) IncrEvent(result string) {
	m.eventsPublished.WithLabelValues(result).Inc()
}

// RegisterCacheStats exposes hit and miss counters read from stats on every scrape.
func (m *Metrics) RegisterCacheStats(name string, stats func() (hits, misses uint64)) {
	factory := promauto.With(m.Registry)
	labels := prometheus.Labels{"cache": name}
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name:        "factures_cache_hits_total",
		Help:        "Report cache hits.",
		ConstLabels: labels,
	}, func() float64 {
		hits, _ := stats()
		return float64(hits)
	})
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name:        "factures_cache_misses_total",
		Help:        "Report cache misses.",
		ConstLabels: labels,
	}, func() float64 {
		_, misses := stats()
		return float64(misses)
	})
}

// RegisterBreakerState exposes the publish circuit breaker state
// (0 closed, 1 half-open, 2 open).
func (m *Metrics) RegisterBreakerState(state func() int) {
	promauto.With(m.Registry).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "factures_amqp_breaker_state",
		Help: "State of the invoice event publish circuit breaker.",
	}, func() float64 {
		return float64(state())
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// counterValue extracts the current value of one labelled counter.
func counterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
