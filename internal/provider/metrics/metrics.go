// Package metrics exposes Prometheus counters for the token lifecycle.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oauth1d"

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	authorizations *prometheus.CounterVec
	exchanges      *prometheus.CounterVec
	revocations    *prometheus.CounterVec
	staleTokens    prometheus.Counter
	httpRequests   *prometheus.CounterVec
}

// New registers the counters plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		authorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorizations_total",
			Help:      "User decisions on request tokens by outcome.",
		}, []string{"outcome"}),
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_total",
			Help:      "Request token exchanges by outcome.",
		}, []string{"outcome"}),
		revocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revocations_total",
			Help:      "Revocation requests by whether a token was invalidated.",
		}, []string{"revoked"}),
		staleTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_request_tokens_invalidated_total",
			Help:      "Request tokens invalidated by housekeeping.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		m.authorizations,
		m.exchanges,
		m.revocations,
		m.staleTokens,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Authorization(outcome string) { m.authorizations.WithLabelValues(outcome).Inc() }

func (m *Metrics) Exchange(outcome string) { m.exchanges.WithLabelValues(outcome).Inc() }

func (m *Metrics) Revocation(revoked bool) {
	m.revocations.WithLabelValues(strconv.FormatBool(revoked)).Inc()
}

func (m *Metrics) StaleRequestTokens(n int64) {
	if n > 0 {
		m.staleTokens.Add(float64(n))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Instrument counts requests to route by status code.
func (m *Metrics) Instrument(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerCounter(m.httpRequests.MustCurryWith(prometheus.Labels{"route": route}), next)
	}
}
