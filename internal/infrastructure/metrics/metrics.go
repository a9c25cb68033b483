package metrics

import (
	"context"
	"net/http"
	"sync"

	"okapi-care-network/internal/domain/rbac"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "okapi"

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry prometheus.Gatherer

	authzDecisions *prometheus.CounterVec
	securityEvents *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec

	// route template -> promhttp chain with the route label curried in
	routes sync.Map
}

// New registers the collectors on reg. Passing a fresh registry keeps tests isolated.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		authzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_decisions_total",
			Help:      "Permission checks by role, permission and result",
		}, []string{"role", "permission", "result"}),
		securityEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "security_events_total",
			Help:      "Security events written to the audit trail",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(m.authzDecisions, m.securityEvents, m.httpRequests, m.httpDuration)
	return m
}

// ObserveDecision counts one permission check. Unrecognised roles share a
// single label value to keep cardinality bounded.
func (m *Metrics) ObserveDecision(role string, permission rbac.Permission, allowed bool) {
	if !rbac.IsKnownRole(role) {
		role = "unknown"
	}
	result := "denied"
	if allowed {
		result = "allowed"
	}
	m.authzDecisions.WithLabelValues(role, string(permission), result).Inc()
}

func (m *Metrics) ObserveSecurityEvent(eventType string) {
	m.securityEvents.WithLabelValues(eventType).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type nextHandlerKey struct{}

// callNext runs the handler Instrument was given for the current request.
var callNext = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	r.Context().Value(nextHandlerKey{}).(http.Handler).ServeHTTP(w, r)
})

func (m *Metrics) routeHandler(route string) http.Handler {
	if h, ok := m.routes.Load(route); ok {
		return h.(http.Handler)
	}

	labels := prometheus.Labels{"route": route}
	h := promhttp.InstrumentHandlerDuration(
		m.httpDuration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.httpRequests.MustCurryWith(labels), callNext),
	)
	actual, _ := m.routes.LoadOrStore(route, h)
	return actual.(http.Handler)
}

func routeTemplate(r *http.Request) string {
	if current := mux.CurrentRoute(r); current != nil {
		if tpl, err := current.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// Instrument records request count and latency labelled by the matched route template.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), nextHandlerKey{}, next)
		m.routeHandler(routeTemplate(r)).ServeHTTP(w, r.WithContext(ctx))
	})
}
