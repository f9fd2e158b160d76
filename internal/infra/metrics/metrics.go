// Package metrics exposes the engine and tracker through Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "isitpayday"

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	computations    *prometheus.CounterVec
	holidayLookups  *prometheus.CounterVec
	daysUntilPayday *prometheus.GaugeVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "computations_total",
			Help:      "Payday computations by frequency, outcome and holiday data availability.",
		}, []string{"frequency", "outcome", "degraded"}),
		holidayLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "holiday_cache_lookups_total",
			Help:      "Holiday cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		daysUntilPayday: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "days_until_payday",
			Help:      "Calendar days until the next payday, 0 on payday.",
		}, []string{"profile"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.computations,
		m.holidayLookups,
		m.daysUntilPayday,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RecordCompute(frequency, outcome string, degraded bool) {
	m.computations.WithLabelValues(frequency, outcome, strconv.FormatBool(degraded)).Inc()
}

func (m *Metrics) RecordHolidayLookup(result string) {
	m.holidayLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) SetDaysUntilPayday(profile string, days int) {
	m.daysUntilPayday.WithLabelValues(profile).Set(float64(days))
}

// ForgetProfile removes the gauge of a profile whose payday is unknown or that was deleted.
func (m *Metrics) ForgetProfile(profile string) {
	m.daysUntilPayday.DeleteLabelValues(profile)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// unmatchedRoute labels requests no route matched, keeping raw paths out of the labels.
const unmatchedRoute = "unmatched"

// Middleware records request latency labelled with the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
