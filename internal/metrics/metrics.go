package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	SearchRequestsTotal   *prometheus.CounterVec
	SearchRequestDuration *prometheus.HistogramVec

	OutcomesTotal  *prometheus.CounterVec
	StaleResponses prometheus.Counter

	SessionsCreatedTotal prometheus.Counter
	ActiveSessions       prometheus.Gauge

	RateLimitHitsTotal prometheus.Counter

	gatherer prometheus.Gatherer
}

// New регистрирует метрики в reg. nil = глобальный реестр.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer, ok := reg.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cine_bot_requests_total",
				Help: "Total number of telegram updates processed",
			},
			[]string{"type", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cine_bot_request_duration_seconds",
				Help:    "Update handling duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"type"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cine_bot_requests_in_flight",
				Help: "Number of updates currently being processed",
			},
		),

		SearchRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cine_bot_search_requests_total",
				Help: "Total number of search backend requests",
			},
			[]string{"op", "status"},
		),
		SearchRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cine_bot_search_request_duration_seconds",
				Help:    "Search backend request duration in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"op"},
		),

		OutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cine_bot_search_outcomes_total",
				Help: "Completed searches by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		StaleResponses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cine_bot_stale_responses_total",
				Help: "Responses discarded because a newer request superseded them",
			},
		),

		SessionsCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cine_bot_sessions_created_total",
				Help: "Total number of chat search sessions created",
			},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cine_bot_active_sessions",
				Help: "Number of chat search sessions held in memory",
			},
		),

		RateLimitHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cine_bot_rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
		),

		gatherer: gatherer,
	}

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(reqType, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(reqType, status).Inc()
	m.RequestDuration.WithLabelValues(reqType).Observe(duration.Seconds())
}

func (m *Metrics) RecordSearchRequest(op, status string, duration time.Duration) {
	m.SearchRequestsTotal.WithLabelValues(op, status).Inc()
	m.SearchRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *Metrics) RecordOutcome(kind, outcome string) {
	m.OutcomesTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordStaleResponse() {
	m.StaleResponses.Inc()
}

func (m *Metrics) RecordSessionCreated() {
	m.SessionsCreatedTotal.Inc()
}

func (m *Metrics) SetActiveSessions(count float64) {
	m.ActiveSessions.Set(count)
}

func (m *Metrics) RecordRateLimitHit() {
	m.RateLimitHitsTotal.Inc()
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
