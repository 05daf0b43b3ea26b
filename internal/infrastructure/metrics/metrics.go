package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/computeledger/internal/usecase"
)

const namespace = "computeledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Authorization metrics
	Authorizations        *prometheus.CounterVec
	AuthorizationDuration prometheus.Histogram
	RaysDebited           prometheus.Counter
	RaysRequested         prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Idempotency metrics
	IdempotencyReplays prometheus.Counter

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
}

// New creates all Prometheus metrics and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Authorizations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authorizations_total",
				Help:      "Compute authorization attempts by outcome",
			},
			[]string{"outcome"},
		),
		AuthorizationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "authorization_duration_seconds",
			Help:      "Duration of compute authorizations",
			Buckets:   prometheus.DefBuckets,
		}),
		RaysDebited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rays_debited_total",
			Help:      "Total rays debited by accepted authorizations",
		}),
		RaysRequested: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rays_requested",
			Help:      "Requested rays per authorization",
			Buckets:   []float64{1, 10, 100, 1000, 10000, 100000},
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests refused by the rate limiter",
		}),

		IdempotencyReplays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotency_replays_total",
			Help:      "Responses served from the idempotency store",
		}),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox events delivered",
		}),
		OutboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_failures_total",
			Help:      "Outbox events that failed to deliver",
		}),
	}
}

// ObserveAuthorization implements usecase.AuthorizationObserver.
func (m *Metrics) ObserveAuthorization(outcome string, amount decimal.Decimal, duration time.Duration) {
	m.Authorizations.WithLabelValues(outcome).Inc()
	m.AuthorizationDuration.Observe(duration.Seconds())

	if outcome == usecase.OutcomeInvalidRequest {
		return
	}

	f := amount.InexactFloat64()
	m.RaysRequested.Observe(f)
	if outcome == usecase.OutcomeAccepted {
		m.RaysDebited.Add(f)
	}
}

// ObservePublish records an outbox delivery attempt.
func (m *Metrics) ObservePublish(err error) {
	if err != nil {
		m.OutboxFailures.Inc()
		return
	}
	m.OutboxPublished.Inc()
}
