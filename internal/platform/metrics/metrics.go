package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registry-wide Prometheus metrics.
type Metrics struct {
	UsersRegistered      prometheus.Counter
	UsersVerified        *prometheus.CounterVec
	PropertiesRegistered prometheus.Counter
	PropertiesVerified   *prometheus.CounterVec
	SalesCreated         prometheus.Counter
	SalesCompleted       prometheus.Counter
	SalesExpired         prometheus.Counter
	PaymentsTotal        prometheus.Counter
	PaymentVolume        prometheus.Counter
	WalletConnections    *prometheus.CounterVec
	HTTPLatency          *prometheus.HistogramVec
}

// New creates and registers all metrics on reg. Tests pass a fresh
// prometheus.NewRegistry(); main passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "landregistry_users_registered_total",
			Help: "Total number of KYC registrations submitted",
		}),
		UsersVerified: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landregistry_user_reviews_total",
			Help: "KYC reviews by outcome",
		}, []string{"outcome"}),
		PropertiesRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "landregistry_properties_registered_total",
			Help: "Total number of properties registered",
		}),
		PropertiesVerified: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landregistry_property_reviews_total",
			Help: "Property reviews by outcome",
		}, []string{"outcome"}),
		SalesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "landregistry_sales_created_total",
			Help: "Total number of properties put on sale",
		}),
		SalesCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "landregistry_sales_completed_total",
			Help: "Total number of ownership transfers",
		}),
		SalesExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "landregistry_sales_expired_total",
			Help: "Accepted sales reverted because the payment deadline passed",
		}),
		PaymentsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "landregistry_payments_total",
			Help: "Total number of buyer payments into escrow",
		}),
		PaymentVolume: f.NewCounter(prometheus.CounterOpts{
			Name: "landregistry_payment_volume_total",
			Help: "Sum of payment amounts moved into escrow",
		}),
		WalletConnections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landregistry_wallet_connections_total",
			Help: "Wallet connection attempts by outcome",
		}, []string{"outcome"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "landregistry_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
	}
}

// ObserveHTTP records one request's latency.
func (m *Metrics) ObserveHTTP(method, route, status string, start time.Time) {
	m.HTTPLatency.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
}

// RecordPayment counts a payment and its amount.
func (m *Metrics) RecordPayment(amount int64) {
	m.PaymentsTotal.Inc()
	m.PaymentVolume.Add(float64(amount))
}
