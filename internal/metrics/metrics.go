package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sneaker"

// ServerMetrics instruments the HTTP layer.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// OrderMetrics counts order workflow outcomes.
type OrderMetrics struct {
	created           prometheus.Counter
	cancelled         prometheus.Counter
	insufficientStock prometheus.Counter
	partialRelease    prometheus.Counter
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	m := &OrderMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders successfully created.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_cancelled_total",
			Help:      "Orders successfully cancelled.",
		}),
		insufficientStock: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_insufficient_stock_total",
			Help:      "Order requests rejected for insufficient stock.",
		}),
		partialRelease: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_partial_release_total",
			Help:      "Stock releases that failed and need reconciliation.",
		}),
	}
	reg.MustRegister(m.created, m.cancelled, m.insufficientStock, m.partialRelease)
	return m
}

func (m *OrderMetrics) OrderCreated()      { m.created.Inc() }
func (m *OrderMetrics) OrderCancelled()    { m.cancelled.Inc() }
func (m *OrderMetrics) InsufficientStock() { m.insufficientStock.Inc() }
func (m *OrderMetrics) PartialRelease()    { m.partialRelease.Inc() }

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
