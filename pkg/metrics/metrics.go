package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Wrap records count and latency for h under the handler label name.
func (m *ServerMetrics) Wrap(name string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		m.Requests.WithLabelValues(name, strconv.Itoa(rec.status)).Inc()
		m.LatencyMS.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// ShopMetrics counts business outcomes. A nil *ShopMetrics is valid and records nothing.
type ShopMetrics struct {
	OrdersPlaced   prometheus.Counter
	OrdersRejected *prometheus.CounterVec
	Payments       *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
}

func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	m := &ShopMetrics{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders successfully placed.",
		}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Order placements rejected, by error code.",
		}, []string{"code"}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Payment attempts by final status.",
		}, []string{"status"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status transitions by target status.",
		}, []string{"to"}),
	}
	reg.MustRegister(m.OrdersPlaced, m.OrdersRejected, m.Payments, m.Transitions)
	return m
}

func (m *ShopMetrics) OrderPlaced() {
	if m == nil {
		return
	}
	m.OrdersPlaced.Inc()
	m.Transitions.WithLabelValues("PENDING").Inc()
}

func (m *ShopMetrics) OrderRejected(code string) {
	if m == nil {
		return
	}
	m.OrdersRejected.WithLabelValues(code).Inc()
}

func (m *ShopMetrics) Payment(status string) {
	if m == nil {
		return
	}
	m.Payments.WithLabelValues(status).Inc()
}

func (m *ShopMetrics) Transition(to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(to).Inc()
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
