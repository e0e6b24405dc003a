package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mobilecollector/backoffice/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a Prometheus registry with the HTTP and transaction collectors.
// It satisfies services.TransactionObserver.
type Metrics struct {
	registry            *prometheus.Registry
	requestDuration     *prometheus.HistogramVec
	transactionsCreated *prometheus.CounterVec
	transactionsDeleted prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		transactionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transactions_created_total",
			Help: "Transactions recorded, by office code and type.",
		}, []string{"office_code", "transaction_type"}),
		transactionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transactions_deleted_total",
			Help: "Transactions removed individually or by cleanup.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.transactionsCreated,
		m.transactionsDeleted,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request latency labelled with the matched route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// otherOffice is the label for every office code outside types.OfficeCodes.
const otherOffice = "other"

func (m *Metrics) TransactionCreated(tx types.Transaction) {
	office := tx.OfficeCode
	if !types.KnownOffice(office) {
		office = otherOffice
	}
	m.transactionsCreated.WithLabelValues(office, string(tx.TransactionType)).Inc()
}

func (m *Metrics) TransactionsDeleted(count int64) {
	if count > 0 {
		m.transactionsDeleted.Add(float64(count))
	}
}
