package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mobilecollector/backoffice/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionCounters(t *testing.T) {
	m := New()

	m.TransactionCreated(types.Transaction{OfficeCode: "111", TransactionType: types.TransactionDeposit})
	m.TransactionCreated(types.Transaction{OfficeCode: "111", TransactionType: types.TransactionDeposit})
	m.TransactionCreated(types.Transaction{OfficeCode: "116", TransactionType: types.TransactionDeposit})
	m.TransactionsDeleted(3)
	m.TransactionsDeleted(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactionsCreated.WithLabelValues("111", "deposit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactionsCreated.WithLabelValues("116", "deposit")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.transactionsDeleted))
}

func TestUnknownOfficeCodesShareOneSeries(t *testing.T) {
	m := New()

	m.TransactionCreated(types.Transaction{OfficeCode: "999", TransactionType: types.TransactionDeposit})
	m.TransactionCreated(types.Transaction{OfficeCode: "kantor pusat", TransactionType: types.TransactionDeposit})
	m.TransactionCreated(types.Transaction{OfficeCode: "139", TransactionType: types.TransactionDeposit})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactionsCreated.WithLabelValues("other", "deposit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactionsCreated.WithLabelValues("139", "deposit")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.transactionsCreated))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/api/customers/{customerID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers/42", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration, "http_request_duration_seconds"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/customers/{customerID}"`)
}
