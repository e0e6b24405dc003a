package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mobilecollector/backoffice/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMiddlewareNamesSpanAfterRoute(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	router := chi.NewRouter()
	router.Use(Middleware(tp.Tracer("test")))
	router.Get("/api/transactions/{transactionID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions/abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "[GET] /api/transactions/{transactionID}", spans[0].Name())
}

func TestInitTracingWithoutCollector(t *testing.T) {
	tp, err := InitTracing(context.Background(), config.TracingConfig{ServiceName: "backoffice"})
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(context.Background()))
}
