package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ChadVezina/TP3-Prog-Web-Avance/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestMiddleware(origins ...string) (*Middleware, *metrics.Metrics, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return New(zap.New(core), m, origins), m, logs
}

func TestRequestIDGenerated(t *testing.T) {
	mw, _, logs := newTestMiddleware()

	h := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		LoggerFrom(r.Context(), zap.NewNop()).Info("inside")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forfaits", nil))

	header := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, header)
	entries := logs.FilterMessage("inside").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, header, entries[0].ContextMap()["request_id"])
	}
}

func TestRequestIDPropagated(t *testing.T) {
	mw, _, logs := newTestMiddleware()

	h := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		LoggerFrom(r.Context(), zap.NewNop()).Info("inside")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/forfaits", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	entries := logs.FilterMessage("inside").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "abc-123", entries[0].ContextMap()["request_id"])
	}
}

func TestLoggerFromFallback(t *testing.T) {
	fallback := zap.NewNop()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Same(t, fallback, LoggerFrom(req.Context(), fallback))
}

func TestLoggingRecordsStatus(t *testing.T) {
	mw, _, logs := newTestMiddleware()

	h := mw.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/forfaits/9", nil))

	entries := logs.FilterMessage("request").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "DELETE", fields["method"])
		assert.Equal(t, "/api/forfaits/9", fields["path"])
		assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	}
}

func TestRecovery(t *testing.T) {
	mw, _, logs := newTestMiddleware()

	h := mw.Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forfaits", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]string
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "server error", resp["error"])
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestWrapRecoveryLogsRequestID(t *testing.T) {
	mw, _, logs := newTestMiddleware()
	h := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/forfaits/1", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	entries := logs.FilterMessage("Panic recovered").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	mw, m, _ := newTestMiddleware()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/forfaits/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := mw.Metrics(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/forfaits/1", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/forfaits/2", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "GET /api/forfaits/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveRequests))
}

func TestCORS(t *testing.T) {
	mw, _, _ := newTestMiddleware("http://localhost:5173")
	h := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/forfaits/1", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Disallowed origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/forfaits", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
