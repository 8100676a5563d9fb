// Package middleware holds the HTTP middleware wrapped around the router:
// panic recovery, request IDs, request logging, CORS and Prometheus metrics.
package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/ChadVezina/TP3-Prog-Web-Avance/app/render"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/metrics"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

type contextKey int

const loggerKey contextKey = iota

// LoggerFrom returns the request scoped logger, or fallback when the
// request did not go through RequestID.
func LoggerFrom(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return fallback
}

type Middleware struct {
	log     *zap.Logger
	metrics *metrics.Metrics
	cors    *cors.Cors
}

// New builds the middleware set. allowedOrigins follows rs/cors semantics:
// "*" allows any origin.
func New(log *zap.Logger, m *metrics.Metrics, allowedOrigins []string) *Middleware {
	return &Middleware{
		log:     log,
		metrics: m,
		cors: cors.New(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
		}),
	}
}

// Wrap applies the whole chain, outermost first. RequestID runs before
// everything else so recovery and request logs carry the request ID.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return m.RequestID(m.Recovery(m.Logging(m.cors.Handler(m.Metrics(next)))))
}

// RequestID tags the request with an ID, taken from X-Request-ID when the
// caller sent one, and stores a logger carrying it in the context. Handlers
// reach it through LoggerFrom.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), loggerKey, m.log.With(zap.String("request_id", requestID)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logging logs one line per request once it has been served.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrap(w)

		next.ServeHTTP(rw, r)

		LoggerFrom(r.Context(), m.log).Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.statusCode),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)))
	})
}

// Recovery turns a handler panic into a 500 response.
func (m *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				LoggerFrom(r.Context(), m.log).Error("Panic recovered",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", p),
					zap.String("stack", string(debug.Stack())))
				render.Error(w, http.StatusInternalServerError, "server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Metrics records request counts and latency labelled by the matched
// route pattern, so that path parameters do not blow up cardinality.
func (m *Middleware) Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.metrics.IncrementActiveRequests()
		defer m.metrics.DecrementActiveRequests()

		rw := wrap(w)
		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.metrics.RecordHTTPRequest(r.Method, route, rw.statusCode)
		m.metrics.RecordHTTPDuration(r.Method, route, time.Since(start))
	})
}

// responseWriter captures the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func wrap(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
