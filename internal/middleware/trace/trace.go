// Package trace logs every HTTP request with its chi request ID and keeps
// request counters for the metrics endpoint.
package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	applog "budgetflow/internal/log"
)

// Middleware must run after chi's RequestID middleware.
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *applog.Logger

	totalRequests int64
	serverErrors  int64
	lastDuration  int64 // microseconds
}

type Metrics struct {
	TotalRequests int64
	ServerErrors  int64
	LastDuration  time.Duration
}

// New returns a tracing middleware. logger may be nil to use the default.
func New(logger *applog.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	if extractIP == nil {
		extractIP = func(r *http.Request) string { return r.RemoteAddr }
	}
	return &Middleware{extractIP: extractIP, logger: logger}
}

// Handler attaches a request scoped logger to the context, then logs the
// start and the outcome of the request.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := m.extractIP(r)
		requestID := middleware.GetReqID(r.Context())

		logger := m.logger.With(applog.FieldRequestID, requestID)
		r = r.WithContext(applog.NewContext(r.Context(), logger))
		events := applog.NewStructuredLogger(logger)
		events.LogHTTPStart(r.Context(), r, clientIP)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		atomic.AddInt64(&m.totalRequests, 1)
		atomic.StoreInt64(&m.lastDuration, elapsed.Microseconds())
		if status >= http.StatusInternalServerError {
			atomic.AddInt64(&m.serverErrors, 1)
		}
		events.LogHTTPEnd(r.Context(), r, status, elapsed.Milliseconds(), clientIP)
	})
}

func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests: atomic.LoadInt64(&m.totalRequests),
		ServerErrors:  atomic.LoadInt64(&m.serverErrors),
		LastDuration:  time.Duration(atomic.LoadInt64(&m.lastDuration)) * time.Microsecond,
	}
}
