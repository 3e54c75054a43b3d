package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fitlg/fitlg/internal/metrics"
)

// RequestMetrics counts requests per method, matched route and status and
// observes their duration. The mux must be wrapped with metrics.CaptureRoute.
func RequestMetrics(m *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func(begin time.Time) {
				m.HistRequestDuration.Observe(time.Since(begin).Seconds())
			}(time.Now())

			r = r.WithContext(metrics.WithRoute(r.Context()))
			sr := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(sr, r)

			m.CounterRequests.With(prometheus.Labels{
				"method": r.Method,
				"route":  metrics.Route(r.Context()),
				"status": strconv.Itoa(sr.Status()),
			}).Inc()
		})
	}
}

// Recovery turns a handler panic into a 500 response.
func Recovery(m *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					slog.Error("panic serving request", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
					m.CounterPanics.Inc()
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
