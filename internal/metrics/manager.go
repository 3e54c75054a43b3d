package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fitlg"

type Manager struct {
	registry *prometheus.Registry

	// counters
	CounterRequests            *prometheus.CounterVec
	CounterPanics              prometheus.Counter
	CounterTrainingsCompleted  *prometheus.CounterVec
	CounterExercisesRegistered prometheus.Counter

	// histograms
	HistRequestDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager(prometheus.NewRegistry())
}

// NewManager registers the application collectors on reg. Process and Go
// runtime collectors are added unless reg already carries them.
func NewManager(reg *prometheus.Registry) *Manager {
	factory := promauto.With(reg)

	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Manager{
		registry: reg,
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "The total number of handled requests",
		}, []string{"method", "route", "status"}),
		CounterPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_total",
			Help:      "The total number of recovered handler panics",
		}),
		CounterTrainingsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trainings_completed_total",
			Help:      "The total number of completed trainings",
		}, []string{"performance_type"}),
		CounterExercisesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exercises_registered_total",
			Help:      "The total number of registered exercises",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

type routeKey struct{}

type route struct {
	pattern string
}

// WithRoute prepares ctx to receive the matched mux pattern of the request.
func WithRoute(ctx context.Context) context.Context {
	return context.WithValue(ctx, routeKey{}, &route{})
}

// Route returns the pattern recorded by CaptureRoute, or "unmatched".
func Route(ctx context.Context) string {
	if r, ok := ctx.Value(routeKey{}).(*route); ok && r.pattern != "" {
		return r.pattern
	}
	return "unmatched"
}

// CaptureRoute wraps the mux and records the pattern it matched.
// Request labels use the pattern so ids in paths do not explode cardinality.
func CaptureRoute(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if rt, ok := r.Context().Value(routeKey{}).(*route); ok {
			rt.pattern = r.Pattern
		}
	})
}
