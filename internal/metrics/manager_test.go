package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRoute(t *testing.T) {
	assert.Equal(t, "unmatched", Route(context.Background()))
	assert.Equal(t, "unmatched", Route(WithRoute(context.Background())))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /app/exercise/{id}/", func(w http.ResponseWriter, r *http.Request) {})

	r := httptest.NewRequest(http.MethodGet, "/app/exercise/42/", nil)
	r = r.WithContext(WithRoute(r.Context()))
	CaptureRoute(mux).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "GET /app/exercise/{id}/", Route(r.Context()))
}

func TestNewManager(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(reg)
	m.CounterExercisesRegistered.Inc()

	assert.Panics(t, func() { NewManager(reg) })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fitlg_exercises_registered_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
