package handler

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/fitlg/fitlg/internal/db"
)

type HealthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(database *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: database}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	err := db.Ping(r.Context(), h.db)
	if err != nil {
		slog.Error("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable\n"))
		return
	}

	_, _ = w.Write([]byte("ok\n"))
}
