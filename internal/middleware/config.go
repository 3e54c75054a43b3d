package middleware

import (
	"net/http"

	"github.com/fitlg/fitlg/internal/config"
	"github.com/fitlg/fitlg/internal/ctxkeys"
)

// Config exposes cfg.Sanitized to handlers and pages. The copy is made once,
// not per request.
func Config(cfg *config.Config) Middleware {
	public := cfg.Sanitized()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ctxkeys.WithConfig(r.Context(), public)))
		})
	}
}
