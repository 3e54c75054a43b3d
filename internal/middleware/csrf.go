package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/fitlg/fitlg/internal/ctxkeys"
)

const (
	csrfCookieName = "csrf_token"
	csrfFormField  = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
	csrfTokenLen   = 32
	csrfMaxAge     = 7 * 24 * 60 * 60
)

// CSRFProtection implements the double submit cookie pattern. Every request
// gets a token in its context, unsafe methods must echo the cookie value in
// the csrf_token field or the X-CSRF-Token header.
func CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := csrfToken(w, r)
		r = r.WithContext(ctxkeys.WithCSRFToken(r.Context(), token))

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		submitted := r.Header.Get(csrfHeader)
		if submitted == "" {
			submitted = r.PostFormValue(csrfFormField)
		}
		if submitted == "" || subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
			slog.Warn("csrf validation failed", "method", r.Method, "path", r.URL.Path, "ip", getClientIP(r))
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// csrfToken returns the cookie token, issuing a new cookie when it is missing
// or malformed.
func csrfToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrfCookieName); err == nil && len(c.Value) == base64.RawURLEncoding.EncodedLen(csrfTokenLen) {
		return c.Value
	}

	token := generateCSRFToken()
	cfg := ctxkeys.Config(r.Context())
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   csrfMaxAge,
		HttpOnly: true,
		Secure:   cfg != nil && cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

func generateCSRFToken() string {
	b := make([]byte, csrfTokenLen)
	if _, err := rand.Read(b); err != nil {
		panic("csrf: reading random bytes: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
