package middleware

import (
	"net/http"

	"github.com/fitlg/fitlg/internal/ctxkeys"
	"github.com/fitlg/fitlg/internal/service"
)

const (
	loginPath   = "/users/login/"
	defaultPath = "/app/trainings/"
)

// AuthMiddleware puts the user of a valid session cookie in the context.
// A bad token, or one naming a deleted or deactivated user, clears the cookie
// and the request continues as a guest.
func AuthMiddleware(authService *service.AuthService, userService *service.UserService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.AuthCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := authService.VerifyJWT(cookie.Value)
			if err == nil {
				user, lookupErr := userService.ByID(r.Context(), userID)
				if lookupErr == nil && user.IsActive {
					user.PasswordHash = ""
					next.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), user)))
					return
				}
			}

			authService.ClearJWTCookie(w)
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth sends guests to the login page.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			redirect(w, r, loginPath)
			return
		}
		next(w, r)
	}
}

// RequireGuest sends signed in users to their trainings.
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) != nil {
			redirect(w, r, defaultPath)
			return
		}
		next(w, r)
	}
}

// redirect answers htmx requests with HX-Redirect so the whole page changes.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
