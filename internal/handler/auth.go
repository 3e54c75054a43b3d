package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fitlg/fitlg/internal/ctxkeys"
	"github.com/fitlg/fitlg/internal/model"
	"github.com/fitlg/fitlg/internal/service"
	"github.com/fitlg/fitlg/internal/ui"
	"github.com/fitlg/fitlg/internal/validation"
)

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{
		authService: authService,
	}
}

// LoginPage forwards a signed in user to the trainings, keeping the notice
// set by the activation link.
func (h *authHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if ctxkeys.User(r.Context()) != nil {
		if notice := r.URL.Query().Get("notice"); notice != "" {
			redirectNotice(w, r, "/app/trainings/", notice)
			return
		}
		http.Redirect(w, r, "/app/trainings/", http.StatusSeeOther)
		return
	}
	ui.Render(w, r, ui.LoginPage(flashFromQuery(r), ""))
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		ui.Render(w, r, ui.LoginPage(ui.Flash{Error: "Username and password are required"}, username))
		return
	}

	user, err := h.authService.Login(r.Context(), username, password)
	if errors.Is(err, service.ErrUserInactive) {
		ui.Render(w, r, ui.LoginPage(ui.Flash{Error: "Your account is not activated yet. Check your inbox for the activation link."}, username))
		return
	}
	if errors.Is(err, service.ErrInvalidCredentials) {
		ui.Render(w, r, ui.LoginPage(ui.Flash{Error: "Invalid username or password"}, username))
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		ui.Render(w, r, ui.LoginPage(ui.Flash{Error: "An error occurred. Please try again."}, username))
		return
	}

	h.signIn(w, r, user, func() {
		http.Redirect(w, r, "/app/trainings/", http.StatusSeeOther)
	})
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	http.Redirect(w, r, "/users/login/", http.StatusSeeOther)
}

func (h *authHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, ui.RegisterPage(flashFromQuery(r), "", ""))
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	in := service.RegisterInput{
		Username:      strings.TrimSpace(r.FormValue("username")),
		Email:         strings.TrimSpace(r.FormValue("mail")),
		Password:      r.FormValue("password"),
		PasswordCheck: r.FormValue("password_check"),
	}

	_, err := h.authService.Register(r.Context(), in)
	if errors.Is(err, service.ErrEmailAlreadyExists) {
		redirectError(w, r, "/users/login/", "email_taken")
		return
	}
	if err != nil {
		message := registerErrorMessage(err)
		if message == "" {
			slog.Error("registration failed", "error", err)
			message = "An error occurred. Please try again."
		}
		ui.Render(w, r, ui.RegisterPage(ui.Flash{Error: message}, in.Username, in.Email))
		return
	}

	redirectNotice(w, r, "/users/login/", "account_created")
}

// registerErrorMessage returns the message shown for an expected
// registration failure, or "" for an unexpected one.
func registerErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		return "This username is already taken"
	case errors.Is(err, service.ErrInvalidEmail):
		return "Please provide a valid email address"
	case errors.Is(err, validation.ErrPasswordMismatch):
		return "The passwords do not match"
	}
	message, _ := userMessage(err)
	return message
}

// Activate consumes the activation link, signs the user in and sends them to
// the login page, which forwards signed in users to their trainings.
func (h *authHandler) Activate(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Activate(r.Context(), r.PathValue("uid"), r.PathValue("token"))
	if err != nil {
		slog.Warn("account activation failed", "error", err)
		redirectError(w, r, "/users/register/", "invalid_link")
		return
	}

	h.signIn(w, r, user, func() {
		redirectNotice(w, r, "/users/login/", "account_activated")
	})
}

func (h *authHandler) PasswordForgottenPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, ui.PasswordForgottenPage(flashFromQuery(r), ""))
}

func (h *authHandler) PasswordForgotten(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("mail"))

	err := h.authService.SendPasswordReset(r.Context(), email)
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		ui.Render(w, r, ui.PasswordForgottenPage(ui.Flash{Error: "Please provide a valid email address"}, email))
		return
	case errors.Is(err, service.ErrNoAccountForEmail):
		ui.Render(w, r, ui.PasswordForgottenPage(ui.Flash{Error: "There is no account for this email"}, email))
		return
	case err != nil:
		slog.Error("password reset request failed", "error", err)
		ui.Render(w, r, ui.PasswordForgottenPage(ui.Flash{Error: "An error occurred. Please try again."}, email))
		return
	}

	ui.Render(w, r, ui.PasswordForgottenPage(ui.Flash{Notice: "We sent you an email with a link to choose a new password."}, ""))
}

// VerifyPasswordReset consumes the emailed link and opens a short reset session.
func (h *authHandler) VerifyPasswordReset(w http.ResponseWriter, r *http.Request) {
	token, expiry, err := h.authService.VerifyPasswordReset(r.Context(), r.PathValue("uid"), r.PathValue("token"))
	if err != nil {
		slog.Warn("password reset verification failed", "error", err)
		redirectError(w, r, "/users/password-forgotten/", "invalid_link")
		return
	}

	h.authService.SetPasswordResetCookie(w, token, expiry)
	http.Redirect(w, r, service.PasswordResetPath, http.StatusSeeOther)
}

func (h *authHandler) PasswordResetPage(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(service.PasswordResetCookieName); err != nil {
		redirectError(w, r, "/users/password-forgotten/", "reset_session_gone")
		return
	}
	ui.Render(w, r, ui.PasswordResetPage(flashFromQuery(r)))
}

func (h *authHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(service.PasswordResetCookieName)
	if err != nil {
		redirectError(w, r, "/users/password-forgotten/", "reset_session_gone")
		return
	}

	_, err = h.authService.ResetPassword(r.Context(), cookie.Value, r.FormValue("password"), r.FormValue("password_check"))
	switch {
	case errors.Is(err, service.ErrInvalidLink):
		h.authService.ClearPasswordResetCookie(w)
		redirectError(w, r, "/users/password-forgotten/", "reset_session_gone")
		return
	case errors.Is(err, validation.ErrPasswordMismatch):
		ui.Render(w, r, ui.PasswordResetPage(ui.Flash{Error: "The passwords do not match"}))
		return
	case err != nil:
		if message, ok := userMessage(err); ok {
			ui.Render(w, r, ui.PasswordResetPage(ui.Flash{Error: message}))
			return
		}
		slog.Error("password reset failed", "error", err)
		ui.Render(w, r, ui.PasswordResetPage(ui.Flash{Error: "An error occurred. Please try again."}))
		return
	}

	h.authService.ClearPasswordResetCookie(w)
	h.authService.ClearJWTCookie(w)
	redirectNotice(w, r, "/users/login/", "password_reset")
}

func (h *authHandler) signIn(w http.ResponseWriter, r *http.Request, user *model.User, next func()) {
	token, expiry, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		ui.Render(w, r, ui.LoginPage(ui.Flash{Error: "An error occurred. Please try again."}, ""))
		return
	}

	h.authService.SetJWTCookie(w, token, expiry)
	slog.Info("user logged in", "user_id", user.ID)
	next()
}
