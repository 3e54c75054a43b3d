package handler

import (
	"net/http"
	"net/url"

	"github.com/fitlg/fitlg/internal/ui"
)

// Flash messages survive a redirect as ?notice= or ?error= codes.
var notices = map[string]string{
	"training_started":   "Training started. Record your performance once you are done.",
	"training_completed": "Performance saved.",
	"exercise_deleted":   "Exercise deleted.",
	"account_created":    "Account created. Check your inbox to activate it.",
	"account_activated":  "Your account is active. Welcome!",
	"password_reset":     "Your password has been changed. You can log in.",
	"password_changed":   "Your password has been changed.",
}

var errorMessages = map[string]string{
	"empty_exercise":     "The exercise is empty.",
	"invalid_link":       "This link is invalid or has expired.",
	"forbidden":          "You are not allowed to do that.",
	"email_taken":        "An account already uses this email. Log in or reset your password.",
	"reset_session_gone": "Your password reset session has expired. Ask for a new link.",
}

func flashFromQuery(r *http.Request) ui.Flash {
	q := r.URL.Query()
	return ui.Flash{
		Notice: notices[q.Get("notice")],
		Error:  errorMessages[q.Get("error")],
	}
}

func redirectNotice(w http.ResponseWriter, r *http.Request, path, code string) {
	http.Redirect(w, r, withParam(path, "notice", code), http.StatusSeeOther)
}

func redirectError(w http.ResponseWriter, r *http.Request, path, code string) {
	http.Redirect(w, r, withParam(path, "error", code), http.StatusSeeOther)
}

func withParam(path, key, value string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
