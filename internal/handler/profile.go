package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fitlg/fitlg/internal/ctxkeys"
	"github.com/fitlg/fitlg/internal/service"
	"github.com/fitlg/fitlg/internal/ui"
	"github.com/fitlg/fitlg/internal/validation"
)

type ProfileHandler struct {
	userService *service.UserService
}

func NewProfileHandler(userService *service.UserService) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
	}
}

func (h *ProfileHandler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	ui.Render(w, r, ui.ProfilePage(flashFromQuery(r), user.Username, user.Email))
}

func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.userService.ChangePassword(r.Context(), user.ID,
		r.FormValue("old_password"),
		r.FormValue("new_password1"),
		r.FormValue("new_password2"),
	)

	var flash ui.Flash
	switch {
	case err == nil:
		flash.Notice = notices["password_changed"]
	case errors.Is(err, service.ErrInvalidCurrentPassword):
		flash.Error = "The current password is incorrect"
	case errors.Is(err, validation.ErrPasswordMismatch):
		flash.Error = "The new passwords do not match"
	default:
		message, ok := userMessage(err)
		if !ok {
			slog.Error("password change failed", "error", err, "user_id", user.ID)
			message = "An error occurred. Please try again."
		}
		flash.Error = message
	}

	ui.Render(w, r, ui.ProfilePage(flash, user.Username, user.Email))
}
