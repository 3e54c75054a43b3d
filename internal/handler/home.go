package handler

import (
	"net/http"

	"github.com/fitlg/fitlg/internal/ctxkeys"
	"github.com/fitlg/fitlg/internal/ui"
)

type HomeHandler struct{}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// HomePage sends signed in users to their trainings and guests to the login page.
func (h *HomeHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	if ctxkeys.User(r.Context()) != nil {
		http.Redirect(w, r, "/app/trainings/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/users/login/", http.StatusSeeOther)
}

func (h *HomeHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFoundPage())
}
