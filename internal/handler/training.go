package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fitlg/fitlg/internal/ctxkeys"
	"github.com/fitlg/fitlg/internal/repository"
	"github.com/fitlg/fitlg/internal/service"
	"github.com/fitlg/fitlg/internal/ui"
)

type TrainingHandler struct {
	trainingService *service.TrainingService
}

func NewTrainingHandler(trainingService *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{
		trainingService: trainingService,
	}
}

func (h *TrainingHandler) TrainingsPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, flashFromQuery(r))
}

// CompleteTraining records the performance posted from the trainings list
// and renders the list again.
func (h *TrainingHandler) CompleteTraining(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	_, err := h.trainingService.Complete(r.Context(), user, r.FormValue("training_pk"), r.FormValue("performance_value"))
	if err != nil {
		h.render(w, r, ui.Flash{Error: completionErrorMessage(err)})
		return
	}

	h.render(w, r, ui.Flash{Notice: notices["training_completed"]})
}

func completionErrorMessage(err error) string {
	switch {
	case errors.Is(err, repository.ErrTrainingNotFound):
		return "This training does not exist."
	case errors.Is(err, repository.ErrTrainingAlreadyDone):
		return "This training is already completed."
	}
	if message, ok := userMessage(err); ok {
		return message
	}
	slog.Error("failed to complete training", "error", err)
	return "An error occurred. Please try again."
}

func (h *TrainingHandler) render(w http.ResponseWriter, r *http.Request, flash ui.Flash) {
	user := ctxkeys.User(r.Context())

	list, err := h.trainingService.List(r.Context(), user)
	if err != nil {
		slog.Error("failed to list trainings", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, ui.TrainingsPage(flash, list))
}
