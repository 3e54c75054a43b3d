package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/fitlg/fitlg/internal/ctxkeys"
	"github.com/fitlg/fitlg/internal/markdown"
	"github.com/fitlg/fitlg/internal/repository"
	"github.com/fitlg/fitlg/internal/service"
	"github.com/fitlg/fitlg/internal/ui"
)

const maxExerciseBodySize = 1 << 20

type ExerciseHandler struct {
	exerciseService *service.ExerciseService
	trainingService *service.TrainingService
	catalogService  *service.CatalogService
	markdown        *markdown.Parser
}

func NewExerciseHandler(
	exerciseService *service.ExerciseService,
	trainingService *service.TrainingService,
	catalogService *service.CatalogService,
	markdown *markdown.Parser,
) *ExerciseHandler {
	return &ExerciseHandler{
		exerciseService: exerciseService,
		trainingService: trainingService,
		catalogService:  catalogService,
		markdown:        markdown,
	}
}

// AllMovements serves the movement catalog used by the exercise builder.
func (h *ExerciseHandler) AllMovements(w http.ResponseWriter, r *http.Request) {
	data, err := h.catalogService.AllMovementsJSON(r.Context())
	if err != nil {
		slog.Error("failed to list movements", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (h *ExerciseHandler) ExercisesPage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	list, err := h.exerciseService.List(r.Context(), user)
	if err != nil {
		slog.Error("failed to list exercises", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, ui.ExercisesPage(flashFromQuery(r), user, list))
}

// AddExercise registers the exercise posted by the builder and answers with its id.
func (h *ExerciseHandler) AddExercise(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxExerciseBodySize))
	if err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "Exercise is too large")
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		redirectError(w, r, "/app/exercices/", "empty_exercise")
		return
	}

	in, err := service.DecodeExerciseInput(body)
	if err == nil {
		exercise, registerErr := h.exerciseService.Register(r.Context(), user, in)
		if registerErr == nil {
			writeJSON(w, http.StatusOK, exercise.ID)
			return
		}
		err = registerErr
	}

	if message, ok := userMessage(err); ok {
		writeJSONError(w, http.StatusBadRequest, message)
		return
	}
	slog.Error("failed to register exercise", "error", err, "user_id", user.ID)
	writeJSONError(w, http.StatusInternalServerError, "Internal server error")
}

func (h *ExerciseHandler) ExercisePage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	view, err := h.exerciseService.View(r.Context(), user, r.PathValue("id"))
	if errors.Is(err, repository.ErrExerciseNotFound) {
		ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFoundPage())
		return
	}
	if err != nil {
		slog.Error("failed to load exercise", "error", err, "exercise_id", r.PathValue("id"))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	description, err := h.markdown.Render(view.Description)
	if err != nil {
		slog.Warn("failed to render description", "error", err, "exercise_id", view.ID)
		description = ""
	}

	ui.Render(w, r, ui.ExercisePage(flashFromQuery(r), user, view, description))
}

// AddMovement appends the posted movement to an exercise and answers with its position.
func (h *ExerciseHandler) AddMovement(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.MovementInput
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExerciseBodySize)).Decode(&in)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid movement")
		return
	}

	number, err := h.exerciseService.AddMovement(r.Context(), user, r.PathValue("id"), in)
	if errors.Is(err, repository.ErrExerciseNotFound) {
		writeJSONError(w, http.StatusNotFound, "Exercise not found")
		return
	}
	if errors.Is(err, service.ErrForbidden) {
		writeJSONError(w, http.StatusForbidden, "Forbidden")
		return
	}
	if message, ok := userMessage(err); ok {
		writeJSONError(w, http.StatusBadRequest, message)
		return
	}
	if err != nil {
		slog.Error("failed to append movement", "error", err, "exercise_id", r.PathValue("id"))
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, number)
}

// StartTraining opens a training of the exercise.
func (h *ExerciseHandler) StartTraining(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	_, err := h.trainingService.Start(r.Context(), user, r.PathValue("id"))
	if errors.Is(err, repository.ErrExerciseNotFound) {
		ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFoundPage())
		return
	}
	if err != nil {
		slog.Error("failed to start training", "error", err, "exercise_id", r.PathValue("id"))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	redirectNotice(w, r, "/app/trainings/", "training_started")
}

func (h *ExerciseHandler) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	back := backPath(r, "/app/exercices/")

	err := h.exerciseService.Delete(r.Context(), user, r.PathValue("id"))
	switch {
	case errors.Is(err, repository.ErrExerciseNotFound):
		ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFoundPage())
	case errors.Is(err, service.ErrForbidden):
		redirectError(w, r, back, "forbidden")
	case err != nil:
		slog.Error("failed to delete exercise", "error", err, "exercise_id", r.PathValue("id"))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	default:
		redirectNotice(w, r, back, "exercise_deleted")
	}
}

// backPath returns the local path of the Referer, or fallback when the
// referer is missing, foreign or points at an exercise page.
func backPath(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return fallback
	}
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") || strings.HasPrefix(ref.Path, "/app/exercise/") {
		return fallback
	}
	return ref.Path
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
