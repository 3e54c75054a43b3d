package routes

import (
	"io/fs"
	"net/http"

	"github.com/fitlg/fitlg/assets"
	"github.com/fitlg/fitlg/internal/app"
	"github.com/fitlg/fitlg/internal/handler"
	"github.com/fitlg/fitlg/internal/metrics"
	"github.com/fitlg/fitlg/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler()
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService)
	profile := handler.NewProfileHandler(app.UserService)
	exercise := handler.NewExerciseHandler(app.ExerciseService, app.TrainingService, app.CatalogService, app.Markdown)
	training := handler.NewTrainingHandler(app.TrainingService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Static files
	sub, _ := fs.Sub(assets.AssetsFS, ".")
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(sub))))

	// Operations
	mux.HandleFunc("GET /healthz", health.Healthz)
	if app.Cfg.MetricsEnabled {
		mux.Handle("GET /metrics", app.Metrics.Handler())
	}

	// Home
	mux.HandleFunc("GET /{$}", home.HomePage)

	// Auth - Authentication flow (rate limited)
	rateLimiter := middleware.RateLimitAuth(app.RateLimiter)

	// Auth Pages
	mux.HandleFunc("GET /users/login/", auth.LoginPage)
	mux.HandleFunc("GET /users/register/", middleware.RequireGuest(auth.RegisterPage))
	mux.HandleFunc("GET /users/password-forgotten/", middleware.RequireGuest(auth.PasswordForgottenPage))
	mux.HandleFunc("GET /users/password-reset/", auth.PasswordResetPage)

	// Token Verifications
	mux.HandleFunc("GET /users/activate/{uid}/{token}/", auth.Activate)
	mux.HandleFunc("GET /users/password-reset-activate/{uid}/{token}/", auth.VerifyPasswordReset)

	// Auth Actions
	mux.HandleFunc("POST /users/login/", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /users/register/", rateLimiter(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("POST /users/password-forgotten/", rateLimiter(middleware.RequireGuest(auth.PasswordForgotten)))
	mux.HandleFunc("POST /users/password-reset/", auth.PasswordReset)
	mux.HandleFunc("GET /users/logout/", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/app/*)
	// ============================================================================

	// Exercises
	mux.HandleFunc("GET /app/get-all-movements/", middleware.RequireAuth(exercise.AllMovements))
	mux.HandleFunc("GET /app/exercices/", middleware.RequireAuth(exercise.ExercisesPage))
	mux.HandleFunc("POST /app/add-exercise/", middleware.RequireAuth(exercise.AddExercise))
	mux.HandleFunc("GET /app/exercise/{id}/", middleware.RequireAuth(exercise.ExercisePage))
	mux.HandleFunc("POST /app/exercise/{id}/", middleware.RequireAuth(exercise.StartTraining))
	mux.HandleFunc("POST /app/exercise/{id}/movements/", middleware.RequireAuth(exercise.AddMovement))
	mux.HandleFunc("GET /app/delete-exercise/{id}/", middleware.RequireAuth(exercise.DeleteExercise))

	// Trainings
	mux.HandleFunc("GET /app/trainings/", middleware.RequireAuth(training.TrainingsPage))
	mux.HandleFunc("POST /app/trainings/", middleware.RequireAuth(training.CompleteTraining))

	// Profile
	mux.HandleFunc("GET /app/profile/", middleware.RequireAuth(profile.ProfilePage))
	mux.HandleFunc("POST /app/profile/", middleware.RequireAuth(profile.ChangePassword))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		metrics.CaptureRoute(mux),              // Records the matched pattern for the route label
		middleware.RequestMetrics(app.Metrics), // Outermost: counts every response, recovered panics included
		middleware.Recovery(app.Metrics),
		middleware.Config(app.Cfg), // Config before SecurityHeaders (HSTS needs AppEnv)
		middleware.NonceMiddleware, // CSP nonce, must run before SecurityHeaders
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection, // Forms send the field, the exercise builder the header
		middleware.AuthMiddleware(app.AuthService, app.UserService),
		middleware.WithURLPath,
	)

	return handler
}
