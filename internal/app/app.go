package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/fitlg/fitlg/internal/config"
	"github.com/fitlg/fitlg/internal/db"
	"github.com/fitlg/fitlg/internal/markdown"
	"github.com/fitlg/fitlg/internal/metrics"
	"github.com/fitlg/fitlg/internal/middleware"
	"github.com/fitlg/fitlg/internal/repository"
	"github.com/fitlg/fitlg/internal/service"
)

// Auth POSTs allowed per client IP and window.
const (
	authRateLimit  = 5
	authRateWindow = 15 * time.Minute
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Metrics         *metrics.Manager
	Markdown        *markdown.Parser
	RateLimiter     *middleware.RateLimiter
	Repositories    Repositories
	AuthService     *service.AuthService
	UserService     *service.UserService
	EmailService    *service.EmailService
	CatalogService  *service.CatalogService
	ExerciseService *service.ExerciseService
	TrainingService *service.TrainingService
}

type Repositories struct {
	Users     repository.UserRepository
	Tokens    repository.TokenRepository
	Equipment repository.EquipmentRepository
	Settings  repository.SettingRepository
	Movements repository.MovementRepository
	Exercises repository.ExerciseRepository
	Trainings repository.TrainingRepository
}

// New connects and migrates the database, then wires every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return FromDB(cfg, database, metrics.NewManager(prometheus.NewRegistry())), nil
}

// FromDB wires the app on an already migrated database.
func FromDB(cfg *config.Config, database *sqlx.DB, m *metrics.Manager) *App {
	// Repositories
	repos := Repositories{
		Users:     repository.NewUserRepository(database),
		Tokens:    repository.NewTokenRepository(database),
		Equipment: repository.NewEquipmentRepository(database),
		Settings:  repository.NewSettingRepository(database),
		Movements: repository.NewMovementRepository(database),
		Exercises: repository.NewExerciseRepository(database),
		Trainings: repository.NewTrainingRepository(database),
	}

	cacheSize := cfg.CatalogCacheSizeMB * 1024 * 1024
	if cacheSize <= 0 {
		cacheSize = 512 * 1024
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(repos.Users, repos.Tokens, emailService, service.AuthOptions{
		Secret:          cfg.JWTSecret,
		SecureCookies:   cfg.IsProduction(),
		SessionTTL:      cfg.JWTExpiry,
		ResetSessionTTL: cfg.PasswordResetSessionExpiry,
		ActivationTTL:   cfg.TokenAccountActivateExpiry,
		ResetLinkTTL:    cfg.TokenPasswordResetExpiry,
	})
	userService := service.NewUserService(repos.Users, emailService)
	catalogService := service.NewCatalogService(
		repos.Equipment,
		repos.Settings,
		repos.Movements,
		cacheSize,
		cfg.CatalogCacheTTL,
	)
	exerciseService := service.NewExerciseService(repos.Exercises, repos.Movements, repos.Settings, repos.Trainings, m)
	trainingService := service.NewTrainingService(repos.Trainings, repos.Exercises, exerciseService, m)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Metrics:         m,
		Markdown:        markdown.NewParser(),
		RateLimiter:     middleware.NewRateLimiter(authRateLimit, authRateWindow),
		Repositories:    repos,
		AuthService:     authService,
		UserService:     userService,
		EmailService:    emailService,
		CatalogService:  catalogService,
		ExerciseService: exerciseService,
		TrainingService: trainingService,
	}
}

// Close stops the rate limiter and closes the database.
func (a *App) Close() error {
	var err error
	if a.RateLimiter != nil {
		err = multierr.Append(err, a.RateLimiter.Stop())
	}
	return multierr.Append(err, db.Close(a.DB))
}
