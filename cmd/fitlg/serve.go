package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fitlg/fitlg/internal/app"
	"github.com/fitlg/fitlg/internal/routes"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, c.cfg)
			if err != nil {
				slog.Error("failed to initialize app", "error", err)
				return err
			}
			defer func() {
				closeErr := a.Close()
				if closeErr != nil {
					slog.Error("failed to close app", "error", closeErr)
				}
			}()

			srv := &http.Server{
				Addr:              ":" + c.cfg.Port,
				Handler:           routes.SetupRoutes(a),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				slog.Info("server starting", "port", c.cfg.Port, "env", c.cfg.AppEnv, "url", "http://localhost:"+c.cfg.Port)
				errc <- srv.ListenAndServe()
			}()
			color.Green("fitlg listening on :%s", c.cfg.Port)

			select {
			case err = <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					slog.Error("server failed", "error", err)
					return err
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			err = srv.Shutdown(shutdownCtx)
			if err != nil {
				slog.Error("graceful shutdown failed", "error", err)
				return err
			}
			color.Yellow("fitlg stopped")
			return nil
		},
	}
}
