package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fitlg/fitlg/internal/config"
	"github.com/fitlg/fitlg/internal/logger"
)

// cli holds what every command shares once the root pre-run has loaded it.
type cli struct {
	cfg         *config.Config
	closeLogger func() error
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "fitlg",
		Short: "Workout builder and training log",
		Long: `fitlg serves the workout builder and training log web app.

Configuration comes from the environment or a .env file in the working
directory. APP_ENV, APP_URL and JWT_SECRET are required.

  $ fitlg serve            # Run migrations and start the HTTP server
  $ fitlg migrate status   # Show applied migrations
  $ fitlg seed             # Create the superuser, catalog and benchmark WODs
  $ fitlg movement delete pullups`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg

			log, closeLogger := logger.New(logger.Options{
				IsDev:          c.cfg.IsDevelopment(),
				SentryDSN:      c.cfg.SentryDSN,
				File:           c.cfg.LogFile,
				FileMaxSizeMB:  c.cfg.LogFileMaxSizeMB,
				FileMaxBackups: c.cfg.LogFileMaxBackups,
			})
			slog.SetDefault(log)
			c.closeLogger = closeLogger
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.closeLogger != nil {
				return c.closeLogger()
			}
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newSeedCmd(c),
		newTokensCmd(c),
		newMovementCmd(c),
	)
	return root
}
