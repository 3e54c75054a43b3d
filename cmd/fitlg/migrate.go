package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/fitlg/fitlg/internal/db"
)

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withDB(func(database *sqlx.DB) error {
					err := db.RunMigrations(cmd.Context(), database.DB, c.cfg.DBDriver)
					if err != nil {
						return err
					}
					color.Green("Database is up to date")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withDB(func(database *sqlx.DB) error {
					err := db.MigrateDown(cmd.Context(), database.DB, c.cfg.DBDriver)
					if err != nil {
						return err
					}
					color.Yellow("Rolled back one migration")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withDB(func(database *sqlx.DB) error {
					states, err := db.MigrationStatus(cmd.Context(), database.DB, c.cfg.DBDriver)
					if err != nil {
						return err
					}
					for _, s := range states {
						if s.Applied {
							fmt.Printf("%s %05d %s\n", color.GreenString("applied"), s.Version, s.Path)
						} else {
							fmt.Printf("%s %05d %s\n", color.YellowString("pending"), s.Version, s.Path)
						}
					}
					return nil
				})
			},
		},
	)
	return cmd
}

// withDB opens the configured database without migrating it.
func (c *cli) withDB(fn func(*sqlx.DB) error) error {
	database, err := db.Init(c.cfg.DBDriver, c.cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close(database)

	return fn(database)
}
