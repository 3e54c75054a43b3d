package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fitlg/fitlg/internal/app"
	"github.com/fitlg/fitlg/internal/seed"
)

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the superuser, the movement catalog and the benchmark WODs",
		Long: `Seed creates the superuser from SUPERUSER_USERNAME, SUPERUSER_EMAIL and
SUPERUSER_PASSWORD, then loads the movement catalog and the benchmark WODs.
Exercises are created by the superuser, so they are default exercises visible
to every user. Running it again only adds what is missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			seeder := seed.NewSeeder(a.UserService, a.CatalogService, a.ExerciseService, a.Markdown)
			report, err := seeder.Run(cmd.Context(), seed.Superuser{
				Username: c.cfg.SuperuserUsername,
				Email:    c.cfg.SuperuserEmail,
				Password: c.cfg.SuperuserPassword,
			})
			if err != nil {
				color.Red("Seed failed: %v", err)
				return err
			}

			if report.SuperuserCreated {
				color.Green("Created superuser %s", c.cfg.SuperuserUsername)
			}
			fmt.Printf("Movements created: %d\n", report.Movements)
			fmt.Printf("Exercises created: %d (skipped %d)\n", report.Exercises, report.ExercisesSkipped)
			color.Green("Seed completed")
			return nil
		},
	}
}
