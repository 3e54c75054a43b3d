package main

import (
	"time"

	"github.com/fatih/color"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/fitlg/fitlg/internal/repository"
)

func newTokensCmd(c *cli) *cobra.Command {
	var olderThan time.Duration

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete used and expired activation and password reset tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(func(database *sqlx.DB) error {
				deleted, err := repository.NewTokenRepository(database).Purge(cmd.Context(), olderThan)
				if err != nil {
					return err
				}
				color.Green("Deleted %d tokens", deleted)
				return nil
			})
		},
	}
	purge.Flags().DurationVar(&olderThan, "older-than", 0, "keep tokens used or expired more recently than this")

	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Maintain one-time tokens",
	}
	cmd.AddCommand(purge)
	return cmd
}
