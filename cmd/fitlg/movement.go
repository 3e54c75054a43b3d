package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fitlg/fitlg/internal/app"
)

func newMovementCmd(c *cli) *cobra.Command {
	var as string

	del := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a movement from the catalog",
		Long: `Delete removes a movement and every exercise step that uses it. The
account named by --as must be an admin; it defaults to SUPERUSER_USERNAME.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if as == "" {
				as = c.cfg.SuperuserUsername
			}
			actor, err := a.Repositories.Users.ByUsername(cmd.Context(), as)
			if err != nil {
				return fmt.Errorf("find user %q: %w", as, err)
			}
			movement, err := a.CatalogService.MovementByName(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("find movement %q: %w", args[0], err)
			}

			err = a.CatalogService.DeleteMovement(cmd.Context(), actor, movement.ID)
			if err != nil {
				color.Red("Delete failed: %v", err)
				return err
			}
			color.Green("Deleted movement %s", movement.Name)
			return nil
		},
	}
	del.Flags().StringVar(&as, "as", "", "admin account performing the deletion (default SUPERUSER_USERNAME)")

	cmd := &cobra.Command{
		Use:   "movement",
		Short: "Maintain the movement catalog",
	}
	cmd.AddCommand(del)
	return cmd
}
