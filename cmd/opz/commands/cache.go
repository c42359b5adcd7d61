package commands

import (
	"github.com/spf13/cobra"
)

func NewCacheCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the item list cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all cached item lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Cache()
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return err
			}
			app.Logger.Info("Cache cleared")
			return nil
		},
	})

	return cmd
}
