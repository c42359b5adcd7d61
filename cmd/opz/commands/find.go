package commands

import (
	"github.com/spf13/cobra"
)

func NewFindCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "find QUERY",
		Short: "List items whose title contains QUERY",
		Long: `List items whose title contains QUERY, ignoring case. Each match is
printed as id, vault name and title separated by tabs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.Resolver()
			if err != nil {
				return err
			}

			items, err := r.Find(cmd.Context(), app.Vault(), args[0])
			if err != nil {
				return UserFacing(err)
			}
			for _, it := range items {
				app.printf("%s\t%s\t%s\n", it.ID, it.VaultName(), it.Title)
			}
			return nil
		},
	}
}
