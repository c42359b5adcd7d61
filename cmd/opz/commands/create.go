package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/opz/internal/backend"
	"github.com/systmms/opz/internal/dotenv"
	dserrors "github.com/systmms/opz/internal/errors"
)

func NewCreateCommand(app *App) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "create [ITEM] [--from FILE]",
		Short: "Create an item from a dotenv file",
		Long: `Create an "API Credential" item with one text field per entry of a
dotenv file. The title defaults to the org/repo of the git origin remote.

Examples:
  opz create
  opz create my-api --from .env.production --vault Work`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			title := ""
			if len(args) == 1 {
				title = args[0]
			} else {
				slug, err := app.Repo().Slug(ctx)
				if err != nil {
					return dserrors.UserError{
						Message:    "Cannot derive an item title from git",
						Details:    err.Error(),
						Suggestion: "Pass the title explicitly: opz create ITEM",
						Err:        err,
					}
				}
				title = slug
				app.Logger.Debug("Using item title %q from git remote", title)
			}

			pairs, err := dotenv.ParseFile(from, func(key string) {
				app.Logger.Warn("Skipping %q in %s: not a valid environment variable name", key, from)
			})
			if err != nil {
				return UserFacing(err)
			}
			if len(pairs) == 0 {
				return dserrors.UserError{
					Message:    fmt.Sprintf("No valid env entries found in %s", from),
					Suggestion: "Add KEY=value lines or point --from at another file",
				}
			}

			client, err := app.Backend()
			if err != nil {
				return err
			}

			req := backend.CreateRequest{Title: title, Vault: app.Vault()}
			for _, p := range pairs {
				req.Fields = append(req.Fields, backend.CreateField{Label: p.Key, Value: p.Value})
			}
			if err := client.CreateItem(ctx, req); err != nil {
				return UserFacing(err)
			}

			app.Logger.Info("Created item %q with %d fields", title, len(req.Fields))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", ".env", "Dotenv file to read")

	return cmd
}
