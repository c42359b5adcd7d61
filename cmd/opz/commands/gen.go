package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/opz/internal/dotenv"
)

func NewGenCommand(app *App) *cobra.Command {
	var (
		envFile string
		values  bool
	)

	cmd := &cobra.Command{
		Use:   "gen ITEM... [--env-file FILE]",
		Short: "Generate dotenv lines without running a command",
		Long: `Generate one KEY=op://vault/item/KEY line per field of the given items.

Without --env-file the lines go to stdout. With it, the file is updated in
place: lines for keys opz manages are replaced, every other line is kept,
and new keys are appended.

--values writes the secret values themselves instead of references. Only
use it for files that never leave your machine.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Pipeline()
			if err != nil {
				return err
			}

			lines, err := p.Lines(cmd.Context(), app.Vault(), args, values)
			if err != nil {
				return UserFacing(err)
			}

			if envFile == "" {
				for _, l := range dotenv.Lines(lines) {
					app.printf("%s\n", l)
				}
				return nil
			}

			if err := dotenv.WriteFile(envFile, lines); err != nil {
				return err
			}
			app.Logger.Info("Generated: %s", envFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Dotenv file to create or update")
	cmd.Flags().BoolVar(&values, "values", false, "Write secret values instead of references")

	return cmd
}
