package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the opz command tree. Without a subcommand opz
// behaves like `opz run`.
func NewRootCommand(app *App, version string) *cobra.Command {
	var runFlags runOptions

	rootCmd := &cobra.Command{
		Use:   "opz [ITEM...] [--env-file FILE] -- COMMAND [ARGS...]",
		Short: "Run commands with secrets from 1Password items",
		Long: `opz resolves 1Password items by title into environment variables,
writes them as op:// references into dotenv files, and runs commands with
the secret values injected. Secret values never touch the disk.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.Setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runItems(cmd, app, runFlags, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.Flags.ConfigPath, "config", "", "Config file path (default $XDG_CONFIG_HOME/opz/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&app.Flags.Vault, "vault", "", "Vault to search (default: all vaults)")
	rootCmd.PersistentFlags().BoolVar(&app.Flags.Debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&app.Flags.NoColor, "no-color", false, "Disable colored output")
	rootCmd.Flags().StringVar(&runFlags.envFile, "env-file", "", "Also write references to this dotenv file")

	rootCmd.AddCommand(
		NewRunCommand(app),
		NewGenCommand(app),
		NewFindCommand(app),
		NewCreateCommand(app),
		NewCacheCommand(app),
	)

	return rootCmd
}
