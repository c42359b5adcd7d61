package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/opz/internal/dotenv"
	"github.com/systmms/opz/internal/execenv"
)

const runUsage = "opz run ITEM... [--env-file FILE] -- COMMAND [ARGS...]"

type runOptions struct {
	envFile       string
	printVars     bool
	allowOverride bool
}

func NewRunCommand(app *App) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run ITEM... [--env-file FILE] -- COMMAND [ARGS...]",
		Short: "Run a command with secrets from one or more items",
		Long: `Run a command with the fields of one or more items as environment
variables. When several items define the same variable the later item wins.

$VAR and ${VAR} in the command arguments are replaced with resolved values.
Other references, such as $HOME, are passed through untouched.

Examples:
  opz run my-api -- ./server
  opz run base prod-overrides --env-file .env -- npm start
  opz run my-api -- curl -H 'Authorization: Bearer $API_TOKEN' https://api.example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItems(cmd, app, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Also write references to this dotenv file")
	cmd.Flags().BoolVar(&opts.printVars, "print", false, "Print resolved variables (values masked)")
	cmd.Flags().BoolVar(&opts.allowOverride, "allow-override", false, "Let variables already in the environment win over item values")

	return cmd
}

// runItems is shared by `opz run` and the bare `opz ITEM -- CMD` form.
func runItems(cmd *cobra.Command, app *App, opts runOptions, args []string) error {
	items, command := splitAtDash(cmd, args)
	if len(items) == 0 {
		return usageError("Item title required", runUsage)
	}
	if len(command) == 0 {
		return usageError("Command required after '--'", runUsage)
	}

	p, err := app.Pipeline()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	lines, err := p.Lines(ctx, app.Vault(), items, false)
	if err != nil {
		return UserFacing(err)
	}

	if opts.envFile != "" {
		if err := dotenv.WriteFile(opts.envFile, lines); err != nil {
			return err
		}
		app.Logger.Info("Generated: %s", opts.envFile)
	}

	values, err := p.Values(ctx, lines)
	if err != nil {
		return UserFacing(err)
	}
	defer values.Destroy()

	status, err := app.Launcher().Exec(ctx, execenv.Options{
		Command:       command,
		Values:        values,
		AllowOverride: opts.allowOverride,
		PrintVars:     opts.printVars,
	})
	if err != nil {
		return UserFacing(err)
	}
	app.ExitStatus = int(status)
	return nil
}

// splitAtDash separates positional arguments from the command after "--".
func splitAtDash(cmd *cobra.Command, args []string) (before, after []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}
