package main

import (
	"context"
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/systmms/opz/cmd/opz/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	status, err := run()
	memguard.Purge()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(status)
}

func run() (int, error) {
	app := commands.NewApp()
	defer app.Close()

	rootCmd := commands.NewRootCommand(app, fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date))
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return 1, err
	}
	return app.ExitStatus, nil
}
