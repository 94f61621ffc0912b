package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/envresolve"
	"github.com/systmms/envresolve/cmd/envresolve/commands"
	"github.com/systmms/envresolve/internal/config"
	"github.com/systmms/envresolve/internal/execenv"
	"github.com/systmms/envresolve/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := run()
	// Wipe any secret material still held in enclaves before exiting.
	memguard.Purge()

	if err != nil {
		var exitErr execenv.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile string
		noColor    bool
		debug      bool
	)

	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "envresolve",
		Short: "Resolve secret references in environment variables",
		Long: `envresolve expands ${VAR} references and resolves secret reference
URIs like akv://my-vault/db-password against cloud secret stores, then
hands the literal values to your shell, your .env file, or your command.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Path = configFile
			cfg.Logger = logging.New(debug, noColor)
			envresolve.EnableMetrics()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: envresolve.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewGetCommand(cfg),
		commands.NewEnvCommand(cfg),
		commands.NewExecCommand(cfg),
		commands.NewRenderCommand(cfg),
		commands.NewProvidersCommand(cfg),
	)

	return rootCmd.Execute()
}
