package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/envresolve"
	"github.com/systmms/envresolve/internal/config"
	"github.com/systmms/envresolve/internal/execenv"
)

func NewExecCommand(cfg *config.Config) *cobra.Command {
	var (
		flags      envFlags
		envFile    string
		printVars  bool
		workingDir string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "exec [flags] -- <command> [args...]",
		Short: "Run a command with resolved environment variables",
		Long: `Resolve secret references and run a command with the literal values in
its environment. Secrets are injected into the child process only and
never written to disk.

The command must be separated from envresolve's own flags with '--'.

Examples:
  envresolve exec -- npm start
  envresolve exec --prefix APP_ -- python app.py
  envresolve exec --env-file .env.production -- docker compose up`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("no command specified: use envresolve exec -- <command> [args...]")
			}

			if err := setup(cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			opts := append(flags.options(cfg), envresolve.WithExport(false))

			var resolved map[string]string
			var err error
			if paths := envFilePaths(cfg, envFile); len(paths) > 0 {
				resolved, err = loadEnvFiles(ctx, paths, opts)
			} else {
				resolved, err = envresolve.ResolveOSEnviron(ctx, opts...)
			}
			if err != nil {
				return err
			}

			executor := execenv.New(cfg.Logger)
			return executor.Exec(ctx, execenv.Options{
				Command:    args,
				Env:        resolved,
				PrintVars:  printVars,
				WorkingDir: workingDir,
				Timeout:    timeout,
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&envFile, "env-file", "", "Resolve a .env file instead of the process environment (falls back to the config's envFiles)")
	cmd.Flags().BoolVar(&printVars, "print", false, "Print resolved variable names with masked values")
	cmd.Flags().StringVar(&workingDir, "workdir", "", "Working directory for the command")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Kill the command after this duration (e.g. 30s)")

	return cmd
}
