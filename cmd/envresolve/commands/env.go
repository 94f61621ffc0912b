package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/envresolve"
	"github.com/systmms/envresolve/internal/config"
	"github.com/systmms/envresolve/internal/dotenv"
)

// envFlags are the batch resolution flags shared by env, exec, and
// render. Flag values override the corresponding configuration entries.
type envFlags struct {
	keys                 []string
	prefix               string
	ignoreKeys           []string
	ignorePatterns       []string
	skipExpansionErrors  bool
	skipResolutionErrors bool
}

func (f *envFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.keys, "key", nil, "Resolve only these keys (repeatable)")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Resolve only keys with this prefix and strip it")
	cmd.Flags().StringSliceVar(&f.ignoreKeys, "ignore", nil, "Keys to pass through unresolved (repeatable)")
	cmd.Flags().StringSliceVar(&f.ignorePatterns, "ignore-pattern", nil, "Glob patterns for keys to pass through (repeatable)")
	cmd.Flags().BoolVar(&f.skipExpansionErrors, "skip-expansion-errors", false, "Drop keys with unresolvable variables instead of failing")
	cmd.Flags().BoolVar(&f.skipResolutionErrors, "skip-resolution-errors", false, "Drop keys whose secrets cannot be fetched instead of failing")
}

// options layers the flag values over the configuration file's options.
func (f *envFlags) options(cfg *config.Config) []envresolve.Option {
	opts := cfg.Options()
	if len(f.keys) > 0 {
		opts = append(opts, envresolve.WithKeys(f.keys...))
	}
	if f.prefix != "" {
		opts = append(opts, envresolve.WithPrefix(f.prefix))
	}
	if len(f.ignoreKeys) > 0 {
		opts = append(opts, envresolve.WithIgnoreKeys(f.ignoreKeys...))
	}
	if len(f.ignorePatterns) > 0 {
		opts = append(opts, envresolve.WithIgnorePatterns(f.ignorePatterns...))
	}
	if f.skipExpansionErrors {
		opts = append(opts, envresolve.StopOnExpansionError(false))
	}
	if f.skipResolutionErrors {
		opts = append(opts, envresolve.StopOnResolutionError(false))
	}
	return opts
}

func NewEnvCommand(cfg *config.Config) *cobra.Command {
	var (
		flags  envFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Resolve the process environment",
		Long: `Resolve secret references in the current environment and print the
resolved variables. The process environment itself is not modified; pipe
the output into eval or a file to use it.

Examples:
  # Resolve everything and print dotenv lines
  envresolve env

  # Resolve APP_-prefixed variables into shell exports
  eval "$(envresolve env --prefix APP_ --format export)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(cfg); err != nil {
				return err
			}

			opts := append(flags.options(cfg), envresolve.WithExport(false))
			resolved, err := envresolve.ResolveOSEnviron(cmd.Context(), opts...)
			if err != nil {
				return err
			}

			content, err := dotenv.Render(resolved, format)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(os.Stdout, content)
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", dotenv.FormatDotenv, "Output format: dotenv, export, or json")

	return cmd
}
