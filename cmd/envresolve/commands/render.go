package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/envresolve"
	"github.com/systmms/envresolve/internal/config"
	"github.com/systmms/envresolve/internal/dotenv"
	"github.com/systmms/envresolve/internal/secure"
)

func NewRenderCommand(cfg *config.Config) *cobra.Command {
	var (
		flags   envFlags
		envFile string
		out     string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "render [--env-file <path>] --out <path>",
		Short: "Resolve a .env file and write the literal result",
		Long: `Read a .env file, resolve every secret reference in it, and write the
resolved variables to a new file. Without --env-file the configuration's
envFiles list is rendered instead. The output file is created with mode
0600 since it holds plaintext secrets.

Examples:
  envresolve render --env-file .env.template --out .env
  envresolve render --env-file .env.template --out secrets.json --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(cfg); err != nil {
				return err
			}

			paths := envFilePaths(cfg, envFile)
			if len(paths) == 0 {
				return fmt.Errorf("no .env file to render: pass --env-file or list envFiles in the configuration")
			}

			opts := append(flags.options(cfg), envresolve.WithExport(false))
			resolved, err := loadEnvFiles(cmd.Context(), paths, opts)
			if err != nil {
				return err
			}

			content, err := dotenv.Render(resolved, format)
			if err != nil {
				return err
			}

			writeErr := func() error {
				if content == "" {
					return dotenv.WriteBytes(out, nil)
				}
				// Hold the rendered plaintext in an enclave until the
				// moment it is written out.
				value := secure.NewValue(content)
				defer value.Destroy()
				return value.With(func(plaintext []byte) error {
					return dotenv.WriteBytes(out, plaintext)
				})
			}()
			if writeErr != nil {
				return fmt.Errorf("failed to write %s: %w", out, writeErr)
			}

			cfg.Logger.Info("Rendered %d variables to %s", len(resolved), out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&envFile, "env-file", "", "Input .env file (falls back to the config's envFiles)")
	cmd.Flags().StringVar(&out, "out", "", "Output file path (required)")
	cmd.Flags().StringVar(&format, "format", dotenv.FormatDotenv, "Output format: dotenv, export, or json")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
