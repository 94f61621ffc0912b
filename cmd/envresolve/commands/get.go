package commands

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/envresolve"
	"github.com/systmms/envresolve/internal/config"
	"github.com/systmms/envresolve/internal/secure"
)

func NewGetCommand(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get <value>",
		Short: "Resolve a single value",
		Long: `Resolve one value to its literal form and print it to stdout.

The value may be a secret reference URI, a ${VAR} expression, or any mix:
expansion and secret lookup are interleaved until the result is literal.

Examples:
  # Resolve a secret reference
  envresolve get akv://my-vault/db-password

  # Resolve through an environment variable
  envresolve get '${DATABASE_URL}'

  # Use in scripts
  export DB_PASSWORD=$(envresolve get akv://my-vault/db-password)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(cfg); err != nil {
				return err
			}

			resolved, err := envresolve.Resolve(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}

			// Hold the plaintext in protected memory until it is printed.
			value := secure.NewValue(resolved)
			defer value.Destroy()

			return value.With(func(plaintext []byte) error {
				if jsonOutput {
					encoder := json.NewEncoder(os.Stdout)
					encoder.SetIndent("", "  ")
					return encoder.Encode(map[string]string{
						"input": args[0],
						"value": string(plaintext),
					})
				}
				_, err := os.Stdout.Write(plaintext)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
