package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/envresolve"
	"github.com/systmms/envresolve/internal/config"
	"github.com/systmms/envresolve/pkg/secretref"
)

var schemeDescriptions = map[string]string{
	secretref.SchemeAzureKeyVault:     "Azure Key Vault (vault segment names the Key Vault)",
	secretref.SchemeAWSSecretsManager: "AWS Secrets Manager (vault segment names the region)",
	secretref.SchemeAWSParameterStore: "AWS SSM Parameter Store (vault segment names the region)",
	secretref.SchemeGCPSecretManager:  "Google Cloud Secret Manager (vault segment names the project)",
	secretref.SchemeKeyring:           "OS keyring (vault segment names the service entry)",
}

func NewProvidersCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List supported secret reference schemes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(cfg); err != nil {
				return err
			}

			registered := make(map[string]bool)
			for _, scheme := range envresolve.Default().Schemes() {
				registered[scheme] = true
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCHEME\tSTATUS\tDESCRIPTION")
			for _, scheme := range secretref.Schemes() {
				status := "disabled"
				if registered[scheme] {
					status = "registered"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", scheme, status, schemeDescriptions[scheme])
			}
			return w.Flush()
		},
	}
	return cmd
}
