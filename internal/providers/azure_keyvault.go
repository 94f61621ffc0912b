// Package providers contains the secret store backends that satisfy the
// provider.Provider capability. Each backend hides its SDK client behind a
// narrow interface so tests can inject fakes without network access.
package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	"github.com/systmms/envresolve/internal/logging"
	"github.com/systmms/envresolve/pkg/provider"
	"github.com/systmms/envresolve/pkg/secretref"
)

// AzureSecretsClientAPI is the subset of the azsecrets client the provider
// uses. It exists so tests can mock Key Vault access.
type AzureSecretsClientAPI interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// AzureClientFactory builds a secrets client for a vault URL.
type AzureClientFactory func(vaultURL string) (AzureSecretsClientAPI, error)

// AzureKeyVaultProvider resolves akv:// references. The vault segment of
// the reference names the Key Vault; clients are created per vault on
// first use and cached for the lifetime of the provider.
type AzureKeyVaultProvider struct {
	mu        sync.Mutex
	clients   map[string]AzureSecretsClientAPI
	newClient AzureClientFactory
	logger    *logging.Logger
}

// AzureKeyVaultOption configures the Azure Key Vault provider.
type AzureKeyVaultOption func(*AzureKeyVaultProvider)

// WithAzureClientFactory replaces the client factory, primarily for tests.
func WithAzureClientFactory(factory AzureClientFactory) AzureKeyVaultOption {
	return func(p *AzureKeyVaultProvider) {
		p.newClient = factory
	}
}

// WithAzureLogger sets the provider's logger.
func WithAzureLogger(logger *logging.Logger) AzureKeyVaultOption {
	return func(p *AzureKeyVaultProvider) {
		p.logger = logger
	}
}

// NewAzureKeyVaultProvider creates the provider. The default client
// factory authenticates with DefaultAzureCredential, which covers managed
// identity, environment credentials, and Azure CLI login.
func NewAzureKeyVaultProvider(opts ...AzureKeyVaultOption) (*AzureKeyVaultProvider, error) {
	p := &AzureKeyVaultProvider{
		clients: make(map[string]AzureSecretsClientAPI),
		logger:  logging.New(false, false),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.newClient == nil {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", err)
		}
		p.newClient = func(vaultURL string) (AzureSecretsClientAPI, error) {
			return azsecrets.NewClient(vaultURL, cred, nil)
		}
	}

	return p, nil
}

// Resolve fetches a secret from Azure Key Vault.
func (p *AzureKeyVaultProvider) Resolve(ctx context.Context, ref secretref.Reference) (string, error) {
	client, err := p.clientFor(ref.Vault)
	if err != nil {
		return "", err
	}

	p.logger.Debug("Accessing Azure Key Vault secret: %s/%s", ref.Vault, logging.Secret(ref.Secret))

	resp, err := client.GetSecret(ctx, ref.Secret, ref.Version, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) {
			switch respErr.StatusCode {
			case 404:
				return "", provider.NotFoundError{Provider: "azure-keyvault", Ref: ref}
			case 401, 403:
				return "", provider.AuthError{Provider: "azure-keyvault", Message: err.Error()}
			}
		}
		return "", fmt.Errorf("key vault access failed: %w", err)
	}

	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", ref.Secret)
	}
	return *resp.Value, nil
}

func (p *AzureKeyVaultProvider) clientFor(vault string) (AzureSecretsClientAPI, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[vault]; ok {
		return client, nil
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net", vault)
	client, err := p.newClient(vaultURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client for '%s': %w", vault, err)
	}
	p.clients[vault] = client
	return client, nil
}
