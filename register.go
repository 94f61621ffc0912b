package envresolve

import (
	"github.com/systmms/envresolve/internal/providers"
	enverrors "github.com/systmms/envresolve/pkg/errors"
	"github.com/systmms/envresolve/pkg/secretref"
)

// The Register*Provider helpers construct a backend provider and register
// it on the default resolver under its scheme. Construction failures are
// wrapped in ProviderRegistrationError with the underlying cause
// preserved, so a missing or misconfigured backend SDK never surfaces as a
// raw client error. Re-registration is safe and replaces the previous
// provider for the scheme.

// RegisterAzureKeyVaultProvider registers the akv:// provider backed by
// Azure Key Vault.
func RegisterAzureKeyVaultProvider(opts ...providers.AzureKeyVaultOption) error {
	p, err := providers.NewAzureKeyVaultProvider(opts...)
	if err != nil {
		return enverrors.ProviderRegistrationError{Provider: secretref.SchemeAzureKeyVault, Err: err}
	}
	Default().Register(secretref.SchemeAzureKeyVault, p)
	return nil
}

// RegisterAWSSecretsManagerProvider registers the awssm:// provider backed
// by AWS Secrets Manager.
func RegisterAWSSecretsManagerProvider(opts ...providers.AWSSecretsManagerOption) error {
	p, err := providers.NewAWSSecretsManagerProvider(opts...)
	if err != nil {
		return enverrors.ProviderRegistrationError{Provider: secretref.SchemeAWSSecretsManager, Err: err}
	}
	Default().Register(secretref.SchemeAWSSecretsManager, p)
	return nil
}

// RegisterAWSParameterStoreProvider registers the awsps:// provider backed
// by AWS SSM Parameter Store.
func RegisterAWSParameterStoreProvider(opts ...providers.AWSParameterStoreOption) error {
	p, err := providers.NewAWSParameterStoreProvider(opts...)
	if err != nil {
		return enverrors.ProviderRegistrationError{Provider: secretref.SchemeAWSParameterStore, Err: err}
	}
	Default().Register(secretref.SchemeAWSParameterStore, p)
	return nil
}

// RegisterGCPSecretManagerProvider registers the gcpsm:// provider backed
// by Google Cloud Secret Manager.
func RegisterGCPSecretManagerProvider(opts ...providers.GCPSecretManagerOption) error {
	p, err := providers.NewGCPSecretManagerProvider(opts...)
	if err != nil {
		return enverrors.ProviderRegistrationError{Provider: secretref.SchemeGCPSecretManager, Err: err}
	}
	Default().Register(secretref.SchemeGCPSecretManager, p)
	return nil
}

// RegisterKeyringProvider registers the keyring:// provider backed by the
// OS keyring (macOS Keychain, Linux Secret Service, Windows Credential
// Manager).
func RegisterKeyringProvider() error {
	Default().Register(secretref.SchemeKeyring, providers.NewKeyringProvider())
	return nil
}
