package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/systmms/envresolve/pkg/provider"
	"github.com/systmms/envresolve/pkg/secretref"
)

// KeyringProvider resolves keyring:// references against the OS keyring
// (macOS Keychain, Linux Secret Service, Windows Credential Manager). The
// vault segment is the keyring service name and the secret segment the
// account name. The OS keyring has no version concept, so versioned
// references are rejected.
type KeyringProvider struct{}

// NewKeyringProvider creates the provider.
func NewKeyringProvider() *KeyringProvider {
	return &KeyringProvider{}
}

// Resolve looks up the account's secret under the service entry.
func (p *KeyringProvider) Resolve(ctx context.Context, ref secretref.Reference) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ref.Version != "" {
		return "", fmt.Errorf("keyring references do not support versions")
	}

	value, err := keyring.Get(ref.Vault, ref.Secret)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", provider.NotFoundError{Provider: "keyring", Ref: ref}
		}
		return "", fmt.Errorf("keyring access failed: %w", err)
	}
	return value, nil
}
