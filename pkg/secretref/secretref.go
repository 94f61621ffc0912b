// Package secretref implements the secret reference URI grammar:
//
//	<scheme>://<vault>/<secret>[?version=<version>]
//
// The text form is a stable contract that appears literally inside
// configuration files. Parsing is purely syntactic; nothing here talks to a
// secret store or checks that the vault or secret exists.
package secretref

import (
	"net/url"
	"strings"

	enverrors "github.com/systmms/envresolve/pkg/errors"
)

// Supported scheme tokens. SchemeAzureKeyVault is the canonical member of
// the family; the others map the same vault/secret shape onto additional
// backends.
const (
	SchemeAzureKeyVault     = "akv"
	SchemeAWSSecretsManager = "awssm"
	SchemeAWSParameterStore = "awsps"
	SchemeGCPSecretManager  = "gcpsm"
	SchemeKeyring           = "keyring"
)

var supportedSchemes = map[string]bool{
	SchemeAzureKeyVault:     true,
	SchemeAWSSecretsManager: true,
	SchemeAWSParameterStore: true,
	SchemeGCPSecretManager:  true,
	SchemeKeyring:           true,
}

// Schemes returns the supported scheme tokens in a stable order.
func Schemes() []string {
	return []string{
		SchemeAzureKeyVault,
		SchemeAWSSecretsManager,
		SchemeAWSParameterStore,
		SchemeGCPSecretManager,
		SchemeKeyring,
	}
}

// Reference is a parsed secret reference. It is created by Parse and
// consumed by a provider for a single resolution attempt.
type Reference struct {
	Scheme  string
	Vault   string
	Secret  string
	Version string
}

// String reproduces the canonical text form of the reference.
func (r Reference) String() string {
	s := r.Scheme + "://" + r.Vault + "/" + r.Secret
	if r.Version != "" {
		s += "?version=" + r.Version
	}
	return s
}

// IsSecretReference reports whether s carries a supported scheme. It is a
// fast pre-check: strings with other schemes or no scheme at all pass
// through resolution unchanged.
func IsSecretReference(s string) bool {
	scheme, _, ok := strings.Cut(s, "://")
	return ok && supportedSchemes[scheme]
}

// Parse parses a secret reference string. The error always indicates the
// missing component or the offending scheme, so failures are actionable.
func Parse(s string) (Reference, error) {
	if s == "" {
		return Reference{}, enverrors.URIParseError{Message: "empty string"}
	}

	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return Reference{}, enverrors.URIParseError{URI: s, Message: "missing scheme separator '://'"}
	}
	if !supportedSchemes[scheme] {
		return Reference{}, enverrors.URIParseError{URI: s, Message: "unsupported scheme '" + scheme + "'"}
	}

	rest, query, _ := strings.Cut(rest, "?")

	vault, secret, ok := strings.Cut(rest, "/")
	if vault == "" {
		return Reference{}, enverrors.URIParseError{URI: s, Message: "missing vault name"}
	}
	if !ok || secret == "" {
		return Reference{}, enverrors.URIParseError{URI: s, Message: "missing secret name"}
	}

	ref := Reference{Scheme: scheme, Vault: vault, Secret: secret}

	if query != "" {
		values, err := url.ParseQuery(query)
		if err != nil {
			return Reference{}, enverrors.URIParseError{URI: s, Message: "malformed query: " + err.Error()}
		}
		ref.Version = values.Get("version")
	}

	return ref, nil
}
