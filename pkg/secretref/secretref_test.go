package secretref

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enverrors "github.com/systmms/envresolve/pkg/errors"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		uri  string
		want Reference
	}{
		{
			name: "simple akv uri",
			uri:  "akv://my-vault/secret-name",
			want: Reference{Scheme: "akv", Vault: "my-vault", Secret: "secret-name"},
		},
		{
			name: "akv uri with version",
			uri:  "akv://my-vault/secret-name?version=abc123",
			want: Reference{Scheme: "akv", Vault: "my-vault", Secret: "secret-name", Version: "abc123"},
		},
		{
			name: "hyphens in vault name",
			uri:  "akv://my-company-vault/secret",
			want: Reference{Scheme: "akv", Vault: "my-company-vault", Secret: "secret"},
		},
		{
			name: "hyphens in secret name",
			uri:  "akv://vault/my-secret-name",
			want: Reference{Scheme: "akv", Vault: "vault", Secret: "my-secret-name"},
		},
		{
			name: "aws secretsmanager path-style secret",
			uri:  "awssm://eu-west-1/prod/db/password",
			want: Reference{Scheme: "awssm", Vault: "eu-west-1", Secret: "prod/db/password"},
		},
		{
			name: "gcp secret with version",
			uri:  "gcpsm://my-project/api-key?version=3",
			want: Reference{Scheme: "gcpsm", Vault: "my-project", Secret: "api-key", Version: "3"},
		},
		{
			name: "keyring service and account",
			uri:  "keyring://my-app/deploy-token",
			want: Reference{Scheme: "keyring", Vault: "my-app", Secret: "deploy-token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		uri     string
		wantMsg string
	}{
		{"unsupported scheme", "postgres://localhost/db", "postgres"},
		{"missing vault", "akv:///secret-name", "vault"},
		{"missing secret", "akv://my-vault/", "secret"},
		{"no path separator", "akv://my-vault", "secret"},
		{"empty string", "", "empty"},
		{"plain text", "just-a-string", "scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.uri)
			require.Error(t, err)

			var parseErr enverrors.URIParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestIsSecretReference(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSecretReference("akv://vault/secret"))
	assert.True(t, IsSecretReference("awssm://us-east-1/name"))
	assert.True(t, IsSecretReference("awsps://us-east-1/param"))
	assert.True(t, IsSecretReference("gcpsm://project/name"))
	assert.True(t, IsSecretReference("keyring://service/account"))

	assert.False(t, IsSecretReference("postgres://localhost/db"))
	assert.False(t, IsSecretReference("https://example.com"))
	assert.False(t, IsSecretReference("just-a-string"))
	assert.False(t, IsSecretReference(""))
}

func TestStringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, uri := range []string{
		"akv://vault/secret",
		"akv://vault/secret?version=v1",
		"awssm://eu-central-1/prod/api-key",
	} {
		ref, err := Parse(uri)
		require.NoError(t, err)
		assert.Equal(t, uri, ref.String())
	}
}

func TestSchemesMatchesSupportTable(t *testing.T) {
	t.Parallel()

	for _, scheme := range Schemes() {
		assert.True(t, IsSecretReference(scheme+"://vault/secret"))
	}
}
