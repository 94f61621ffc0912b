package envresolve

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOSEnvironWritesBack(t *testing.T) {
	r, _ := newTestResolver(map[string]string{"db-password": "hunter2"})
	t.Setenv("ENVRESOLVE_OS_SECRET", "akv://vault/db-password")

	got, err := r.ResolveOSEnviron(context.Background(), WithKeys("ENVRESOLVE_OS_SECRET"))
	require.NoError(t, err)

	assert.Equal(t, "hunter2", got["ENVRESOLVE_OS_SECRET"])
	assert.Equal(t, "hunter2", os.Getenv("ENVRESOLVE_OS_SECRET"))
}

func TestResolveOSEnvironWithoutExport(t *testing.T) {
	r, _ := newTestResolver(map[string]string{"db-password": "hunter2"})
	t.Setenv("ENVRESOLVE_OS_SECRET", "akv://vault/db-password")

	got, err := r.ResolveOSEnviron(context.Background(),
		WithKeys("ENVRESOLVE_OS_SECRET"), WithExport(false))
	require.NoError(t, err)

	assert.Equal(t, "hunter2", got["ENVRESOLVE_OS_SECRET"])
	assert.Equal(t, "akv://vault/db-password", os.Getenv("ENVRESOLVE_OS_SECRET"))
}

func TestResolveOSEnvironPrefixRenamesVariables(t *testing.T) {
	r, _ := newTestResolver(map[string]string{"s": "resolved"})
	t.Setenv("MYAPP_SECRET", "akv://v/s")
	t.Setenv("MYAPP_NAME", "demo")

	got, err := r.ResolveOSEnviron(context.Background(), WithPrefix("MYAPP_"))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"SECRET": "resolved",
		"NAME":   "demo",
	}, got)

	// Stripped names are exported, prefixed originals removed.
	assert.Equal(t, "resolved", os.Getenv("SECRET"))
	assert.Equal(t, "demo", os.Getenv("NAME"))
	_, exists := os.LookupEnv("MYAPP_SECRET")
	assert.False(t, exists)

	// t.Setenv cannot restore keys the test created.
	t.Cleanup(func() {
		os.Unsetenv("SECRET")
		os.Unsetenv("NAME")
	})
}

func TestResolveOSEnvironOverwriteFalsePreservesExisting(t *testing.T) {
	r, _ := newTestResolver(map[string]string{"s": "resolved"})
	t.Setenv("ENVRESOLVE_OS_SECRET", "akv://v/s")

	got, err := r.ResolveOSEnviron(context.Background(),
		WithKeys("ENVRESOLVE_OS_SECRET"), WithOverwrite(false))
	require.NoError(t, err)

	// The returned mapping carries the resolved value, but the variable
	// already existed so write-back leaves it alone.
	assert.Equal(t, "resolved", got["ENVRESOLVE_OS_SECRET"])
	assert.Equal(t, "akv://v/s", os.Getenv("ENVRESOLVE_OS_SECRET"))
}

func TestResolveOSEnvironKeysAndPrefixAreMutuallyExclusive(t *testing.T) {
	r, _ := newTestResolver(nil)
	_, err := r.ResolveOSEnviron(context.Background(), WithKeys("A"), WithPrefix("B_"))
	require.Error(t, err)
}
