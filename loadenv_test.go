package envresolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEnv(t *testing.T) {
	r, _ := newTestResolver(map[string]string{"db-password": "hunter2"})
	path := writeEnvFile(t, `
APP_NAME=myapp
DB_PASSWORD=akv://vault/db-password
GREETING=hello ${APP_NAME}
`)

	got, err := r.LoadEnv(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"APP_NAME":    "myapp",
		"DB_PASSWORD": "hunter2",
		"GREETING":    "hello myapp",
	}, got)

	// Pure by default: nothing leaked into the process environment.
	_, exists := os.LookupEnv("DB_PASSWORD")
	assert.False(t, exists)
}

func TestLoadEnvFileOverridesProcessEnvironment(t *testing.T) {
	r, _ := newTestResolver(nil)
	t.Setenv("ENVRESOLVE_SHARED", "from-process")
	path := writeEnvFile(t, `
ENVRESOLVE_SHARED=from-file
DERIVED=${ENVRESOLVE_SHARED}
`)

	got, err := r.LoadEnv(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", got["ENVRESOLVE_SHARED"])
	assert.Equal(t, "from-file", got["DERIVED"])
}

func TestLoadEnvReferencesProcessEnvironment(t *testing.T) {
	r, _ := newTestResolver(map[string]string{"s": "resolved"})
	t.Setenv("ENVRESOLVE_VAULT", "v")
	path := writeEnvFile(t, "SECRET=akv://${ENVRESOLVE_VAULT}/s\n")

	got, err := r.LoadEnv(context.Background(), path)
	require.NoError(t, err)

	// Only the file's keys appear in the result.
	assert.Equal(t, map[string]string{"SECRET": "resolved"}, got)
}

func TestLoadEnvWithExport(t *testing.T) {
	r, _ := newTestResolver(map[string]string{"s": "resolved"})
	path := writeEnvFile(t, "ENVRESOLVE_EXPORTED=akv://v/s\n")

	_, err := r.LoadEnv(context.Background(), path, WithExport(true))
	require.NoError(t, err)
	assert.Equal(t, "resolved", os.Getenv("ENVRESOLVE_EXPORTED"))

	t.Cleanup(func() { os.Unsetenv("ENVRESOLVE_EXPORTED") })
}

func TestLoadEnvPrefixSelectsFileKeysOnly(t *testing.T) {
	r, static := newTestResolver(map[string]string{"s": "resolved"})
	t.Setenv("APP_PROCESS_SECRET", "akv://v/s")
	path := writeEnvFile(t, "APP_FILE_SECRET=akv://v/s\n")

	got, err := r.LoadEnv(context.Background(), path, WithPrefix("APP_"))
	require.NoError(t, err)

	// The prefixed process-environment key is not selected.
	assert.Equal(t, map[string]string{"FILE_SECRET": "resolved"}, got)
	assert.Len(t, static.Calls(), 1)
}

func TestLoadEnvPrefixWithoutFileMatchIsEmpty(t *testing.T) {
	r, static := newTestResolver(map[string]string{"s": "resolved"})
	t.Setenv("APP_PROCESS_SECRET", "akv://v/s")
	path := writeEnvFile(t, "OTHER=literal\n")

	got, err := r.LoadEnv(context.Background(), path, WithPrefix("APP_"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, static.Calls())
}

func TestLoadEnvKeysIntersectWithFile(t *testing.T) {
	r, _ := newTestResolver(map[string]string{"s": "resolved"})
	t.Setenv("ENVRESOLVE_PROC_ONLY", "akv://v/s")
	path := writeEnvFile(t, "IN_FILE=akv://v/s\n")

	got, err := r.LoadEnv(context.Background(), path,
		WithKeys("IN_FILE", "ENVRESOLVE_PROC_ONLY"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"IN_FILE": "resolved"}, got)
}

func TestLoadEnvMissingFile(t *testing.T) {
	r, _ := newTestResolver(nil)
	_, err := r.LoadEnv(context.Background(), filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
}

func TestLoadEnvWithKeys(t *testing.T) {
	r, static := newTestResolver(map[string]string{"s": "resolved"})
	path := writeEnvFile(t, `
WANTED=akv://v/s
UNWANTED=akv://v/s
`)

	got, err := r.LoadEnv(context.Background(), path, WithKeys("WANTED"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"WANTED": "resolved"}, got)
	assert.Len(t, static.Calls(), 1)
}
