package execenv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/envresolve/internal/logging"
)

func newExecutor() *Executor {
	return New(logging.New(false, true))
}

func TestExecRunsCommandWithResolvedEnv(t *testing.T) {
	e := newExecutor()
	err := e.Exec(context.Background(), Options{
		Command: []string{"sh", "-c", `test "$EXECENV_TEST_VAR" = resolved`},
		Env:     map[string]string{"EXECENV_TEST_VAR": "resolved"},
	})
	require.NoError(t, err)
}

func TestExecResolvedValuesWinOverInherited(t *testing.T) {
	t.Setenv("EXECENV_TEST_VAR", "inherited")

	e := newExecutor()
	err := e.Exec(context.Background(), Options{
		Command: []string{"sh", "-c", `test "$EXECENV_TEST_VAR" = resolved`},
		Env:     map[string]string{"EXECENV_TEST_VAR": "resolved"},
	})
	require.NoError(t, err)
}

func TestExecPropagatesExitCode(t *testing.T) {
	e := newExecutor()
	err := e.Exec(context.Background(), Options{
		Command: []string{"sh", "-c", "exit 3"},
	})
	require.Error(t, err)

	var exitErr ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
}

func TestExecErrors(t *testing.T) {
	e := newExecutor()
	ctx := context.Background()

	err := e.Exec(ctx, Options{})
	assert.ErrorContains(t, err, "no command specified")

	err = e.Exec(ctx, Options{Command: []string{"definitely-not-a-command-xyz"}})
	assert.ErrorContains(t, err, "not found in PATH")
}

func TestExecTimeout(t *testing.T) {
	e := newExecutor()
	err := e.Exec(context.Background(), Options{
		Command: []string{"sleep", "5"},
		Timeout: 50 * time.Millisecond,
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "timed out")
}

func TestExecWorkingDir(t *testing.T) {
	dir := t.TempDir()
	e := newExecutor()
	err := e.Exec(context.Background(), Options{
		Command:    []string{"sh", "-c", `test "$(pwd)" = "$EXECENV_WANT_DIR"`},
		Env:        map[string]string{"EXECENV_WANT_DIR": dir},
		WorkingDir: dir,
	})
	require.NoError(t, err)
}

func TestMergedEnviron(t *testing.T) {
	t.Setenv("EXECENV_BASE", "base")

	env := mergedEnviron(map[string]string{"EXECENV_EXTRA": "extra"})
	assert.Contains(t, env, "EXECENV_BASE=base")
	assert.Contains(t, env, "EXECENV_EXTRA=extra")
	assert.IsIncreasing(t, env)
}

func TestMaskValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  string
	}{
		{value: "", want: "(empty)"},
		{value: "ab", want: "**"},
		{value: "abcdef", want: "a****f"},
		{value: "supersecretvalue", want: "sup********ue"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, maskValue(tt.value))
	}
}
