// Package execenv runs child processes with resolved environment
// variables, keeping secret values out of the parent's environment and
// out of any printed output.
package execenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/systmms/envresolve/internal/logging"
)

// Executor runs commands with an augmented environment.
type Executor struct {
	logger *logging.Logger
}

// New creates an executor.
func New(logger *logging.Logger) *Executor {
	return &Executor{logger: logger}
}

// Options configures a single command execution.
type Options struct {
	Command    []string          // command and arguments
	Env        map[string]string // resolved variables layered over the process environment
	PrintVars  bool              // print variable names with masked values before running
	WorkingDir string
	Timeout    time.Duration // zero means no timeout
}

// ExitError reports that the child process exited non-zero. The caller
// decides whether to propagate the code with os.Exit.
type ExitError struct {
	Code int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.Code)
}

// Exec runs the command with the resolved variables layered over the
// current environment. Resolved values always win over inherited ones.
func (e *Executor) Exec(ctx context.Context, options Options) error {
	if len(options.Command) == 0 {
		return fmt.Errorf("no command specified: provide one after -- (e.g. envresolve exec -- npm start)")
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	name := options.Command[0]
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("command '%s' not found in PATH: %w", name, err)
	}

	if options.PrintVars {
		e.printEnvironment(options.Env)
	}

	cmd := exec.CommandContext(ctx, name, options.Command[1:]...)
	cmd.Env = mergedEnviron(options.Env)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	e.logger.Debug("Executing command: %s", strings.Join(options.Command, " "))
	e.logger.Debug("Resolved variables set: %d", len(options.Env))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("command timed out: %w", ctx.Err())
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return ExitError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// mergedEnviron layers vars over the current process environment and
// returns the KEY=value slice for exec, sorted for stable debugging.
func mergedEnviron(vars map[string]string) []string {
	merged := make(map[string]string)
	for _, entry := range os.Environ() {
		if key, value, ok := strings.Cut(entry, "="); ok {
			merged[key] = value
		}
	}
	for key, value := range vars {
		merged[key] = value
	}

	result := make([]string, 0, len(merged))
	for key, value := range merged {
		result = append(result, key+"="+value)
	}
	sort.Strings(result)
	return result
}

// printEnvironment lists the resolved variable names with masked values.
func (e *Executor) printEnvironment(env map[string]string) {
	if len(env) == 0 {
		e.logger.Info("No environment variables resolved")
		return
	}

	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	e.logger.Info("Resolved %d environment variables:", len(env))
	for _, key := range keys {
		e.logger.Info("  %s=%s", key, maskValue(env[key]))
	}
}

// maskValue hides a value while leaving enough shape to recognize it.
func maskValue(value string) string {
	switch {
	case len(value) == 0:
		return "(empty)"
	case len(value) <= 3:
		return strings.Repeat("*", len(value))
	case len(value) <= 8:
		return value[:1] + strings.Repeat("*", len(value)-2) + value[len(value)-1:]
	default:
		return value[:3] + strings.Repeat("*", 8) + value[len(value)-2:]
	}
}
