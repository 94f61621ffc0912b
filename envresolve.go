// Package envresolve resolves configuration values that reference other
// variables or external secret stores.
//
// A value may contain ${NAME} / $NAME references into an environment
// mapping and may itself be a secret reference URI such as
// akv://my-vault/db-password. Resolution interleaves variable expansion
// and provider lookup until the value stabilizes into a literal, with
// cycle detection spanning both mechanisms.
//
// The package-level functions operate on a shared default resolver; use
// NewResolver for an isolated instance.
package envresolve

import (
	"context"
	"sync"

	"github.com/systmms/envresolve/internal/logging"
	"github.com/systmms/envresolve/internal/metrics"
)

var (
	defaultResolver     *Resolver
	defaultResolverOnce sync.Once
)

// EnableMetrics registers the resolution counters with the default
// Prometheus registry. Until it is called every resolver runs
// uninstrumented, so library consumers who never opt in pollute no
// registry. Safe to call more than once.
func EnableMetrics() {
	metrics.Init()
}

// Default returns the shared default resolver.
func Default() *Resolver {
	defaultResolverOnce.Do(func() {
		defaultResolver = NewResolver(WithLogger(logging.New(false, false)))
	})
	return defaultResolver
}

// Resolve resolves a single value using the default resolver. See
// (*Resolver).Resolve.
func Resolve(ctx context.Context, input string, env map[string]string) (string, error) {
	return Default().Resolve(ctx, input, env)
}

// ResolveEnv resolves an environment mapping using the default resolver.
// See (*Resolver).ResolveEnv.
func ResolveEnv(ctx context.Context, env map[string]string, opts ...Option) (map[string]string, error) {
	return Default().ResolveEnv(ctx, env, opts...)
}

// ResolveOSEnviron resolves the process environment using the default
// resolver. See (*Resolver).ResolveOSEnviron.
func ResolveOSEnviron(ctx context.Context, opts ...Option) (map[string]string, error) {
	return Default().ResolveOSEnviron(ctx, opts...)
}

// LoadEnv loads and resolves a .env file using the default resolver. See
// (*Resolver).LoadEnv.
func LoadEnv(ctx context.Context, path string, opts ...Option) (map[string]string, error) {
	return Default().LoadEnv(ctx, path, opts...)
}
