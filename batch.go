package envresolve

import (
	"context"
	"errors"
	"path"
	"sort"
	"strings"

	enverrors "github.com/systmms/envresolve/pkg/errors"
)

// batchOptions holds the per-call configuration of the batch resolver.
type batchOptions struct {
	keys            []string
	prefix          string
	ignoreKeys      []string
	ignorePatterns  []string
	stopOnExpansion bool
	stopOnResolve   bool
	export          bool
	overwrite       bool
}

// Option configures a batch resolution call.
type Option func(*batchOptions)

// WithKeys restricts resolution to an explicit list of keys. Mutually
// exclusive with WithPrefix.
func WithKeys(keys ...string) Option {
	return func(o *batchOptions) {
		o.keys = keys
	}
}

// WithPrefix restricts resolution to keys sharing the prefix and strips
// the prefix from result keys. Mutually exclusive with WithKeys.
func WithPrefix(prefix string) Option {
	return func(o *batchOptions) {
		o.prefix = prefix
	}
}

// WithIgnoreKeys passes the named keys through unresolved.
func WithIgnoreKeys(keys ...string) Option {
	return func(o *batchOptions) {
		o.ignoreKeys = append(o.ignoreKeys, keys...)
	}
}

// WithIgnorePatterns passes keys matching any glob pattern ('*' wildcard)
// through unresolved. Combines with WithIgnoreKeys: either match excludes
// a key from resolution.
func WithIgnorePatterns(patterns ...string) Option {
	return func(o *batchOptions) {
		o.ignorePatterns = append(o.ignorePatterns, patterns...)
	}
}

// StopOnExpansionError controls whether a missing-variable failure aborts
// the batch (true, the default) or just drops the offending key.
func StopOnExpansionError(stop bool) Option {
	return func(o *batchOptions) {
		o.stopOnExpansion = stop
	}
}

// StopOnResolutionError controls whether a provider failure aborts the
// batch (true, the default) or just drops the offending key.
func StopOnResolutionError(stop bool) Option {
	return func(o *batchOptions) {
		o.stopOnResolve = stop
	}
}

// WithExport controls whether resolved values are written back to the
// process environment. ResolveOSEnviron exports by default; ResolveEnv
// and LoadEnv are pure unless export is enabled.
func WithExport(export bool) Option {
	return func(o *batchOptions) {
		o.export = export
	}
}

// WithOverwrite controls whether write-back replaces variables that
// already exist in the process environment. Defaults to true.
func WithOverwrite(overwrite bool) Option {
	return func(o *batchOptions) {
		o.overwrite = overwrite
	}
}

func newBatchOptions(opts []Option) batchOptions {
	o := batchOptions{
		stopOnExpansion: true,
		stopOnResolve:   true,
		overwrite:       true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *batchOptions) validate() error {
	if len(o.keys) > 0 && o.prefix != "" {
		return enverrors.MutuallyExclusiveArgumentsError{Arg1: "keys", Arg2: "prefix"}
	}
	return nil
}

// ignored reports whether a key is excluded from resolution, either by an
// exact ignore-key match or by any ignore pattern.
func (o *batchOptions) ignored(key string) bool {
	for _, ignore := range o.ignoreKeys {
		if key == ignore {
			return true
		}
	}
	for _, pattern := range o.ignorePatterns {
		if matched, err := path.Match(pattern, key); err == nil && matched {
			return true
		}
	}
	return false
}

// selectKeys returns the keys subject to this batch call, sorted so that
// the first error under a stop policy is deterministic.
func (o *batchOptions) selectKeys(env map[string]string) []string {
	var selected []string
	switch {
	case len(o.keys) > 0:
		for _, key := range o.keys {
			if _, ok := env[key]; ok {
				selected = append(selected, key)
			}
		}
	case o.prefix != "":
		for key := range env {
			if strings.HasPrefix(key, o.prefix) {
				selected = append(selected, key)
			}
		}
	default:
		for key := range env {
			selected = append(selected, key)
		}
	}
	sort.Strings(selected)
	return selected
}

// ResolveEnv resolves every selected entry of env and returns a new
// mapping of the successfully resolved (or explicitly ignored) entries.
// The input mapping is never mutated. Pure by default: pass
// WithExport(true) to also write the resolved values into the process
// environment, subject to WithOverwrite.
//
// Keys dropped by a skip policy are simply absent from the result.
// CircularReferenceError is never suppressible: it signals a structural
// configuration defect and aborts the whole call.
func (r *Resolver) ResolveEnv(ctx context.Context, env map[string]string, opts ...Option) (map[string]string, error) {
	o := newBatchOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}

	result, err := r.resolveEnv(ctx, env, &o)
	if err != nil {
		return nil, err
	}

	if o.export {
		if err := writeBack(result, snapshotOSEnviron(), &o); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (r *Resolver) resolveEnv(ctx context.Context, env map[string]string, o *batchOptions) (map[string]string, error) {
	result := make(map[string]string)

	for _, key := range o.selectKeys(env) {
		resultKey := strings.TrimPrefix(key, o.prefix)

		if o.ignored(key) {
			result[resultKey] = env[key]
			continue
		}

		resolved, err := r.Resolve(ctx, env[key], env)
		if err != nil {
			if abortErr := batchErrorFor(key, err, o); abortErr != nil {
				return nil, abortErr
			}
			r.logger.Debug("Skipping key %s: %v", key, err)
			continue
		}
		result[resultKey] = resolved
	}

	return result, nil
}

// batchErrorFor decides whether a per-key failure aborts the batch. It
// returns nil when the error is suppressed by the active skip policy.
func batchErrorFor(key string, err error, o *batchOptions) error {
	var circular enverrors.CircularReferenceError
	if errors.As(err, &circular) {
		return err
	}

	// Cancellation is not a per-key condition; skipping would just fail
	// every remaining key the same way.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return enverrors.KeyResolutionError{Key: key, Err: err}
	}

	var notFound enverrors.VariableNotFoundError
	if errors.As(err, &notFound) {
		if o.stopOnExpansion {
			return enverrors.KeyResolutionError{Key: key, Err: err}
		}
		return nil
	}

	var resolution enverrors.ResolutionError
	if errors.As(err, &resolution) {
		if o.stopOnResolve {
			return enverrors.KeyResolutionError{Key: key, Err: err}
		}
		return nil
	}

	// URI parse failures and anything from outside the error family
	// always stop the batch.
	return enverrors.KeyResolutionError{Key: key, Err: err}
}
