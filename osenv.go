package envresolve

import (
	"context"
	"os"
	"strings"
)

// snapshotOSEnviron copies the process environment into a mapping.
func snapshotOSEnviron() map[string]string {
	environ := os.Environ()
	env := make(map[string]string, len(environ))
	for _, entry := range environ {
		if key, value, ok := strings.Cut(entry, "="); ok {
			env[key] = value
		}
	}
	return env
}

// ResolveOSEnviron resolves secret references in the process environment.
// By default the resolved values are written back with os.Setenv; pass
// WithExport(false) for pure computation. WithOverwrite(false) leaves
// variables that already exist in the environment untouched during
// write-back (the returned mapping still carries the resolved values).
//
// When WithPrefix is used, write-back sets the stripped key and removes
// the original prefixed one.
func (r *Resolver) ResolveOSEnviron(ctx context.Context, opts ...Option) (map[string]string, error) {
	o := batchOptions{
		stopOnExpansion: true,
		stopOnResolve:   true,
		export:          true,
		overwrite:       true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	env := snapshotOSEnviron()
	result, err := r.resolveEnv(ctx, env, &o)
	if err != nil {
		return nil, err
	}

	if o.export {
		if err := writeBack(result, env, &o); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// writeBack applies resolved values to the process environment. snapshot
// is the environment as it looked before resolution, used to decide which
// keys already existed for the overwrite check and which prefixed
// originals to remove.
func writeBack(resolved, snapshot map[string]string, o *batchOptions) error {
	for key, value := range resolved {
		if !o.overwrite {
			if _, exists := os.LookupEnv(key); exists {
				continue
			}
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}

	if o.prefix != "" {
		for key := range snapshot {
			if strings.HasPrefix(key, o.prefix) {
				if _, ok := resolved[strings.TrimPrefix(key, o.prefix)]; ok {
					if err := os.Unsetenv(key); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}
