package envresolve

import (
	"context"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file, resolves its entries, and returns the
// resolved mapping. Variable references may point at other entries of the
// file or at the process environment; file entries win when both define a
// name.
//
// LoadEnv is pure by default: pass WithExport(true) to also write the
// resolved values into the process environment, subject to WithOverwrite.
func (r *Resolver) LoadEnv(ctx context.Context, path string, opts ...Option) (map[string]string, error) {
	o := newBatchOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}

	fileEnv, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}

	// Expansion context: process environment overlaid with the file.
	env := snapshotOSEnviron()
	for key, value := range fileEnv {
		env[key] = value
	}

	// Only the file's own keys are resolved; WithKeys and WithPrefix
	// narrow within the file, never into the process environment.
	keys := make([]string, 0, len(fileEnv))
	switch {
	case len(o.keys) > 0:
		for _, key := range o.keys {
			if _, ok := fileEnv[key]; ok {
				keys = append(keys, key)
			}
		}
	case o.prefix != "":
		for key := range fileEnv {
			if strings.HasPrefix(key, o.prefix) {
				keys = append(keys, key)
			}
		}
	default:
		for key := range fileEnv {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return map[string]string{}, nil
	}
	// With an explicit key list, selection ignores the prefix but result
	// keys are still stripped and write-back still renames.
	o.keys = keys

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
