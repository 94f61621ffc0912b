package envresolve

import (
	"context"
	"sync"

	"github.com/systmms/envresolve/internal/logging"
	"github.com/systmms/envresolve/internal/metrics"
	enverrors "github.com/systmms/envresolve/pkg/errors"
	"github.com/systmms/envresolve/pkg/provider"
	"github.com/systmms/envresolve/pkg/secretref"
)

// Resolver orchestrates variable expansion and provider-backed secret
// lookup for single values and whole environment mappings.
type Resolver struct {
	mu        sync.RWMutex // protects providers for concurrent registration
	providers map[string]provider.Provider
	logger    *logging.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *logging.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver with no providers registered.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		providers: make(map[string]provider.Provider),
		logger:    logging.New(false, false),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register registers a provider for a URI scheme. Registering a second
// provider for the same scheme replaces the first.
func (r *Resolver) Register(scheme string, p provider.Provider) {
	r.mu.Lock()
	r.providers[scheme] = p
	r.mu.Unlock()
	r.logger.Debug("Registered provider for scheme: %s", scheme)
}

// Provider returns the provider registered for a scheme.
func (r *Resolver) Provider(scheme string) (provider.Provider, bool) {
	r.mu.RLock()
	p, ok := r.providers[scheme]
	r.mu.RUnlock()
	return p, ok
}

// Schemes returns the schemes that currently have a provider registered.
func (r *Resolver) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemes := make([]string, 0, len(r.providers))
	for scheme := range r.providers {
		schemes = append(schemes, scheme)
	}
	return schemes
}

// Resolve resolves a single value to its literal form. Variable references
// are expanded first; if the expanded string is a secret reference it is
// parsed and handed to the registered provider, and the provider's answer
// is fed back through the same steps until the value stabilizes. A nil env
// means a snapshot of the process environment.
//
// Cycle detection spans both mechanisms: the expander tracks variable
// names on its own recursion path, and this loop tracks every literal
// reference string it has resolved, so a chain that comes back to an
// earlier reference fails with CircularReferenceError no matter which
// mechanism carried the indirection.
func (r *Resolver) Resolve(ctx context.Context, input string, env map[string]string) (string, error) {
	if env == nil {
		env = snapshotOSEnviron()
	}

	var chain []string
	current := input
	for {
		expanded, err := expand(current, env, nil)
		if err != nil {
			metrics.RecordExpansionError()
			return "", err
		}

		if !secretref.IsSecretReference(expanded) {
			// Terminal case: plain values resolve to themselves, which
			// makes Resolve idempotent on its own output.
			return expanded, nil
		}

		for _, seen := range chain {
			if seen == expanded {
				return "", enverrors.CircularReferenceError{Reference: expanded, Chain: chain}
			}
		}
		chain = append(chain, expanded)

		ref, err := secretref.Parse(expanded)
		if err != nil {
			return "", err
		}

		p, ok := r.Provider(ref.Scheme)
		if !ok {
			return "", enverrors.ResolutionError{
				URI:     expanded,
				Message: "no provider registered for scheme '" + ref.Scheme + "'",
			}
		}

		r.logger.Debug("Resolving secret reference: %s", expanded)
		value, err := p.Resolve(ctx, ref)
		if err != nil {
			metrics.RecordResolutionError(ref.Scheme)
			return "", enverrors.ResolutionError{URI: expanded, Err: err}
		}
		metrics.RecordResolution(ref.Scheme)

		// A provider returning its input unchanged is a stabilization
		// signal, not a cycle: terminate instead of resolving it again.
		if value == expanded {
			return value, nil
		}
		current = value
	}
}
