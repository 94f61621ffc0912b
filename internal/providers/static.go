package providers

import (
	"context"
	"sync"

	"github.com/systmms/envresolve/pkg/provider"
	"github.com/systmms/envresolve/pkg/secretref"
)

// StaticProvider serves secrets from an in-memory map, keyed by secret
// name. It backs the test suites and the CLI dry-run path, and records
// every reference it resolves so tests can assert on call counts and
// order.
type StaticProvider struct {
	mu      sync.Mutex
	secrets map[string]string
	errs    map[string]error
	calls   []secretref.Reference
}

// NewStaticProvider creates a provider over the given secrets.
func NewStaticProvider(secrets map[string]string) *StaticProvider {
	if secrets == nil {
		secrets = make(map[string]string)
	}
	return &StaticProvider{
		secrets: secrets,
		errs:    make(map[string]error),
	}
}

// SetSecret adds or replaces a secret.
func (p *StaticProvider) SetSecret(name, value string) {
	p.mu.Lock()
	p.secrets[name] = value
	p.mu.Unlock()
}

// FailWith makes resolution of the named secret return err.
func (p *StaticProvider) FailWith(name string, err error) {
	p.mu.Lock()
	p.errs[name] = err
	p.mu.Unlock()
}

// Calls returns the references resolved so far, in order.
func (p *StaticProvider) Calls() []secretref.Reference {
	p.mu.Lock()
	defer p.mu.Unlock()
	calls := make([]secretref.Reference, len(p.calls))
	copy(calls, p.calls)
	return calls
}

// Resolve returns the stored value for the reference's secret name.
func (p *StaticProvider) Resolve(ctx context.Context, ref secretref.Reference) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, ref)

	if err, ok := p.errs[ref.Secret]; ok {
		return "", err
	}
	value, ok := p.secrets[ref.Secret]
	if !ok {
		return "", provider.NotFoundError{Provider: "static", Ref: ref}
	}
	return value, nil
}
