// Package provider defines the capability the resolution engine consumes to
// turn a parsed secret reference into a literal value.
//
// Implementations live in internal/providers and are registered against a
// resolver by scheme. The engine treats provider failures opaquely: they are
// wrapped into a resolution error with the original cause preserved.
// Providers must be safe for concurrent use and must never log secret
// values.
package provider

import (
	"context"

	"github.com/systmms/envresolve/pkg/secretref"
)

// Provider resolves a parsed secret reference into its literal value.
//
// Resolve blocks until the backend answers or ctx is done; any retry or
// backoff behavior belongs to the implementation, not the caller. A missing
// secret should be reported as NotFoundError and an authentication failure
// as AuthError, so callers can tell the two apart without parsing messages.
type Provider interface {
	Resolve(ctx context.Context, ref secretref.Reference) (string, error)
}

// NotFoundError indicates the referenced secret does not exist in the
// backend.
type NotFoundError struct {
	Provider string
	Ref      secretref.Reference
}

func (e NotFoundError) Error() string {
	return "secret not found: " + e.Ref.String() + " in " + e.Provider
}

// AuthError indicates authentication against the backend failed.
type AuthError struct {
	Provider string
	Message  string
}

func (e AuthError) Error() string {
	return "authentication failed for " + e.Provider + ": " + e.Message
}
