// Package errors defines the error kinds produced by envresolve.
//
// Every error returned by the resolution engine implements EnvResolveError,
// so callers can catch "anything from this subsystem" with a single
// errors.As check without enumerating the individual kinds.
package errors

import (
	"fmt"
	"strings"
)

// EnvResolveError is implemented by every error type in this package.
type EnvResolveError interface {
	error
	envResolveError()
}

// IsEnvResolveError reports whether err (or anything in its chain) belongs
// to the envresolve error family.
func IsEnvResolveError(err error) bool {
	for err != nil {
		if _, ok := err.(EnvResolveError); ok {
			return true
		}
		err = unwrap(err)
	}
	return false
}

func unwrap(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

// VariableNotFoundError indicates a referenced variable has no entry in the
// environment mapping. Name identifies exactly the missing variable, not the
// whole input string.
type VariableNotFoundError struct {
	Name string
}

func (e VariableNotFoundError) Error() string {
	return fmt.Sprintf("variable '%s' not found in environment", e.Name)
}

func (VariableNotFoundError) envResolveError() {}

// CircularReferenceError indicates a variable name or secret reference
// string recurred within a single resolution chain. Chain holds the ordered
// references visited before the repeat and is informational only.
type CircularReferenceError struct {
	Reference string
	Chain     []string
}

func (e CircularReferenceError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("circular reference detected: '%s'", e.Reference)
	}
	return fmt.Sprintf("circular reference detected: %s -> %s",
		strings.Join(e.Chain, " -> "), e.Reference)
}

func (CircularReferenceError) envResolveError() {}

// URIParseError indicates text looked like a secret reference but violates
// the grammar, or carries an unsupported scheme.
type URIParseError struct {
	URI     string
	Message string
}

func (e URIParseError) Error() string {
	if e.URI == "" {
		return "invalid secret URI: " + e.Message
	}
	return fmt.Sprintf("invalid secret URI '%s': %s", e.URI, e.Message)
}

func (URIParseError) envResolveError() {}

// ResolutionError indicates the registered provider failed to produce a
// value, or no provider is registered for the scheme. Err preserves the
// original cause when one exists.
type ResolutionError struct {
	URI     string
	Message string
	Err     error
}

func (e ResolutionError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.URI == "" {
		return "secret resolution failed: " + msg
	}
	return fmt.Sprintf("failed to resolve '%s': %s", e.URI, msg)
}

func (e ResolutionError) Unwrap() error { return e.Err }

func (ResolutionError) envResolveError() {}

// ProviderRegistrationError indicates a provider could not be constructed or
// registered, typically because an optional backend SDK failed to
// initialize. The underlying failure is always preserved as the cause.
type ProviderRegistrationError struct {
	Provider string
	Err      error
}

func (e ProviderRegistrationError) Error() string {
	return fmt.Sprintf("failed to register provider '%s': %v", e.Provider, e.Err)
}

func (e ProviderRegistrationError) Unwrap() error { return e.Err }

func (ProviderRegistrationError) envResolveError() {}

// MutuallyExclusiveArgumentsError indicates a batch call combined two
// arguments that cannot be used together.
type MutuallyExclusiveArgumentsError struct {
	Arg1 string
	Arg2 string
}

func (e MutuallyExclusiveArgumentsError) Error() string {
	return fmt.Sprintf("arguments '%s' and '%s' are mutually exclusive", e.Arg1, e.Arg2)
}

func (MutuallyExclusiveArgumentsError) envResolveError() {}

// KeyResolutionError wraps a per-key failure raised by the batch resolver
// under a stop policy, so callers can tell which entry failed apart from why.
type KeyResolutionError struct {
	Key string
	Err error
}

func (e KeyResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve key '%s': %v", e.Key, e.Err)
}

func (e KeyResolutionError) Unwrap() error { return e.Err }

func (KeyResolutionError) envResolveError() {}
