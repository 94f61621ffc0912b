// Package secure keeps resolved secret values in encrypted memory
// between resolution and output. Values live in a memguard enclave so
// plaintext only exists inside a locked buffer for the moment it is
// written out.
package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned when a destroyed value is opened.
var ErrDestroyed = errors.New("secure value has been destroyed")

// Value is an encrypted-at-rest container for one resolved secret.
type Value struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	destroyed bool
}

// NewValue seals a secret string into protected memory. The caller's
// copy of the string is unaffected; prefer discarding it promptly.
func NewValue(secret string) *Value {
	// memguard copies the bytes into an mlocked, encrypted enclave with
	// guard pages around the allocation.
	return &Value{enclave: memguard.NewEnclave([]byte(secret))}
}

// Open decrypts the value into a locked buffer. The caller must call
// Destroy on the returned buffer once the plaintext has been used.
func (v *Value) Open() (*memguard.LockedBuffer, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.destroyed {
		return nil, ErrDestroyed
	}
	return v.enclave.Open()
}

// With runs fn on the decrypted plaintext and wipes the locked buffer
// before returning.
func (v *Value) With(fn func(plaintext []byte) error) error {
	locked, err := v.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()
	return fn(locked.Bytes())
}

// Destroy drops the enclave and makes further Opens fail with
// ErrDestroyed. Idempotent. The encrypted backing data is left for the
// collector; call memguard.Purge at process exit for a full wipe.
func (v *Value) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.destroyed {
		return
	}
	v.enclave = nil
	v.destroyed = true
}
