package secure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueRoundTrip(t *testing.T) {
	v := NewValue("hunter2")
	defer v.Destroy()

	locked, err := v.Open()
	require.NoError(t, err)
	defer locked.Destroy()

	assert.Equal(t, "hunter2", locked.String())
}

func TestValueWith(t *testing.T) {
	v := NewValue("api-key-123")
	defer v.Destroy()

	var seen string
	err := v.With(func(plaintext []byte) error {
		seen = string(plaintext)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "api-key-123", seen)
}

func TestValueOpenAfterDestroy(t *testing.T) {
	v := NewValue("gone")
	v.Destroy()
	v.Destroy() // idempotent

	_, err := v.Open()
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestValueOpenTwice(t *testing.T) {
	v := NewValue("again")
	defer v.Destroy()

	for i := 0; i < 2; i++ {
		locked, err := v.Open()
		require.NoError(t, err)
		assert.Equal(t, "again", locked.String())
		locked.Destroy()
	}
}
