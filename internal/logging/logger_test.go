package logging

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugSuppressedByDefault(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, true)

	logger.Debug("should not appear")
	assert.Empty(t, buf.String())

	logger.Info("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestDebugEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, true, true)

	logger.Debug("resolving scheme %s", "akv")
	assert.Contains(t, buf.String(), "[DEBUG]")
	assert.Contains(t, buf.String(), "resolving scheme akv")
}

func TestNoColorOmitsEscapes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, true)

	logger.Warn("plain")
	assert.NotContains(t, buf.String(), "\033[")
}

func TestSecretAlwaysRedacts(t *testing.T) {
	t.Parallel()

	s := Secret("super-secret-value")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", s))
}

func TestRedact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		secrets []string
		want    string
	}{
		{
			name:    "single occurrence",
			input:   "token=abcd1234 sent",
			secrets: []string{"abcd1234"},
			want:    "token=[REDACTED] sent",
		},
		{
			name:    "multiple secrets",
			input:   "user=alice pass=hunter2-long",
			secrets: []string{"hunter2-long", "alice"},
			want:    "user=[REDACTED] pass=[REDACTED]",
		},
		{
			name:    "short values are not redacted",
			input:   "the cat sat",
			secrets: []string{"cat"},
			want:    "the cat sat",
		},
		{
			name:    "empty secret list",
			input:   "nothing to do",
			secrets: nil,
			want:    "nothing to do",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Redact(tt.input, tt.secrets))
		})
	}
}
