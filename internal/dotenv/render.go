// Package dotenv renders resolved environment mappings to the formats
// the CLI writes out.
package dotenv

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Supported output formats.
const (
	FormatDotenv = "dotenv"
	FormatExport = "export"
	FormatJSON   = "json"
)

// Formats lists the supported format names.
func Formats() []string {
	return []string{FormatDotenv, FormatExport, FormatJSON}
}

// Render serializes env in the named format. Keys are emitted in sorted
// order in every format so output is diffable.
func Render(env map[string]string, format string) (string, error) {
	switch format {
	case FormatDotenv:
		return godotenv.Marshal(env)
	case FormatExport:
		return renderExport(env), nil
	case FormatJSON:
		// json.Marshal sorts map keys.
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown output format '%s' (supported: %s)",
			format, strings.Join(Formats(), ", "))
	}
}

// WriteBytes writes already-rendered content to path, ensuring a
// trailing newline. Rendered files may hold secrets, so they are
// created owner-readable only.
func WriteBytes(path string, content []byte) error {
	if len(content) == 0 || content[len(content)-1] != '\n' {
		content = append(content, '\n')
	}
	return os.WriteFile(path, content, 0o600)
}

// WriteFile renders env and writes it to path.
func WriteFile(path string, env map[string]string, format string) error {
	content, err := Render(env, format)
	if err != nil {
		return err
	}
	return WriteBytes(path, []byte(content))
}

// renderExport emits POSIX shell export lines with single-quoted values.
func renderExport(env map[string]string) string {
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "export %s=%s", key, shellQuote(env[key]))
	}
	return b.String()
}

// shellQuote single-quotes a value, closing and reopening the quote
// around embedded single quotes.
func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
