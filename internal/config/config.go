// Package config loads the optional envresolve.yaml file that describes
// which providers to enable and how batch resolution should behave. The
// file is validated against a JSON schema before use so configuration
// mistakes fail with a precise message instead of odd runtime behavior.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/systmms/envresolve"
	"github.com/systmms/envresolve/internal/logging"
	"github.com/systmms/envresolve/pkg/secretref"
)

// DefaultPaths are tried in order when no explicit path is given.
var DefaultPaths = []string{"envresolve.yaml", ".envresolve.yaml"}

// Error describes a configuration problem with a suggested fix.
type Error struct {
	Field      string
	Value      any
	Message    string
	Suggestion string
}

func (e Error) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Field != "" {
		fmt.Fprintf(&b, " in field '%s'", e.Field)
	}
	if e.Value != nil {
		fmt.Fprintf(&b, " (value: %v)", e.Value)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\nSuggestion: %s", e.Suggestion)
	}
	return b.String()
}

// Config holds the runtime configuration.
type Config struct {
	Path       string
	Logger     *logging.Logger
	Definition *Definition
}

// Definition mirrors the envresolve.yaml structure.
type Definition struct {
	Version    int                       `yaml:"version"`
	Providers  map[string]ProviderConfig `yaml:"providers,omitempty"`
	Resolution ResolutionConfig          `yaml:"resolution,omitempty"`
	EnvFiles   []string                  `yaml:"envFiles,omitempty"`
}

// ProviderConfig enables a provider scheme and carries its settings.
type ProviderConfig struct {
	Enabled         *bool  `yaml:"enabled,omitempty"`
	CredentialsFile string `yaml:"credentialsFile,omitempty"`
}

// IsEnabled reports whether the provider should be registered. An entry
// without an explicit enabled flag counts as enabled: listing a scheme is
// the opt-in.
func (p ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// ResolutionConfig carries the batch resolution policies.
type ResolutionConfig struct {
	Keys              []string `yaml:"keys,omitempty"`
	Prefix            string   `yaml:"prefix,omitempty"`
	IgnoreKeys        []string `yaml:"ignoreKeys,omitempty"`
	IgnorePatterns    []string `yaml:"ignorePatterns,omitempty"`
	OnExpansionError  string   `yaml:"onExpansionError,omitempty"`
	OnResolutionError string   `yaml:"onResolutionError,omitempty"`
	Overwrite         *bool    `yaml:"overwrite,omitempty"`
}

// configSchema validates the parsed document shape. Policies take "stop"
// or "skip"; provider keys must be known schemes.
const configSchema = `{
  "type": "object",
  "properties": {
    "version": {"type": "integer", "minimum": 0, "maximum": 0},
    "providers": {
      "type": "object",
      "propertyNames": {"enum": ["akv", "awssm", "awsps", "gcpsm", "keyring"]},
      "additionalProperties": {
        "type": "object",
        "properties": {
          "enabled": {"type": "boolean"},
          "credentialsFile": {"type": "string"}
        },
        "additionalProperties": false
      }
    },
    "resolution": {
      "type": "object",
      "properties": {
        "keys": {"type": "array", "items": {"type": "string"}},
        "prefix": {"type": "string"},
        "ignoreKeys": {"type": "array", "items": {"type": "string"}},
        "ignorePatterns": {"type": "array", "items": {"type": "string"}},
        "onExpansionError": {"enum": ["stop", "skip"]},
        "onResolutionError": {"enum": ["stop", "skip"]},
        "overwrite": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "envFiles": {"type": "array", "items": {"type": "string"}}
  },
  "additionalProperties": false
}`

// Load reads and validates the configuration file.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Error{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create an envresolve.yaml or pass --config with the right path",
			}
		}
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	if err := validateSchema(data); err != nil {
		return err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Error{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters",
		}
	}

	if def.Version != 0 {
		return Error{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your envresolve.yaml",
		}
	}

	c.Definition = &def
	return nil
}

// validateSchema checks the raw document against configSchema. The YAML
// is unmarshalled generically and re-marshalled to JSON, which is what
// the schema validator consumes.
func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Error{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters",
		}
	}
	if doc == nil {
		return nil
	}

	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to prepare configuration for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(jsonDoc),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var messages []string
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return Error{
			Message:    "configuration does not match the expected schema:\n  - " + strings.Join(messages, "\n  - "),
			Suggestion: "Compare your envresolve.yaml against the documented format",
		}
	}
	return nil
}

// Options translates the resolution section into resolver options.
func (c *Config) Options() []envresolve.Option {
	if c.Definition == nil {
		return nil
	}
	res := c.Definition.Resolution

	var opts []envresolve.Option
	if len(res.Keys) > 0 {
		opts = append(opts, envresolve.WithKeys(res.Keys...))
	}
	if res.Prefix != "" {
		opts = append(opts, envresolve.WithPrefix(res.Prefix))
	}
	if len(res.IgnoreKeys) > 0 {
		opts = append(opts, envresolve.WithIgnoreKeys(res.IgnoreKeys...))
	}
	if len(res.IgnorePatterns) > 0 {
		opts = append(opts, envresolve.WithIgnorePatterns(res.IgnorePatterns...))
	}
	if res.OnExpansionError == "skip" {
		opts = append(opts, envresolve.StopOnExpansionError(false))
	}
	if res.OnResolutionError == "skip" {
		opts = append(opts, envresolve.StopOnResolutionError(false))
	}
	if res.Overwrite != nil {
		opts = append(opts, envresolve.WithOverwrite(*res.Overwrite))
	}
	return opts
}

// EnabledSchemes returns the provider schemes the configuration enables,
// in the scheme table's order.
func (c *Config) EnabledSchemes() []string {
	if c.Definition == nil {
		return nil
	}
	var schemes []string
	for _, scheme := range secretref.Schemes() {
		if p, ok := c.Definition.Providers[scheme]; ok && p.IsEnabled() {
			schemes = append(schemes, scheme)
		}
	}
	return schemes
}
