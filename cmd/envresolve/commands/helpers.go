package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/systmms/envresolve"
	"github.com/systmms/envresolve/internal/config"
	"github.com/systmms/envresolve/internal/logging"
	"github.com/systmms/envresolve/internal/providers"
	"github.com/systmms/envresolve/pkg/secretref"
)

// loadConfig loads the configuration file when one is present. An
// explicit --config path must exist; the default locations are optional.
func loadConfig(cfg *config.Config) error {
	if cfg.Path != "" {
		return cfg.Load()
	}

	for _, path := range config.DefaultPaths {
		if _, err := os.Stat(path); err == nil {
			cfg.Path = path
			return cfg.Load()
		}
	}
	return nil
}

// registerProviders registers the configured providers on the default
// resolver. Without a configuration file every provider is registered,
// so references of any supported scheme resolve out of the box.
func registerProviders(cfg *config.Config) error {
	schemes := secretref.Schemes()
	if cfg.Definition != nil && len(cfg.Definition.Providers) > 0 {
		schemes = cfg.EnabledSchemes()
	}

	for _, scheme := range schemes {
		var err error
		switch scheme {
		case secretref.SchemeAzureKeyVault:
			err = envresolve.RegisterAzureKeyVaultProvider(
				providers.WithAzureLogger(cfg.Logger))
		case secretref.SchemeAWSSecretsManager:
			err = envresolve.RegisterAWSSecretsManagerProvider(
				providers.WithAWSSecretsManagerLogger(cfg.Logger))
		case secretref.SchemeAWSParameterStore:
			err = envresolve.RegisterAWSParameterStoreProvider(
				providers.WithAWSParameterStoreLogger(cfg.Logger))
		case secretref.SchemeGCPSecretManager:
			opts := []providers.GCPSecretManagerOption{providers.WithGCPLogger(cfg.Logger)}
			if cfg.Definition != nil {
				if p, ok := cfg.Definition.Providers[scheme]; ok && p.CredentialsFile != "" {
					opts = append(opts, providers.WithGCPCredentialsFile(p.CredentialsFile))
				}
			}
			err = envresolve.RegisterGCPSecretManagerProvider(opts...)
		case secretref.SchemeKeyring:
			err = envresolve.RegisterKeyringProvider()
		}
		if err != nil {
			return fmt.Errorf("failed to register provider for scheme '%s': %w", scheme, err)
		}
	}
	return nil
}

// envFilePaths returns the .env files a command should load: the
// explicit --env-file value when given, otherwise the configuration's
// envFiles list.
func envFilePaths(cfg *config.Config, flagValue string) []string {
	if flagValue != "" {
		return []string{flagValue}
	}
	if cfg.Definition != nil {
		return cfg.Definition.EnvFiles
	}
	return nil
}

// loadEnvFiles resolves each file in order and merges the results,
// later files overriding earlier ones.
func loadEnvFiles(ctx context.Context, paths []string, opts []envresolve.Option) (map[string]string, error) {
	merged := make(map[string]string)
	for _, path := range paths {
		resolved, err := envresolve.LoadEnv(ctx, path, opts...)
		if err != nil {
			return nil, err
		}
		for key, value := range resolved {
			merged[key] = value
		}
	}
	return merged, nil
}

// setup loads the configuration and registers providers. Every command
// starts with this.
func setup(cfg *config.Config) error {
	if cfg.Logger == nil {
		cfg.Logger = logging.New(false, false)
	}
	if err := loadConfig(cfg); err != nil {
		return err
	}
	return registerProviders(cfg)
}
