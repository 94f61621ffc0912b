package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/systmms/envresolve/internal/logging"
	"github.com/systmms/envresolve/pkg/provider"
	"github.com/systmms/envresolve/pkg/secretref"
)

// AWSSecretsManagerClientAPI is the subset of the Secrets Manager client
// the provider uses.
type AWSSecretsManagerClientAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManagerClientFactory builds a client for a region.
type AWSSecretsManagerClientFactory func(ctx context.Context, region string) (AWSSecretsManagerClientAPI, error)

// AWSSecretsManagerProvider resolves awssm:// references. The vault
// segment names the AWS region; clients are created per region on first
// use. The optional version query parameter maps to the secret VersionId.
type AWSSecretsManagerProvider struct {
	mu        sync.Mutex
	clients   map[string]AWSSecretsManagerClientAPI
	newClient AWSSecretsManagerClientFactory
	logger    *logging.Logger
}

// AWSSecretsManagerOption configures the provider.
type AWSSecretsManagerOption func(*AWSSecretsManagerProvider)

// WithAWSSecretsManagerClientFactory replaces the client factory, for tests.
func WithAWSSecretsManagerClientFactory(factory AWSSecretsManagerClientFactory) AWSSecretsManagerOption {
	return func(p *AWSSecretsManagerProvider) {
		p.newClient = factory
	}
}

// WithAWSSecretsManagerLogger sets the provider's logger.
func WithAWSSecretsManagerLogger(logger *logging.Logger) AWSSecretsManagerOption {
	return func(p *AWSSecretsManagerProvider) {
		p.logger = logger
	}
}

// NewAWSSecretsManagerProvider creates the provider. The default client
// factory loads the ambient AWS configuration (shared config files,
// environment, IMDS) pinned to the region from the reference.
func NewAWSSecretsManagerProvider(opts ...AWSSecretsManagerOption) (*AWSSecretsManagerProvider, error) {
	p := &AWSSecretsManagerProvider{
		clients: make(map[string]AWSSecretsManagerClientAPI),
		logger:  logging.New(false, false),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.newClient == nil {
		p.newClient = func(ctx context.Context, region string) (AWSSecretsManagerClientAPI, error) {
			cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
			if err != nil {
				return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
			}
			return secretsmanager.NewFromConfig(cfg), nil
		}
	}

	return p, nil
}

// Resolve fetches a secret value from AWS Secrets Manager.
func (p *AWSSecretsManagerProvider) Resolve(ctx context.Context, ref secretref.Reference) (string, error) {
	client, err := p.clientFor(ctx, ref.Vault)
	if err != nil {
		return "", err
	}

	p.logger.Debug("Accessing AWS Secrets Manager secret in %s: %s", ref.Vault, logging.Secret(ref.Secret))

	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(ref.Secret),
	}
	if ref.Version != "" {
		input.VersionId = aws.String(ref.Version)
	}

	out, err := client.GetSecretValue(ctx, input)
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", provider.NotFoundError{Provider: "aws-secretsmanager", Ref: ref}
		}
		return "", fmt.Errorf("secrets manager access failed: %w", err)
	}

	if out.SecretString == nil {
		return "", fmt.Errorf("secret '%s' has no string value", ref.Secret)
	}
	return *out.SecretString, nil
}

func (p *AWSSecretsManagerProvider) clientFor(ctx context.Context, region string) (AWSSecretsManagerClientAPI, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[region]; ok {
		return client, nil
	}

	client, err := p.newClient(ctx, region)
	if err != nil {
		return nil, err
	}
	p.clients[region] = client
	return client, nil
}
