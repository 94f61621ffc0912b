package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/systmms/envresolve/internal/logging"
	"github.com/systmms/envresolve/pkg/provider"
	"github.com/systmms/envresolve/pkg/secretref"
)

// AWSParameterStoreClientAPI is the subset of the SSM client the provider
// uses.
type AWSParameterStoreClientAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// AWSParameterStoreClientFactory builds a client for a region.
type AWSParameterStoreClientFactory func(ctx context.Context, region string) (AWSParameterStoreClientAPI, error)

// AWSParameterStoreProvider resolves awsps:// references against SSM
// Parameter Store. The vault segment names the region. Hierarchical
// parameter names keep their inner slashes; a leading slash is added when
// the name is hierarchical but the reference omitted it, since SSM
// requires absolute paths for such names.
type AWSParameterStoreProvider struct {
	mu        sync.Mutex
	clients   map[string]AWSParameterStoreClientAPI
	newClient AWSParameterStoreClientFactory
	logger    *logging.Logger
}

// AWSParameterStoreOption configures the provider.
type AWSParameterStoreOption func(*AWSParameterStoreProvider)

// WithAWSParameterStoreClientFactory replaces the client factory, for tests.
func WithAWSParameterStoreClientFactory(factory AWSParameterStoreClientFactory) AWSParameterStoreOption {
	return func(p *AWSParameterStoreProvider) {
		p.newClient = factory
	}
}

// WithAWSParameterStoreLogger sets the provider's logger.
func WithAWSParameterStoreLogger(logger *logging.Logger) AWSParameterStoreOption {
	return func(p *AWSParameterStoreProvider) {
		p.logger = logger
	}
}

// NewAWSParameterStoreProvider creates the provider.
func NewAWSParameterStoreProvider(opts ...AWSParameterStoreOption) (*AWSParameterStoreProvider, error) {
	p := &AWSParameterStoreProvider{
		clients: make(map[string]AWSParameterStoreClientAPI),
		logger:  logging.New(false, false),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.newClient == nil {
		p.newClient = func(ctx context.Context, region string) (AWSParameterStoreClientAPI, error) {
			cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
			if err != nil {
				return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
			}
			return ssm.NewFromConfig(cfg), nil
		}
	}

	return p, nil
}

// Resolve fetches a parameter value with decryption enabled, so
// SecureString parameters come back as plaintext.
func (p *AWSParameterStoreProvider) Resolve(ctx context.Context, ref secretref.Reference) (string, error) {
	client, err := p.clientFor(ctx, ref.Vault)
	if err != nil {
		return "", err
	}

	name := ref.Secret
	if strings.Contains(name, "/") && !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	// SSM addresses versions as name:version.
	if ref.Version != "" {
		name = name + ":" + ref.Version
	}

	p.logger.Debug("Accessing SSM parameter in %s: %s", ref.Vault, logging.Secret(name))

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", provider.NotFoundError{Provider: "aws-parameterstore", Ref: ref}
		}
		var versionNotFound *ssmtypes.ParameterVersionNotFound
		if errors.As(err, &versionNotFound) {
			return "", provider.NotFoundError{Provider: "aws-parameterstore", Ref: ref}
		}
		return "", fmt.Errorf("parameter store access failed: %w", err)
	}

	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parameter '%s' has no value", ref.Secret)
	}
	return *out.Parameter.Value, nil
}

func (p *AWSParameterStoreProvider) clientFor(ctx context.Context, region string) (AWSParameterStoreClientAPI, error) {
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
