package providers

import (
	"context"
	"fmt"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/systmms/envresolve/internal/logging"
	"github.com/systmms/envresolve/pkg/provider"
	"github.com/systmms/envresolve/pkg/secretref"
)

// gcpAccessFunc fetches a secret version payload by its full resource
// name. The indirection keeps the gax-flavored client signature out of the
// provider so tests can substitute a plain function.
type gcpAccessFunc func(ctx context.Context, name string) (string, error)

// GCPSecretManagerProvider resolves gcpsm:// references. The vault
// segment names the GCP project; the version query parameter selects a
// secret version and defaults to "latest".
type GCPSecretManagerProvider struct {
	mu      sync.Mutex
	access  gcpAccessFunc
	client  *secretmanager.Client
	keyFile string
	logger  *logging.Logger
}

// GCPSecretManagerOption configures the provider.
type GCPSecretManagerOption func(*GCPSecretManagerProvider)

// WithGCPCredentialsFile authenticates with a service account key file
// instead of application default credentials.
func WithGCPCredentialsFile(path string) GCPSecretManagerOption {
	return func(p *GCPSecretManagerProvider) {
		p.keyFile = path
	}
}

// WithGCPAccessFunc replaces the secret access function, for tests.
func WithGCPAccessFunc(access func(ctx context.Context, name string) (string, error)) GCPSecretManagerOption {
	return func(p *GCPSecretManagerProvider) {
		p.access = access
	}
}

// WithGCPLogger sets the provider's logger.
func WithGCPLogger(logger *logging.Logger) GCPSecretManagerOption {
	return func(p *GCPSecretManagerProvider) {
		p.logger = logger
	}
}

// NewGCPSecretManagerProvider creates the provider. The real client is
// created lazily on first resolution so that construction succeeds
// without GCP credentials present.
func NewGCPSecretManagerProvider(opts ...GCPSecretManagerOption) (*GCPSecretManagerProvider, error) {
	p := &GCPSecretManagerProvider{
		logger: logging.New(false, false),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Resolve fetches a secret version payload from GCP Secret Manager.
func (p *GCPSecretManagerProvider) Resolve(ctx context.Context, ref secretref.Reference) (string, error) {
	access, err := p.accessFunc(ctx)
	if err != nil {
		return "", err
	}

	version := ref.Version
	if version == "" {
		version = "latest"
	}
	name := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", ref.Vault, ref.Secret, version)

	p.logger.Debug("Accessing GCP secret: %s", logging.Secret(name))

	value, err := access(ctx, name)
	if err != nil {
		switch status.Code(err) {
		case codes.NotFound:
			return "", provider.NotFoundError{Provider: "gcp-secretmanager", Ref: ref}
		case codes.PermissionDenied, codes.Unauthenticated:
			return "", provider.AuthError{Provider: "gcp-secretmanager", Message: err.Error()}
		}
		return "", fmt.Errorf("secret manager access failed: %w", err)
	}
	return value, nil
}

func (p *GCPSecretManagerProvider) accessFunc(ctx context.Context) (gcpAccessFunc, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.access != nil {
		return p.access, nil
	}

	var clientOpts []option.ClientOption
	if p.keyFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(p.keyFile))
	}

	client, err := secretmanager.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Secret Manager client: %w", err)
	}
	p.client = client

	p.access = func(ctx context.Context, name string) (string, error) {
		resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		if err != nil {
			return "", err
		}
		return string(resp.GetPayload().GetData()), nil
	}
	return p.access, nil
}

// Close releases the underlying client connection if one was created.
func (p *GCPSecretManagerProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
