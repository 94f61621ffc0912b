package providers_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/envresolve/internal/providers"
	"github.com/systmms/envresolve/pkg/provider"
	"github.com/systmms/envresolve/pkg/secretref"
)

type fakeSSMClient struct {
	params    map[string]string
	lastInput *ssm.GetParameterInput
}

func (f *fakeSSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.lastInput = params
	value, ok := f.params[aws.ToString(params.Name)]
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{}
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{Value: aws.String(value)},
	}, nil
}

func newParameterStoreProvider(t *testing.T, client providers.AWSParameterStoreClientAPI) *providers.AWSParameterStoreProvider {
	t.Helper()
	p, err := providers.NewAWSParameterStoreProvider(
		providers.WithAWSParameterStoreClientFactory(func(ctx context.Context, region string) (providers.AWSParameterStoreClientAPI, error) {
			return client, nil
		}),
	)
	require.NoError(t, err)
	return p
}

func TestAWSParameterStoreProviderResolve(t *testing.T) {
	t.Parallel()

	client := &fakeSSMClient{params: map[string]string{
		"plain":          "plain-value",
		"/app/db/host":   "db.internal",
		"/app/db/port:3": "5433",
	}}
	p := newParameterStoreProvider(t, client)
	ctx := context.Background()

	tests := []struct {
		name     string
		ref      secretref.Reference
		want     string
		wantName string
	}{
		{
			name:     "simple name passed through",
			ref:      secretref.Reference{Scheme: "awsps", Vault: "us-east-1", Secret: "plain"},
			want:     "plain-value",
			wantName: "plain",
		},
		{
			name:     "hierarchical name gains leading slash",
			ref:      secretref.Reference{Scheme: "awsps", Vault: "us-east-1", Secret: "app/db/host"},
			want:     "db.internal",
			wantName: "/app/db/host",
		},
		{
			name:     "version appended with colon",
			ref:      secretref.Reference{Scheme: "awsps", Vault: "us-east-1", Secret: "/app/db/port", Version: "3"},
			want:     "5433",
			wantName: "/app/db/port:3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Resolve(ctx, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantName, aws.ToString(client.lastInput.Name))
			assert.True(t, aws.ToBool(client.lastInput.WithDecryption))
		})
	}
}

func TestAWSParameterStoreProviderNotFound(t *testing.T) {
	t.Parallel()

	p := newParameterStoreProvider(t, &fakeSSMClient{})

	_, err := p.Resolve(context.Background(), secretref.Reference{
		Scheme: "awsps", Vault: "us-east-1", Secret: "missing",
	})
	require.Error(t, err)
	var notFound provider.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
