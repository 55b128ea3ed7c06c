// internal/auth/secretsmanager.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// SecretsManagerAPI is the subset of the Secrets Manager client used by SecretsManagerStore
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, input *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerStore reads credentials from AWS Secrets Manager.
// The secret string holds {"username": ..., "password": ...}.
type SecretsManagerStore struct {
	client SecretsManagerAPI
	prefix string
}

// SecretsManagerOption configures a SecretsManagerStore
type SecretsManagerOption func(*secretsManagerSettings)

type secretsManagerSettings struct {
	client SecretsManagerAPI
	region string
	prefix string
}

// WithSecretsManagerClient sets a custom client (useful for testing)
func WithSecretsManagerClient(c SecretsManagerAPI) SecretsManagerOption {
	return func(s *secretsManagerSettings) { s.client = c }
}

// WithRegion overrides the region from the default AWS config chain
func WithRegion(region string) SecretsManagerOption {
	return func(s *secretsManagerSettings) { s.region = region }
}

// WithSecretPrefix prepends prefix to every service name, e.g. "campaigner/"
func WithSecretPrefix(prefix string) SecretsManagerOption {
	return func(s *secretsManagerSettings) { s.prefix = prefix }
}

// NewSecretsManagerStore creates a store using the default AWS credential chain
func NewSecretsManagerStore(ctx context.Context, opts ...SecretsManagerOption) (*SecretsManagerStore, error) {
	var settings secretsManagerSettings
	for _, o := range opts {
		o(&settings)
	}

	if settings.client == nil {
		var loadOpts []func(*awsconfig.LoadOptions) error
		if settings.region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(settings.region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		settings.client = secretsmanager.NewFromConfig(cfg)
	}

	return &SecretsManagerStore{client: settings.client, prefix: settings.prefix}, nil
}

func (s *SecretsManagerStore) Lookup(ctx context.Context, service string) (Credential, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.prefix + service),
	})
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return Credential{}, fmt.Errorf("%w: %s", ErrCredentialNotFound, s.prefix+service)
		}
		return Credential{}, fmt.Errorf("reading secret %s: %w", s.prefix+service, err)
	}

	secret := aws.ToString(out.SecretString)
	if secret == "" {
		return Credential{}, fmt.Errorf("secret %s has no string value", s.prefix+service)
	}
	return decodeCredential(service, secret)
}
