package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringStore_RoundTrip(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()
	store := KeyringStore{}

	_, err := store.Lookup(ctx, "rakuten")
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	require.NoError(t, store.Store(ctx, "rakuten", Credential{Username: "user", Password: "pass"}))

	cred, err := store.Lookup(ctx, "rakuten")
	require.NoError(t, err)
	assert.Equal(t, Credential{Username: "user", Password: "pass"}, cred)

	require.NoError(t, store.Delete(ctx, "rakuten"))
	assert.ErrorIs(t, store.Delete(ctx, "rakuten"), ErrCredentialNotFound)
}

func TestKeyringStore_RejectsIncomplete(t *testing.T) {
	keyring.MockInit()
	store := KeyringStore{}

	assert.Error(t, store.Store(context.Background(), "rakuten", Credential{Username: "user"}))

	require.NoError(t, keyring.Set("rakuten", keyringUser, "not json"))
	_, err := store.Lookup(context.Background(), "rakuten")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrCredentialNotFound))
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "creds")
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Lookup(ctx, "rakuten")
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	require.NoError(t, store.Store(ctx, "rakuten", Credential{Username: "u", Password: "p"}))

	info, err := os.Stat(filepath.Join(dir, "rakuten.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cred, err := store.Lookup(ctx, "rakuten")
	require.NoError(t, err)
	assert.Equal(t, "u", cred.Username)

	require.NoError(t, store.Delete(ctx, "rakuten"))
	assert.ErrorIs(t, store.Delete(ctx, "rakuten"), ErrCredentialNotFound)
}

type fakeSecrets struct {
	values map[string]string
	asked  []string
}

func (f *fakeSecrets) GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	id := aws.ToString(in.SecretId)
	f.asked = append(f.asked, id)
	v, ok := f.values[id]
	if !ok {
		return nil, &smtypes.ResourceNotFoundException{Message: aws.String("not found")}
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(v)}, nil
}

func TestSecretsManagerStore(t *testing.T) {
	fake := &fakeSecrets{values: map[string]string{
		"campaigner/rakuten": `{"username":"u","password":"p"}`,
	}}
	store, err := NewSecretsManagerStore(context.Background(), WithSecretsManagerClient(fake), WithSecretPrefix("campaigner/"))
	require.NoError(t, err)

	cred, err := store.Lookup(context.Background(), "rakuten")
	require.NoError(t, err)
	assert.Equal(t, Credential{Username: "u", Password: "p"}, cred)

	_, err = store.Lookup(context.Background(), "other")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
	assert.Equal(t, []string{"campaigner/rakuten", "campaigner/other"}, fake.asked)
}
