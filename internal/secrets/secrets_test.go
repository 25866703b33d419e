package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSecretGetter struct {
	values map[string]string
	calls  int
}

func (f *fakeSecretGetter) GetSecret(_ context.Context, name string, _ string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	f.calls++
	value, ok := f.values[name]
	if !ok {
		return azsecrets.GetSecretResponse{}, errors.New("SecretNotFound")
	}
	var resp azsecrets.GetSecretResponse
	resp.Value = &value
	return resp, nil
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		source      SecretSource
		environment string
		expected    SecretSource
	}{
		{SourceAuto, "development", SourceEnvironment},
		{SourceAuto, "", SourceEnvironment},
		{SourceAuto, "production", SourceVault},
		{"", "staging", SourceVault},
		{SourceEnvironment, "production", SourceEnvironment},
		{SourceVault, "development", SourceVault},
	}

	for _, tt := range tests {
		t.Run(string(tt.source)+"/"+tt.environment, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveSource(tt.source, tt.environment))
		})
	}
}

func TestVaultClient_CachesUntilTTL(t *testing.T) {
	getter := &fakeSecretGetter{values: map[string]string{"toolshelf-admin-secret": "s3cret"}}
	client := newVaultClient(getter, &VaultConfig{VaultName: "kv", CacheEnabled: true, CacheTTL: time.Minute}, zap.NewNop())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		value, err := client.GetSecret(context.Background(), "toolshelf-admin-secret")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", value)
	}
	assert.Equal(t, 1, getter.calls)

	now = now.Add(2 * time.Minute)
	_, err := client.GetSecret(context.Background(), "toolshelf-admin-secret")
	require.NoError(t, err)
	assert.Equal(t, 2, getter.calls)
}

func TestVaultClient_MissingSecret(t *testing.T) {
	getter := &fakeSecretGetter{values: map[string]string{}}
	client := newVaultClient(getter, &VaultConfig{VaultName: "kv"}, zap.NewNop())

	_, err := client.GetSecret(context.Background(), "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestProvider_EnvironmentSource(t *testing.T) {
	t.Setenv("TOOLSHELF_TEST_SECRET", "from-env")

	p, err := NewProvider(&ProviderConfig{Source: SourceEnvironment}, zap.NewNop())
	require.NoError(t, err)

	value, err := p.GetSecret(context.Background(), "TOOLSHELF_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)

	_, err = p.GetSecret(context.Background(), "TOOLSHELF_TEST_MISSING")
	assert.Error(t, err)
}

func TestProvider_GetSecretOrEnv_PrefersEnvironment(t *testing.T) {
	t.Setenv("ADMIN_SECRET", "override")

	p, err := NewProvider(&ProviderConfig{Source: SourceEnvironment}, zap.NewNop())
	require.NoError(t, err)

	value, err := p.GetSecretOrEnv(context.Background(), "toolshelf-admin-secret", "ADMIN_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "override", value)
}

func TestNewProvider_VaultRequiresName(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Source: SourceVault}, zap.NewNop())
	assert.Error(t, err)
}
