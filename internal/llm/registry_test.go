package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClient is an in-memory backend for dispatcher and registry tests
type fakeClient struct {
	provider string
	model    string
	generate func(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

func (f *fakeClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	return f.generate(ctx, prompt, opts)
}

func (f *fakeClient) Model() string    { return f.model }
func (f *fakeClient) Provider() string { return f.provider }

// echoClient returns a fake client that echoes its prompt
func echoClient(provider string) *fakeClient {
	return &fakeClient{
		provider: provider,
		model:    "fake-model",
		generate: func(_ context.Context, prompt string, _ GenerateOptions) (string, error) {
			return provider + ": " + prompt, nil
		},
	}
}

func testConfigs(names ...string) map[string]ProviderConfig {
	configs := make(map[string]ProviderConfig, len(names))
	for _, name := range names {
		configs[name] = ProviderConfig{Name: name, Model: "fake-model", APIKey: "key"}
	}
	return configs
}

func TestRegistryLazyConstruction(t *testing.T) {
	constructed := 0
	registry := NewRegistry(testConfigs(ProviderOpenAI), ProviderOpenAI)
	registry.factory = func(cfg ProviderConfig) (Client, error) {
		constructed++
		return echoClient(cfg.Name), nil
	}

	// Nothing is constructed until first use
	require.Zero(t, constructed)

	first, err := registry.Client(ProviderOpenAI)
	require.NoError(t, err)
	require.Equal(t, 1, constructed)

	// Second lookup hits the cache
	second, err := registry.Client(ProviderOpenAI)
	require.NoError(t, err)
	require.Equal(t, 1, constructed)
	require.Same(t, first.(*fakeClient), second.(*fakeClient))
}

func TestRegistryUnknownProvider(t *testing.T) {
	registry := NewRegistry(testConfigs(ProviderOpenAI), ProviderOpenAI)

	_, err := registry.Client("mistral")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "mistral", cfgErr.Provider)
}

func TestRegistryFailureCooldown(t *testing.T) {
	now := time.Now()
	attempts := 0

	registry := NewRegistry(testConfigs(ProviderAnthropic), ProviderAnthropic)
	registry.now = func() time.Time { return now }
	registry.factory = func(_ ProviderConfig) (Client, error) {
		attempts++
		return nil, &ConfigError{Provider: ProviderAnthropic, Reason: "missing API key"}
	}

	_, err := registry.Client(ProviderAnthropic)
	require.Error(t, err)
	require.Equal(t, 1, attempts)

	// Within the cooldown the cached failure is returned without re-probing
	now = now.Add(30 * time.Second)
	_, err = registry.Client(ProviderAnthropic)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "missing API key", cfgErr.Reason)
	require.Equal(t, 1, attempts)

	// After the cooldown the provider is probed again
	now = now.Add(31 * time.Second)
	_, err = registry.Client(ProviderAnthropic)
	require.Error(t, err)
	require.Equal(t, 2, attempts)
}

func TestRegistryRecoversAfterCooldown(t *testing.T) {
	now := time.Now()
	healthy := false

	registry := NewRegistry(testConfigs(ProviderGoogle), ProviderGoogle)
	registry.now = func() time.Time { return now }
	registry.factory = func(cfg ProviderConfig) (Client, error) {
		if !healthy {
			return nil, errors.New("backend unreachable")
		}
		return echoClient(cfg.Name), nil
	}

	_, err := registry.Client(ProviderGoogle)
	require.Error(t, err)

	// The key arrives while the failure is still cached
	healthy = true
	_, err = registry.Client(ProviderGoogle)
	require.Error(t, err)

	now = now.Add(DefaultProbeCooldown + time.Second)
	client, err := registry.Client(ProviderGoogle)
	require.NoError(t, err)
	require.Equal(t, ProviderGoogle, client.Provider())
}

func TestRegistryAvailable(t *testing.T) {
	registry := NewRegistry(testConfigs(ProviderOpenAI, ProviderAnthropic, ProviderGrok), ProviderOpenAI)
	registry.factory = func(cfg ProviderConfig) (Client, error) {
		if cfg.Name == ProviderGrok {
			return nil, &ConfigError{Provider: cfg.Name, Reason: "missing API key"}
		}
		return echoClient(cfg.Name), nil
	}

	require.Equal(t, []string{ProviderAnthropic, ProviderOpenAI}, registry.Available())
}

func TestRegistryDefaultProvider(t *testing.T) {
	registry := NewRegistry(testConfigs(ProviderOpenAI, ProviderDeepSeek), ProviderOpenAI)
	require.Equal(t, ProviderOpenAI, registry.DefaultProvider())

	registry.SetDefaultProvider(ProviderDeepSeek)
	require.Equal(t, ProviderDeepSeek, registry.DefaultProvider())
}
