// Package llm provides a single query interface over multiple independently
// configured LLM backends, with provider resolution, fallback, structured
// output coercion, and bounded batch concurrency.
package llm

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Symbolic provider names. The set is closed: providers are not registered
// dynamically at runtime.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderGrok      = "grok"
	ProviderDeepSeek  = "deepseek"
	ProviderLlama     = "llama"
)

// ProviderNames lists every known provider name
var ProviderNames = []string{
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderGoogle,
	ProviderGrok,
	ProviderDeepSeek,
	ProviderLlama,
}

// DefaultTemperature is applied when a request does not specify one
const DefaultTemperature = 0.7

// requestTimeout bounds every backend call so a hung backend cannot stall a
// sweep or batch indefinitely
const requestTimeout = 60 * time.Second

// GenerateOptions carries the per-request generation parameters. Translation
// to backend-specific field names is the adapter's responsibility.
type GenerateOptions struct {
	Model             string // overrides the client's configured model when set
	SystemInstruction string
	MaxTokens         int
	Temperature       float64
	Extra             map[string]interface{}
}

// Client is the uniform interface every provider backend adapter implements.
// Construction may fail with a *ConfigError when credentials are missing.
type Client interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Model() string
	Provider() string
}

// newClient constructs the backend adapter for a provider configuration
func newClient(cfg ProviderConfig) (Client, error) {
	switch cfg.Name {
	case ProviderOpenAI, ProviderGrok, ProviderDeepSeek, ProviderLlama:
		return newOpenAICompatClient(cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	case ProviderGoogle:
		return newGoogleClient(cfg)
	default:
		return nil, &ConfigError{Provider: cfg.Name, Reason: "unknown provider"}
	}
}

// newRESTClient creates the resty client shared by all adapters
func newRESTClient() *resty.Client {
	client := resty.New()
	client.SetTimeout(requestTimeout)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(1 * time.Second)
	client.SetRetryMaxWaitTime(5 * time.Second)
	return client
}
