package llm

import (
	"github.com/dmautz1/ai-agent-platform-sub002/config"
)

// ProviderConfig describes one LLM backend: its symbolic name, default model,
// credentials and endpoint. Credentials are static configuration; whether
// they actually work is discovered lazily by the registry.
type ProviderConfig struct {
	Name    string
	Model   string
	APIKey  string
	BaseURL string
}

// ConfigsFromEnv builds the configuration for every known provider from
// environment variables. A provider with no API key set is still listed; its
// construction will fail and the registry will record it as unavailable.
func ConfigsFromEnv() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		ProviderOpenAI: {
			Name:    ProviderOpenAI,
			Model:   config.GetEnv("OPENAI_MODEL", "gpt-4o"),
			APIKey:  config.GetEnv("OPENAI_API_KEY", ""),
			BaseURL: config.GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
		ProviderAnthropic: {
			Name:    ProviderAnthropic,
			Model:   config.GetEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			APIKey:  config.GetEnv("ANTHROPIC_API_KEY", ""),
			BaseURL: config.GetEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
		},
		ProviderGoogle: {
			Name:    ProviderGoogle,
			Model:   config.GetEnv("GOOGLE_MODEL", "gemini-2.0-flash"),
			APIKey:  config.GetEnv("GOOGLE_API_KEY", ""),
			BaseURL: config.GetEnv("GOOGLE_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		},
		ProviderGrok: {
			Name:    ProviderGrok,
			Model:   config.GetEnv("GROK_MODEL", "grok-2-latest"),
			APIKey:  config.GetEnv("GROK_API_KEY", ""),
			BaseURL: config.GetEnv("GROK_BASE_URL", "https://api.x.ai/v1"),
		},
		ProviderDeepSeek: {
			Name:    ProviderDeepSeek,
			Model:   config.GetEnv("DEEPSEEK_MODEL", "deepseek-chat"),
			APIKey:  config.GetEnv("DEEPSEEK_API_KEY", ""),
			BaseURL: config.GetEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		},
		ProviderLlama: {
			Name:    ProviderLlama,
			Model:   config.GetEnv("LLAMA_MODEL", "Llama-3.3-70B-Instruct"),
			APIKey:  config.GetEnv("LLAMA_API_KEY", ""),
			BaseURL: config.GetEnv("LLAMA_BASE_URL", "https://api.llama.com/compat/v1"),
		},
	}
}
