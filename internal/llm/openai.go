package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// openAICompatClient talks to any chat-completions compatible endpoint. It
// serves the openai, grok, deepseek and llama providers, which differ only in
// base URL, credentials and default model.
type openAICompatClient struct {
	provider string
	model    string
	apiKey   string
	baseURL  string
	client   *resty.Client
}

func newOpenAICompatClient(cfg ProviderConfig) (*openAICompatClient, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Provider: cfg.Name, Reason: "missing API key"}
	}
	if cfg.BaseURL == "" {
		return nil, &ConfigError{Provider: cfg.Name, Reason: "missing base URL"}
	}

	return &openAICompatClient{
		provider: cfg.Name,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		client:   newRESTClient(),
	}, nil
}

// Generate sends a chat-completions request and returns the generated text
func (c *openAICompatClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}

	messages := make([]map[string]string, 0, 2)
	if opts.SystemInstruction != "" {
		messages = append(messages, map[string]string{"role": "system", "content": opts.SystemInstruction})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	request := map[string]interface{}{
		"model":       model,
		"messages":    messages,
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		request["max_tokens"] = opts.MaxTokens
	}
	for k, v := range opts.Extra {
		request[k] = v
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(request).
		Post(c.baseURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to call %s API: %w", c.provider, err)
	}
	if response.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%s API returned status %d: %s", c.provider, response.StatusCode(), response.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse %s response: %w", c.provider, err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s API returned no choices", c.provider)
	}

	return result.Choices[0].Message.Content, nil
}

// Model returns the configured default model name
func (c *openAICompatClient) Model() string {
	return c.model
}

// Provider returns the symbolic provider name
func (c *openAICompatClient) Provider() string {
	return c.provider
}
