package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// anthropicDefaultMaxTokens is applied when a request carries no token bound;
// the messages API rejects requests without one.
const anthropicDefaultMaxTokens = 1024

// anthropicClient talks to the Anthropic messages API
type anthropicClient struct {
	model   string
	apiKey  string
	baseURL string
	client  *resty.Client
}

func newAnthropicClient(cfg ProviderConfig) (*anthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Provider: cfg.Name, Reason: "missing API key"}
	}

	return &anthropicClient{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  newRESTClient(),
	}, nil
}

// Generate sends a messages request and returns the generated text
func (c *anthropicClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	request := map[string]interface{}{
		"model":       model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"temperature": opts.Temperature,
		"max_tokens":  maxTokens,
	}
	if opts.SystemInstruction != "" {
		request["system"] = opts.SystemInstruction
	}
	for k, v := range opts.Extra {
		request[k] = v
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", c.apiKey).
		SetHeader("anthropic-version", "2023-06-01").
		SetBody(request).
		Post(c.baseURL + "/messages")
	if err != nil {
		return "", fmt.Errorf("failed to call anthropic API: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("anthropic API returned status %d: %s", response.StatusCode(), response.String())
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse anthropic response: %w", err)
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic API returned no content")
	}

	return result.Content[0].Text, nil
}

// Model returns the configured default model name
func (c *anthropicClient) Model() string {
	return c.model
}

// Provider returns the symbolic provider name
func (c *anthropicClient) Provider() string {
	return ProviderAnthropic
}
