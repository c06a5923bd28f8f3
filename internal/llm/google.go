package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// googleClient talks to the Gemini generateContent API
type googleClient struct {
	model   string
	apiKey  string
	baseURL string
	client  *resty.Client
}

func newGoogleClient(cfg ProviderConfig) (*googleClient, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Provider: cfg.Name, Reason: "missing API key"}
	}

	return &googleClient{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  newRESTClient(),
	}, nil
}

// Generate sends a generateContent request and returns the generated text
func (c *googleClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}

	generationConfig := map[string]interface{}{
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		generationConfig["maxOutputTokens"] = opts.MaxTokens
	}

	request := map[string]interface{}{
		"contents": []map[string]interface{}{{
			"parts": []map[string]interface{}{{"text": prompt}},
		}},
		"generationConfig": generationConfig,
	}
	if opts.SystemInstruction != "" {
		request["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]interface{}{{"text": opts.SystemInstruction}},
		}
	}
	for k, v := range opts.Extra {
		request[k] = v
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", c.apiKey).
		SetBody(request).
		Post(c.baseURL + "/models/" + model + ":generateContent")
	if err != nil {
		return "", fmt.Errorf("failed to call google API: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("google API returned status %d: %s", response.StatusCode(), response.String())
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse google response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("google API returned no candidates")
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}

// Model returns the configured default model name
func (c *googleClient) Model() string {
	return c.model
}

// Provider returns the symbolic provider name
func (c *googleClient) Provider() string {
	return ProviderGoogle
}
