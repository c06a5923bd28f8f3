// Package client provides a Go client for the v1 API, used by the CLI
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/api/v1/routes"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/models"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/services"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/types"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Client defines the interface for interacting with the API
type Client interface {
	CreateJob(ctx context.Context, req types.CreateJobRequest) (*models.Job, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	GetJobResult(ctx context.Context, id string) (*types.JobResultResponse, error)
	ListJobs(ctx context.Context, status string, limit, offset int) (*types.ListJobsResponse, error)
	ListProviders(ctx context.Context) (*types.ProvidersResponse, error)
	RunSweep(ctx context.Context, dryRun bool) (*services.RepairSummary, error)
	HealthCheck(ctx context.Context) (map[string]string, error)
}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string
	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	return &APIClient{baseURL: opts.BaseURL, timeout: opts.Timeout}, nil
}

// createAgent creates a new fiber agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodPut:
		agent = fiber.Put(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")
	if body != nil {
		agent.JSON(body)
	}
	return agent, nil
}

// envelope mirrors the server's response envelope with the data left raw so
// each method can decode its own payload type
type envelope struct {
	Slug  string          `json:"slug"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// executeRequest sends the request and decodes the envelope's data into out
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, out interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	statusCode, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	if statusCode < 200 || statusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = "unknown error"
		}
		return &fiber.Error{Code: statusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("error decoding response data: %w", err)
		}
	}
	return nil
}

// CreateJob creates a new job
func (c *APIClient) CreateJob(ctx context.Context, req types.CreateJobRequest) (*models.Job, error) {
	var job models.Job
	if err := c.executeRequest(ctx, http.MethodPost, routes.APIv1Prefix+"/jobs/", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob retrieves a job by ID
func (c *APIClient) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := c.executeRequest(ctx, http.MethodGet, routes.APIv1Prefix+"/jobs/"+id, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJobResult retrieves a job's terminal result
func (c *APIClient) GetJobResult(ctx context.Context, id string) (*types.JobResultResponse, error) {
	var result types.JobResultResponse
	if err := c.executeRequest(ctx, http.MethodGet, routes.APIv1Prefix+"/jobs/"+id+"/result", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListJobs retrieves a page of jobs, optionally filtered by status
func (c *APIClient) ListJobs(ctx context.Context, status string, limit, offset int) (*types.ListJobsResponse, error) {
	endpoint := fmt.Sprintf("%s/jobs/?limit=%d&offset=%d", routes.APIv1Prefix, limit, offset)
	if status != "" {
		endpoint += "&status=" + url.QueryEscape(status)
	}
	var result types.ListJobsResponse
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListProviders retrieves the available LLM providers
func (c *APIClient) ListProviders(ctx context.Context) (*types.ProvidersResponse, error) {
	var result types.ProvidersResponse
	if err := c.executeRequest(ctx, http.MethodGet, routes.APIv1Prefix+"/providers/", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RunSweep triggers a stuck-job recovery sweep
func (c *APIClient) RunSweep(ctx context.Context, dryRun bool) (*services.RepairSummary, error) {
	endpoint := routes.APIv1Prefix + "/recovery/sweep"
	if dryRun {
		endpoint += "?dry_run=true"
	}
	var summary services.RepairSummary
	if err := c.executeRequest(ctx, http.MethodPost, endpoint, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// HealthCheck checks whether the API is reachable
func (c *APIClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	agent, err := c.createAgent(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	statusCode, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode != http.StatusOK {
		return nil, &fiber.Error{Code: statusCode, Message: "health check failed"}
	}
	var result map[string]string
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return result, nil
}
