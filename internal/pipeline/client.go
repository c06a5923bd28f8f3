// Package pipeline defines the contract with the external job execution
// queue and an HTTP client for it.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout is the default timeout for pipeline requests
const DefaultTimeout = 30 * time.Second

// SubmitRequest carries everything the queue needs to execute a job
type SubmitRequest struct {
	JobID     string          `json:"job_id"`
	UserID    string          `json:"user_id"`
	AgentName string          `json:"agent_name"`
	JobData   json.RawMessage `json:"job_data,omitempty"`
	Priority  int             `json:"priority"`
	Tags      []string        `json:"tags,omitempty"`
}

// Submitter hands a job to the external execution queue. A false return with
// a nil error is a recoverable rejection; a non-nil error is a transport
// fault. Callers treat both as a failed submission.
type Submitter interface {
	Submit(ctx context.Context, req SubmitRequest) (bool, error)
}

// HTTPSubmitter submits jobs to the pipeline service over HTTP
type HTTPSubmitter struct {
	baseURL string
	client  *resty.Client
}

// NewHTTPSubmitter creates a submitter targeting the pipeline service at the
// given base URL
func NewHTTPSubmitter(baseURL string) *HTTPSubmitter {
	client := resty.New()
	client.SetTimeout(DefaultTimeout)
	return &HTTPSubmitter{baseURL: baseURL, client: client}
}

// Submit posts the job to the pipeline's submission endpoint
func (s *HTTPSubmitter) Submit(ctx context.Context, req SubmitRequest) (bool, error) {
	var result struct {
		Accepted bool `json:"accepted"`
	}

	response, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post(s.baseURL + "/jobs/submit")
	if err != nil {
		return false, fmt.Errorf("failed to reach pipeline service: %w", err)
	}

	// A non-2xx response is a recoverable rejection, not a transport fault
	if response.IsError() {
		return false, nil
	}
	return result.Accepted, nil
}
