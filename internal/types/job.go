// Package types defines the request and response shapes of the v1 API
package types

import (
	"encoding/json"
	"fmt"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/models"
)

// CreateJobRequest is the body for the create-job endpoint
type CreateJobRequest struct {
	UserID          string          `json:"user_id"`
	AgentID         string          `json:"agent_identifier"`
	Title           string          `json:"title,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
	Priority        int             `json:"priority,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	ScheduleID      string          `json:"schedule_id,omitempty"`
	ExecutionSource string          `json:"execution_source,omitempty"`
}

// Validate ensures the request carries the required fields
func (r *CreateJobRequest) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if r.AgentID == "" {
		return fmt.Errorf("agent_identifier is required")
	}
	switch r.ExecutionSource {
	case "", models.ExecutionSourceManual, models.ExecutionSourceScheduled:
	default:
		return fmt.Errorf("invalid execution_source: %s", r.ExecutionSource)
	}
	return nil
}

// ToModel converts the request into a job model in pending status
func (r *CreateJobRequest) ToModel() *models.Job {
	return &models.Job{
		UserID:          r.UserID,
		AgentID:         r.AgentID,
		Title:           r.Title,
		Data:            r.Data,
		Priority:        r.Priority,
		Tags:            r.Tags,
		ScheduleID:      r.ScheduleID,
		ExecutionSource: r.ExecutionSource,
	}
}

// JobStatusResponse is the payload for the job status endpoint
type JobStatusResponse struct {
	JobID  string           `json:"job_id"`
	Status models.JobStatus `json:"status"`
}

// JobResultResponse is the payload for the job result endpoint
type JobResultResponse struct {
	JobID  string           `json:"job_id"`
	Status models.JobStatus `json:"status"`
	Result string           `json:"result,omitempty"`
	Error  string           `json:"error_message,omitempty"`
}

// ListJobsResponse is the payload for the list jobs endpoint
type ListJobsResponse struct {
	Jobs   []models.Job `json:"jobs"`
	Total  int64        `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// ProvidersResponse is the payload for the providers endpoint
type ProvidersResponse struct {
	Available []string `json:"available"`
	Default   string   `json:"default"`
}
