package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/models"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/repos"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/events"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/llm"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/logger"
)

// AgentSimplePrompt is the built-in agent that forwards the job's prompt to
// the dispatcher as-is
const AgentSimplePrompt = "simple_prompt"

// jobPayload is the job data document the built-in agents understand
type jobPayload struct {
	Prompt            string   `json:"prompt"`
	Provider          string   `json:"provider,omitempty"`
	Model             string   `json:"model,omitempty"`
	SystemInstruction string   `json:"system_instruction,omitempty"`
	MaxTokens         int      `json:"max_tokens,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
}

// Executor runs a job in-process: it marks the job running, obtains a model
// response through the dispatcher, and persists the terminal status. A
// completed job always carries a result, a failed job always carries an
// error message.
type Executor struct {
	repo       *repos.JobRepository
	dispatcher *llm.Dispatcher
}

// NewExecutor creates a new executor
func NewExecutor(repo *repos.JobRepository, dispatcher *llm.Dispatcher) *Executor {
	return &Executor{repo: repo, dispatcher: dispatcher}
}

// ExecuteJob runs one pending job through its agent. The terminal status is
// persisted before the error, if any, is returned.
func (e *Executor) ExecuteJob(ctx context.Context, job *models.Job) error {
	if job.Status != models.JobStatusPending {
		return fmt.Errorf("job %s is not pending (status: %s)", job.ID, job.Status)
	}

	if err := e.repo.UpdateStatus(ctx, job.ID, models.JobStatusRunning, "", ""); err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}

	result, err := e.runAgent(ctx, job)
	if err != nil {
		if updateErr := e.repo.UpdateStatus(ctx, job.ID, models.JobStatusFailed, "", err.Error()); updateErr != nil {
			logger.ErrorWithFields("Failed to persist job failure", map[string]interface{}{
				"job_id": job.ID,
				"error":  updateErr.Error(),
			})
		}
		events.Publish(events.Event{
			Type:    events.EventJobFailed,
			JobID:   job.ID,
			UserID:  job.UserID,
			AgentID: job.AgentID,
			Detail:  err.Error(),
		})
		return err
	}

	if err := e.repo.UpdateStatus(ctx, job.ID, models.JobStatusCompleted, result, ""); err != nil {
		return fmt.Errorf("failed to persist job result: %w", err)
	}

	logger.InfoWithFields("Job completed", map[string]interface{}{
		"job_id": job.ID,
		"agent":  job.AgentID,
	})
	events.Publish(events.Event{
		Type:    events.EventJobCompleted,
		JobID:   job.ID,
		UserID:  job.UserID,
		AgentID: job.AgentID,
	})
	return nil
}

// runAgent dispatches the job to its agent implementation
func (e *Executor) runAgent(ctx context.Context, job *models.Job) (string, error) {
	switch job.AgentID {
	case AgentSimplePrompt:
		return e.runSimplePrompt(ctx, job)
	default:
		return "", fmt.Errorf("unknown agent: %s", job.AgentID)
	}
}

func (e *Executor) runSimplePrompt(ctx context.Context, job *models.Job) (string, error) {
	var payload jobPayload
	if len(job.Data) > 0 {
		if err := json.Unmarshal(job.Data, &payload); err != nil {
			return "", fmt.Errorf("invalid job payload: %w", err)
		}
	}
	if payload.Prompt == "" {
		return "", fmt.Errorf("job payload has no prompt")
	}

	return e.dispatcher.Query(ctx, llm.QueryRequest{
		Prompt:            payload.Prompt,
		Provider:          payload.Provider,
		Model:             payload.Model,
		SystemInstruction: payload.SystemInstruction,
		MaxTokens:         payload.MaxTokens,
		Temperature:       payload.Temperature,
	})
}
