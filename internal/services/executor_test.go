package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/models"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/llm"
)

// newChatCompletionsServer serves an OpenAI-compatible chat completions
// endpoint that always replies with the given content
func newChatCompletionsServer(t *testing.T, statusCode int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

// newTestExecutor wires an executor against the given model backend URL
func newTestExecutor(ts *TestSetup, baseURL string) *Executor {
	registry := llm.NewRegistry(map[string]llm.ProviderConfig{
		llm.ProviderOpenAI: {
			Name:    llm.ProviderOpenAI,
			Model:   "gpt-4o",
			APIKey:  "test-key",
			BaseURL: baseURL,
		},
	}, llm.ProviderOpenAI)
	return NewExecutor(ts.JobRepo, llm.NewDispatcher(registry))
}

func createPendingJob(ts *TestSetup, agentID string, data json.RawMessage) *models.Job {
	job := &models.Job{
		UserID:  "user-1",
		AgentID: agentID,
		Data:    data,
	}
	err := ts.JobRepo.Create(ts.ctx, job)
	require.NoError(ts.t, err)
	return job
}

func TestExecuteJob_Completes(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	server := newChatCompletionsServer(t, http.StatusOK, "The capital of France is Paris.")
	defer server.Close()

	executor := newTestExecutor(ts, server.URL)
	job := createPendingJob(ts, AgentSimplePrompt, json.RawMessage(`{"prompt": "What is the capital of France?"}`))

	err := executor.ExecuteJob(ts.ctx, job)
	require.NoError(t, err)

	done := ts.GetJob(job.ID)
	assert.Equal(t, models.JobStatusCompleted, done.Status)
	assert.Equal(t, "The capital of France is Paris.", done.Result)
	assert.Empty(t, done.Error)
}

func TestExecuteJob_BackendFailure(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	server := newChatCompletionsServer(t, http.StatusInternalServerError, "")
	defer server.Close()

	executor := newTestExecutor(ts, server.URL)
	job := createPendingJob(ts, AgentSimplePrompt, json.RawMessage(`{"prompt": "hello"}`))

	err := executor.ExecuteJob(ts.ctx, job)
	require.Error(t, err)

	failed := ts.GetJob(job.ID)
	assert.Equal(t, models.JobStatusFailed, failed.Status)
	assert.NotEmpty(t, failed.Error)
}

func TestExecuteJob_UnknownAgent(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	executor := newTestExecutor(ts, "http://localhost:0")
	job := createPendingJob(ts, "web_scraper", json.RawMessage(`{"prompt": "hello"}`))

	err := executor.ExecuteJob(ts.ctx, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown agent")

	failed := ts.GetJob(job.ID)
	assert.Equal(t, models.JobStatusFailed, failed.Status)
	assert.Contains(t, failed.Error, "unknown agent: web_scraper")
}

func TestExecuteJob_MissingPrompt(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	executor := newTestExecutor(ts, "http://localhost:0")
	job := createPendingJob(ts, AgentSimplePrompt, nil)

	err := executor.ExecuteJob(ts.ctx, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no prompt")

	assert.Equal(t, models.JobStatusFailed, ts.GetJob(job.ID).Status)
}

func TestExecuteJob_RejectsNonPending(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	executor := newTestExecutor(ts, "http://localhost:0")
	job := createPendingJob(ts, AgentSimplePrompt, json.RawMessage(`{"prompt": "hello"}`))
	require.NoError(t, ts.JobRepo.UpdateStatus(ts.ctx, job.ID, models.JobStatusCompleted, "done", ""))
	job.Status = models.JobStatusCompleted

	err := executor.ExecuteJob(ts.ctx, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not pending")

	// The stored result is untouched
	assert.Equal(t, "done", ts.GetJob(job.ID).Result)
}
