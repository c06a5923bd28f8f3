package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobStatus(t *testing.T) {
	status, err := ParseJobStatus("pending")
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, status)

	status, err = ParseJobStatus("failed")
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, status)

	_, err = ParseJobStatus("bogus")
	require.Error(t, err)
}

func TestJobStatusString(t *testing.T) {
	assert.Equal(t, "pending", JobStatusPending.String())
	assert.Equal(t, "completed", JobStatusCompleted.String())
	assert.Equal(t, "unknown", JobStatus(42).String())
}

func TestJobStatusIsTerminal(t *testing.T) {
	assert.False(t, JobStatusPending.IsTerminal())
	assert.False(t, JobStatusRunning.IsTerminal())
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusFailed.IsTerminal())
}

func TestJobStatusJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(JobStatusRunning)
	require.NoError(t, err)
	assert.Equal(t, `"running"`, string(data))

	var status JobStatus
	require.NoError(t, json.Unmarshal([]byte(`"failed"`), &status))
	assert.Equal(t, JobStatusFailed, status)

	require.Error(t, json.Unmarshal([]byte(`"bogus"`), &status))
}

func TestJobValidate(t *testing.T) {
	job := Job{UserID: "user-1", AgentID: "simple_prompt"}
	assert.NoError(t, job.Validate())

	assert.Error(t, (&Job{AgentID: "simple_prompt"}).Validate())
	assert.Error(t, (&Job{UserID: "user-1"}).Validate())
}

func TestJobBeforeCreateDefaults(t *testing.T) {
	job := Job{UserID: "user-1", AgentID: "simple_prompt"}
	require.NoError(t, job.BeforeCreate(nil))

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, ExecutionSourceManual, job.ExecutionSource)

	// Explicit values survive the hook
	scheduled := Job{
		ID:              "fixed-id",
		UserID:          "user-1",
		AgentID:         "simple_prompt",
		Status:          JobStatusRunning,
		ExecutionSource: ExecutionSourceScheduled,
	}
	require.NoError(t, scheduled.BeforeCreate(nil))
	assert.Equal(t, "fixed-id", scheduled.ID)
	assert.Equal(t, JobStatusRunning, scheduled.Status)
	assert.Equal(t, ExecutionSourceScheduled, scheduled.ExecutionSource)
}

func TestJobAge(t *testing.T) {
	now := time.Now()
	job := Job{CreatedAt: now.Add(-90 * time.Minute)}
	assert.InDelta(t, 1.5, job.Age(now).Hours(), 0.001)
}
