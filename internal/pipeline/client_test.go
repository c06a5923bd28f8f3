package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAccepted(t *testing.T) {
	var received SubmitRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/submit", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accepted": true}`))
	}))
	defer server.Close()

	submitter := NewHTTPSubmitter(server.URL)
	ok, err := submitter.Submit(context.Background(), SubmitRequest{
		JobID:     "job-1",
		UserID:    "user-1",
		AgentName: "simple_prompt",
		JobData:   json.RawMessage(`{"prompt": "hi"}`),
		Priority:  5,
		Tags:      []string{"nightly"},
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "job-1", received.JobID)
	assert.Equal(t, "simple_prompt", received.AgentName)
	assert.Equal(t, 5, received.Priority)
}

func TestSubmitDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accepted": false}`))
	}))
	defer server.Close()

	submitter := NewHTTPSubmitter(server.URL)
	ok, err := submitter.Submit(context.Background(), SubmitRequest{JobID: "job-1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmitRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	// A non-2xx response is a recoverable rejection, not an error
	submitter := NewHTTPSubmitter(server.URL)
	ok, err := submitter.Submit(context.Background(), SubmitRequest{JobID: "job-1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmitTransportFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	submitter := NewHTTPSubmitter(server.URL)
	_, err := submitter.Submit(context.Background(), SubmitRequest{JobID: "job-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reach pipeline service")
}
