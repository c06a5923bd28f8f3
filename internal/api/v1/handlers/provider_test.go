package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/models"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/repos"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/llm"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/pipeline"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/services"
)

func decodeEnvelope(t *testing.T, resp *http.Response) Response {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result Response
	require.NoError(t, json.Unmarshal(body, &result))
	return result
}

func TestListProviders(t *testing.T) {
	registry := llm.NewRegistry(map[string]llm.ProviderConfig{}, llm.ProviderOpenAI)
	handler := NewProviderHandler(llm.NewDispatcher(registry))

	app := fiber.New()
	app.Get("/providers/", handler.ListProviders)

	resp, err := app.Test(httptest.NewRequest("GET", "/providers/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeEnvelope(t, resp)
	assert.Equal(t, SuccessSlug, result.Slug)
	data := result.Data.(map[string]interface{})
	assert.Equal(t, llm.ProviderOpenAI, data["default"])
}

func TestSetDefaultProvider(t *testing.T) {
	registry := llm.NewRegistry(map[string]llm.ProviderConfig{}, llm.ProviderOpenAI)
	handler := NewProviderHandler(llm.NewDispatcher(registry))

	app := fiber.New()
	app.Put("/providers/default", handler.SetDefaultProvider)

	req := httptest.NewRequest("PUT", "/providers/default", bytes.NewReader([]byte(`{"provider": "anthropic"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, llm.ProviderAnthropic, registry.DefaultProvider())
}

func TestSetDefaultProviderMissing(t *testing.T) {
	registry := llm.NewRegistry(map[string]llm.ProviderConfig{}, llm.ProviderOpenAI)
	handler := NewProviderHandler(llm.NewDispatcher(registry))

	app := fiber.New()
	app.Put("/providers/default", handler.SetDefaultProvider)

	req := httptest.NewRequest("PUT", "/providers/default", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, InvalidInputSlug, decodeEnvelope(t, resp).Slug)
}

// rejectingSubmitter declines every resubmission
type rejectingSubmitter struct{}

func (rejectingSubmitter) Submit(context.Context, pipeline.SubmitRequest) (bool, error) {
	return false, nil
}

func TestRunSweepEndpoint(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Job{}))

	jobRepo := repos.NewJobRepository(db)
	job := &models.Job{
		UserID:          "user-1",
		AgentID:         "simple_prompt",
		ExecutionSource: models.ExecutionSourceScheduled,
	}
	require.NoError(t, jobRepo.Create(context.Background(), job))
	err = db.Model(&models.Job{}).
		Where(&models.Job{ID: job.ID}).
		Update(models.JobCreatedAtField, time.Now().UTC().Add(-7*time.Hour)).Error
	require.NoError(t, err)

	handler := NewRecoveryHandler(services.NewRecoveryService(jobRepo, rejectingSubmitter{}))
	app := fiber.New()
	app.Post("/recovery/sweep", handler.RunSweep)

	// Dry run reports without repairing
	resp, err := app.Test(httptest.NewRequest("POST", "/recovery/sweep?dry_run=true", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeEnvelope(t, resp).Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["found"])
	assert.Equal(t, true, data["dry_run"])
	assert.Equal(t, float64(0), data["marked_failed"])

	// A real sweep repairs the job
	resp, err = app.Test(httptest.NewRequest("POST", "/recovery/sweep", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	data = decodeEnvelope(t, resp).Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["found"])
	assert.Equal(t, float64(1), data["marked_failed"])

	repaired, err := jobRepo.GetByID(context.Background(), "", job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, repaired.Status)
}
