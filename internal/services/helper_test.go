package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/models"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/repos"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/pipeline"
)

// fakeSubmitter is a scripted pipeline.Submitter that records every request
type fakeSubmitter struct {
	requests []pipeline.SubmitRequest
	accept   bool
	err      error
}

func (f *fakeSubmitter) Submit(_ context.Context, req pipeline.SubmitRequest) (bool, error) {
	f.requests = append(f.requests, req)
	return f.accept, f.err
}

// TestSetup holds the shared pieces for service tests
type TestSetup struct {
	DB         *gorm.DB
	JobRepo    *repos.JobRepository
	JobService *JobService
	Submitter  *fakeSubmitter
	Recovery   *RecoveryService

	ctx context.Context
	t   *testing.T
}

// NewTestSetup creates a service test environment over an in-memory database
func NewTestSetup(t *testing.T) *TestSetup {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err, "Failed to create in-memory database")

	err = db.AutoMigrate(&models.Job{})
	assert.NoError(t, err, "Failed to run migrations")

	jobRepo := repos.NewJobRepository(db)
	submitter := &fakeSubmitter{accept: true}

	return &TestSetup{
		DB:         db,
		JobRepo:    jobRepo,
		JobService: NewJobService(jobRepo),
		Submitter:  submitter,
		Recovery:   NewRecoveryService(jobRepo, submitter),
		ctx:        context.Background(),
		t:          t,
	}
}

// CleanUp closes the underlying database connection
func (ts *TestSetup) CleanUp() {
	sqlDB, err := ts.DB.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

// FreezeClock pins the recovery service's clock and returns the pinned time
func (ts *TestSetup) FreezeClock() time.Time {
	now := time.Now().UTC().Truncate(time.Second)
	ts.Recovery.now = func() time.Time { return now }
	return now
}

// CreateScheduledJob creates a pending scheduled job created at the given time
func (ts *TestSetup) CreateScheduledJob(createdAt time.Time) *models.Job {
	job := &models.Job{
		UserID:          "user-1",
		AgentID:         AgentSimplePrompt,
		ExecutionSource: models.ExecutionSourceScheduled,
	}
	err := ts.JobRepo.Create(ts.ctx, job)
	assert.NoError(ts.t, err)

	err = ts.DB.Model(&models.Job{}).
		Where(&models.Job{ID: job.ID}).
		Update(models.JobCreatedAtField, createdAt).Error
	assert.NoError(ts.t, err)
	job.CreatedAt = createdAt
	return job
}

// GetJob reloads a job from the database
func (ts *TestSetup) GetJob(id string) *models.Job {
	job, err := ts.JobRepo.GetByID(ts.ctx, "", id)
	assert.NoError(ts.t, err)
	return job
}
