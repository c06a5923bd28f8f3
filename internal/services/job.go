package services

import (
	"context"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/models"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/repos"
)

// JobService provides business logic for job operations
type JobService struct {
	repo *repos.JobRepository
}

// NewJobService creates a new job service instance
func NewJobService(repo *repos.JobRepository) *JobService {
	return &JobService{repo: repo}
}

// CreateJob creates a new job in pending status
func (s *JobService) CreateJob(ctx context.Context, job *models.Job) (*models.Job, error) {
	return job, s.repo.Create(ctx, job)
}

// GetJob retrieves a job by its ID, scoped to the owner when userID is non-empty
func (s *JobService) GetJob(ctx context.Context, userID, id string) (*models.Job, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// GetJobStatus retrieves the status of a job
func (s *JobService) GetJobStatus(ctx context.Context, userID, id string) (models.JobStatus, error) {
	j, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return models.JobStatusUnknown, err
	}
	return j.Status, nil
}

// ListJobs retrieves a paginated list of jobs
func (s *JobService) ListJobs(ctx context.Context, status models.JobStatus, userID string, opts *models.ListOptions) ([]models.Job, error) {
	return s.repo.List(ctx, status, userID, opts)
}

// CountJobs returns the number of jobs matching the filters
func (s *JobService) CountJobs(ctx context.Context, status models.JobStatus, userID string) (int64, error) {
	return s.repo.Count(ctx, status, userID)
}

// UpdateJobStatus updates the status of a job together with its result or
// error message
func (s *JobService) UpdateJobStatus(ctx context.Context, id string, status models.JobStatus, result, errMsg string) error {
	return s.repo.UpdateStatus(ctx, id, status, result, errMsg)
}
