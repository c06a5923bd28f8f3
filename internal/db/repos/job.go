package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/models"
)

// JobRepository provides access to job-related database operations
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository instance
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job in the database
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetByID retrieves a job by its ID.
// If userID is empty, the job is returned regardless of the owner.
func (r *JobRepository) GetByID(ctx context.Context, userID, id string) (*models.Job, error) {
	var job models.Job
	qry := &models.Job{ID: id}
	if userID != "" {
		qry.UserID = userID
	}
	err := r.db.WithContext(ctx).Where(qry).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// List returns a list of jobs ordered by creation time, newest first.
// If userID is empty, jobs are returned regardless of the owner.
// If the status is unknown, jobs are returned regardless of their status.
func (r *JobRepository) List(ctx context.Context, status models.JobStatus, userID string, opts *models.ListOptions) ([]models.Job, error) {
	var jobs []models.Job
	qry := &models.Job{}

	if status != models.JobStatusUnknown {
		qry.Status = status
	}
	if userID != "" {
		qry.UserID = userID
	}

	err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where(qry).
		Limit(opts.Limit).Offset(opts.Offset).
		Order(models.JobCreatedAtField + " DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// Count returns the number of jobs matching the status and owner filters
func (r *JobRepository) Count(ctx context.Context, status models.JobStatus, userID string) (int64, error) {
	var count int64
	qry := &models.Job{}

	if status != models.JobStatusUnknown {
		qry.Status = status
	}
	if userID != "" {
		qry.UserID = userID
	}

	err := r.db.WithContext(ctx).Model(&models.Job{}).Where(qry).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

// UpdateStatus updates the status of a job along with its result or error message
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status models.JobStatus, result, errMsg string) error {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where(&models.Job{ID: id}).
		Updates(map[string]interface{}{
			"status": status,
			"result": result,
			"error":  errMsg,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update job status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}

// FindPendingBySource returns pending jobs with the given execution source
// created before the cutoff, oldest first. A limit of 0 means no limit.
func (r *JobRepository) FindPendingBySource(ctx context.Context, source string, createdBefore time.Time, limit int) ([]models.Job, error) {
	var jobs []models.Job
	qry := r.db.WithContext(ctx).
		Where(&models.Job{Status: models.JobStatusPending, ExecutionSource: source}).
		Where(models.JobCreatedAtField+" < ?", createdBefore).
		Order(models.JobCreatedAtField + " ASC")
	if limit > 0 {
		qry = qry.Limit(limit)
	}
	if err := qry.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}
	return jobs, nil
}
