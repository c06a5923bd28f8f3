package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/models"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/repos"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/events"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/logger"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/pipeline"
)

const (
	// DefaultStuckThreshold is the age past which a pending scheduled job is
	// considered stuck
	DefaultStuckThreshold = time.Hour
	// DefaultResubmitCutoff is the age past which a stuck job is failed
	// outright instead of resubmitted
	DefaultResubmitCutoff = 6 * time.Hour
)

// resubmitFailedMessage is the error recorded when resubmission of a stuck
// job does not succeed
const resubmitFailedMessage = "Failed to resubmit stuck job to pipeline"

// StuckJob is a pending scheduled job whose age exceeds the stuck threshold,
// annotated with its computed age
type StuckJob struct {
	models.Job
	AgeHours float64 `json:"age_hours"`
}

// RepairOutcome is the result of repairing one stuck job
type RepairOutcome int

// Repair outcomes
const (
	// OutcomeResubmitted means the job was handed back to the pipeline
	OutcomeResubmitted RepairOutcome = iota
	// OutcomeMarkedFailed means the job was transitioned to failed
	OutcomeMarkedFailed
	// OutcomeError means the mark-failed write itself failed
	OutcomeError
)

func (o RepairOutcome) String() string {
	switch o {
	case OutcomeResubmitted:
		return "resubmitted"
	case OutcomeMarkedFailed:
		return "marked_failed"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// RepairSummary aggregates the results of one recovery sweep
type RepairSummary struct {
	Found        int  `json:"found"`
	Resubmitted  int  `json:"resubmitted"`
	MarkedFailed int  `json:"marked_failed"`
	Errored      int  `json:"errored"`
	DryRun       bool `json:"dry_run"`
}

// RecoveryService detects jobs that were accepted but never progressed and
// either resubmits them to the pipeline or marks them failed
type RecoveryService struct {
	repo      *repos.JobRepository
	submitter pipeline.Submitter

	stuckAfter     time.Duration
	resubmitCutoff time.Duration

	// now is overridable in tests
	now func() time.Time
}

// NewRecoveryService creates a recovery service with the default thresholds
func NewRecoveryService(repo *repos.JobRepository, submitter pipeline.Submitter) *RecoveryService {
	return &RecoveryService{
		repo:           repo,
		submitter:      submitter,
		stuckAfter:     DefaultStuckThreshold,
		resubmitCutoff: DefaultResubmitCutoff,
		now:            time.Now,
	}
}

// FindStuckJobs returns every pending scheduled job older than the given
// threshold, annotated with its age in hours. Read-only; a persistence error
// is returned to the caller and is retryable.
func (s *RecoveryService) FindStuckJobs(ctx context.Context, olderThan time.Duration) ([]StuckJob, error) {
	if olderThan < 0 {
		return nil, fmt.Errorf("age threshold cannot be negative")
	}

	now := s.now()
	jobs, err := s.repo.FindPendingBySource(ctx, models.ExecutionSourceScheduled, now.Add(-olderThan), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query stuck jobs: %w", err)
	}

	candidates := make([]StuckJob, len(jobs))
	for i, job := range jobs {
		candidates[i] = StuckJob{
			Job:      job,
			AgeHours: job.Age(now).Hours(),
		}
	}
	return candidates, nil
}

// RepairJob repairs one stuck job. Jobs younger than the resubmit cutoff are
// handed back to the pipeline; if that fails, or the job is older than the
// cutoff, it is marked failed. A failing mark-failed write is reported as
// OutcomeError and never raised, so one job cannot abort a sweep.
func (s *RecoveryService) RepairJob(ctx context.Context, job StuckJob) RepairOutcome {
	var errMsg string
	if job.AgeHours < s.resubmitCutoff.Hours() {
		ok, err := s.submitter.Submit(ctx, pipeline.SubmitRequest{
			JobID:     job.ID,
			UserID:    job.UserID,
			AgentName: job.AgentID,
			JobData:   job.Data,
			Priority:  job.Priority,
			Tags:      job.Tags,
		})
		if err != nil {
			logger.WarnWithFields("Resubmission of stuck job raised an error", map[string]interface{}{
				"job_id": job.ID,
				"error":  err.Error(),
			})
		}
		if ok && err == nil {
			logger.InfoWithFields("Resubmitted stuck job to pipeline", map[string]interface{}{
				"job_id":    job.ID,
				"age_hours": job.AgeHours,
			})
			events.Publish(events.Event{
				Type:    events.EventJobResubmitted,
				JobID:   job.ID,
				UserID:  job.UserID,
				AgentID: job.AgentID,
			})
			return OutcomeResubmitted
		}
		errMsg = resubmitFailedMessage
	} else {
		errMsg = fmt.Sprintf("Job stuck in pending status for %.1f hours", job.AgeHours)
	}

	if err := s.repo.UpdateStatus(ctx, job.ID, models.JobStatusFailed, "", errMsg); err != nil {
		logger.ErrorWithFields("Failed to mark stuck job as failed", map[string]interface{}{
			"job_id": job.ID,
			"error":  err.Error(),
		})
		return OutcomeError
	}

	logger.InfoWithFields("Marked stuck job as failed", map[string]interface{}{
		"job_id": job.ID,
		"reason": errMsg,
	})
	events.Publish(events.Event{
		Type:    events.EventJobFailed,
		JobID:   job.ID,
		UserID:  job.UserID,
		AgentID: job.AgentID,
		Detail:  errMsg,
	})
	return OutcomeMarkedFailed
}

// RunRecoverySweep finds stuck jobs and repairs each one in the order the
// find step returned them. With dryRun set, candidates are reported without
// mutating state. The sweep is idempotent: a job that was resubmitted or
// marked failed no longer matches the stuck predicate on the next run, as
// long as the store reflects the write before the next read.
func (s *RecoveryService) RunRecoverySweep(ctx context.Context, dryRun bool) (RepairSummary, error) {
	summary := RepairSummary{DryRun: dryRun}

	candidates, err := s.FindStuckJobs(ctx, s.stuckAfter)
	if err != nil {
		return summary, err
	}
	summary.Found = len(candidates)

	if dryRun {
		for _, c := range candidates {
			logger.InfoWithFields("Dry run: stuck job candidate", map[string]interface{}{
				"job_id":    c.ID,
				"user_id":   c.UserID,
				"agent":     c.AgentID,
				"age_hours": c.AgeHours,
			})
		}
		return summary, nil
	}

	for _, c := range candidates {
		switch s.RepairJob(ctx, c) {
		case OutcomeResubmitted:
			summary.Resubmitted++
		case OutcomeMarkedFailed:
			summary.MarkedFailed++
		case OutcomeError:
			summary.Errored++
		}
	}

	if summary.Found > 0 {
		logger.InfoWithFields("Recovery sweep complete", map[string]interface{}{
			"found":         summary.Found,
			"resubmitted":   summary.Resubmitted,
			"marked_failed": summary.MarkedFailed,
			"errored":       summary.Errored,
		})
	}
	return summary, nil
}
