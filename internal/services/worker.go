package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/db/models"
	"github.com/dmautz1/ai-agent-platform-sub002/internal/logger"
)

const (
	// DefaultSweepInterval is how often the recovery worker runs a sweep
	DefaultSweepInterval = 15 * time.Minute
	// DefaultPollInterval is how often the execution worker polls for jobs
	DefaultPollInterval = time.Second
	// executionBatchLimit caps how many pending jobs one poll picks up
	executionBatchLimit = 10
)

// LaunchRecoveryWorker runs the stuck-job recovery sweep on an interval until
// the context is cancelled
func LaunchRecoveryWorker(ctx context.Context, wg *sync.WaitGroup, recovery *RecoveryService, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("Recovery worker started")
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("Recovery worker received shutdown signal, stopping...")
				return
			case <-ticker.C:
				if _, err := recovery.RunRecoverySweep(ctx, false); err != nil {
					logger.Errorf("Recovery sweep failed: %v", err)
				}
			}
		}
	}()
}

// LaunchExecutionWorker polls for pending manually-created jobs and executes
// them until the context is cancelled. Scheduled jobs belong to the external
// pipeline and are not picked up here.
func LaunchExecutionWorker(ctx context.Context, wg *sync.WaitGroup, executor *Executor, jobs *JobService) {
	const backoff = DefaultPollInterval

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("Execution worker started")

		for {
			select {
			case <-ctx.Done():
				logger.Info("Execution worker received shutdown signal, stopping...")
				return
			default:
			}

			pending, err := jobs.repo.FindPendingBySource(ctx, models.ExecutionSourceManual, time.Now(), executionBatchLimit)
			if err != nil {
				logger.Errorf("Execution worker error fetching jobs: %v", err)
				// Wait before retrying to avoid spamming logs on persistent DB errors
				time.Sleep(backoff)
				continue
			}

			if len(pending) == 0 {
				time.Sleep(backoff)
				continue
			}

			for i := range pending {
				job := pending[i]
				if err := executor.ExecuteJob(ctx, &job); err != nil {
					logger.WarnWithFields("Job execution failed", map[string]interface{}{
						"job_id": job.ID,
						"error":  err.Error(),
					})
				}
			}
		}
	}()
}
