package jobs

import (
	"context"
	"fmt"
	"time"

	"rentdesk-backend/internal/config"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	booking service.BookingService
	config  *config.Config
	timeout time.Duration
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(booking service.BookingService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		booking: booking,
		config:  cfg,
		timeout: time.Minute,
	}
}

// PanicError is returned by a job that panicked.
type PanicError struct {
	Job   string
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job %s panicked: %v", e.Job, e.Value)
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) error {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Job panicked", "job", jobName, "panic", r)
				err = &PanicError{Job: jobName, Value: r}
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
		defer cancel()

		logger.Info("Starting job", "job", jobName)
		start := time.Now()
		err = jobFunc(ctx)
		if err != nil {
			logger.Error("Job failed", "job", jobName, "error", err, "duration", time.Since(start))
			return
		}
		logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
	}()
	return err
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() error {
	return jr.RunSyncItemStatuses()
}
