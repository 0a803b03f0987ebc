package jobs

import (
	"context"
	"fmt"
	"time"

	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/metrics"
	"ubertool-booking/internal/service"
)

const defaultJobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookings      service.BookingService
	notifications service.NotificationService
	timeout       time.Duration
	now           func() time.Time
}

// NewJobRunner creates a new job runner. A zero timeout uses five minutes.
func NewJobRunner(bookings service.BookingService, notifications service.NotificationService, timeout time.Duration) *JobRunner {
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	return &JobRunner{
		bookings:      bookings,
		notifications: notifications,
		timeout:       timeout,
		now:           time.Now,
	}
}

// runWithRecovery wraps job execution with panic recovery, a deadline and metrics
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) (int, error)) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		metrics.IncJobRun(jobName, err)
	}()

	logger.Info("Starting job", "job", jobName)
	count, err := jobFunc(ctx)
	if err != nil {
		logger.Error("Job finished with errors", "job", jobName, "processed", count, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return err
	}
	logger.Info("Job completed", "job", jobName, "processed", count, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// CompleteEndedBookings moves active bookings whose end date has passed to completed.
func (jr *JobRunner) CompleteEndedBookings() error {
	return jr.runWithRecovery("CompleteEndedBookings", func(ctx context.Context) (int, error) {
		return jr.bookings.CompleteEndedBookings(ctx, jr.now())
	})
}

// ExpireStalePending cancels pending bookings the owner never answered.
func (jr *JobRunner) ExpireStalePending() error {
	return jr.runWithRecovery("ExpireStalePending", func(ctx context.Context) (int, error) {
		return jr.bookings.ExpireStalePending(ctx, jr.now())
	})
}

func (jr *JobRunner) RetryNotifications() error {
	return jr.runWithRecovery("RetryNotifications", jr.notifications.RetryUndelivered)
}

// RetryRefunds re-sends refunds the processor has not yet confirmed.
func (jr *JobRunner) RetryRefunds() error {
	return jr.runWithRecovery("RetryRefunds", jr.bookings.RetryPendingRefunds)
}

// RunAll runs every job once, in order, and reports the first failure (for manual execution).
func (jr *JobRunner) RunAll() error {
	var first error
	for _, job := range []func() error{jr.ExpireStalePending, jr.RetryRefunds, jr.CompleteEndedBookings, jr.RetryNotifications} {
		if err := job(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
