package scheduler

import "context"

// Job represents a unit of work executed by the worker pool. Different
// job types can be implemented (sync jobs, cleanup jobs, backfill jobs).
type Job interface {
	// Execute runs the job. Context should be respected for
	// cancellation and timeouts.
	Execute(ctx context.Context) error

	// UserID returns the user the job operates on behalf of,
	// for logging and tracing.
	UserID() string

	// Description returns a human-readable description of the job.
	Description() string
}
