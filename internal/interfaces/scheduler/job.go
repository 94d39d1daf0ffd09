package scheduler

import "context"

// Job represents a unit of work that can be executed by the worker pool.
// This interface allows for extensibility - different types of jobs can be
// implemented (e.g., matching jobs, cleanup jobs, ingest jobs).
type Job interface {
	// Execute runs the job with the given context.
	// Context should be respected for cancellation and timeouts.
	Execute(ctx context.Context) error

	// OrgID returns the organization this job works on behalf of.
	// Used for logging and tracking whose data is being processed.
	OrgID() string

	// Description returns a human-readable description of the job.
	// Used for logging purposes.
	Description() string
}
