package refetch

import "context"

// Job is a unit of work executed by the Executor, typically one cache
// refetch. Run must be safe to invoke again if the same Job instance is
// resubmitted.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a closure to a Job.
type JobFunc func(ctx context.Context) error

// Run implements Job.
func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }
