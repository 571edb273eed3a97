package queue

import "context"

// Job defines a unit of work run by the pool.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Handle does the work. A returned error is retried up to the pool's RetryLimit.
	Handle(ctx context.Context) error
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	N string
	F func(ctx context.Context) error
}

func (j JobFunc) Name() string                     { return j.N }
func (j JobFunc) Handle(ctx context.Context) error { return j.F(ctx) }
