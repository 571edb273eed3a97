package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCollectsErrorsByIndex(t *testing.T) {
	p := NewPool(QueueConfig{Workers: 3})
	boom := errors.New("boom")
	jobs := make([]Job, 10)
	for i := range jobs {
		i := i
		jobs[i] = JobFunc{N: "j", F: func(context.Context) error {
			if i%4 == 0 {
				return boom
			}
			return nil
		}}
	}

	errs := p.Run(context.Background(), jobs)
	require.Len(t, errs, 10)
	for i, err := range errs {
		if i%4 == 0 {
			assert.ErrorIs(t, err, boom, "job %d", i)
		} else {
			assert.NoError(t, err, "job %d", i)
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	p := NewPool(QueueConfig{Workers: 2})
	var running, peak int32
	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = JobFunc{N: "slow", F: func(context.Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		}}
	}
	p.Run(context.Background(), jobs)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestRunRetries(t *testing.T) {
	p := NewPool(QueueConfig{Workers: 1, RetryLimit: 2, RetryDelay: time.Millisecond})
	var calls int32
	job := JobFunc{N: "flaky", F: func(context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	}}

	errs := p.Run(context.Background(), []Job{job})
	assert.NoError(t, errs[0])
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestRunGivesUpAfterRetryLimit(t *testing.T) {
	p := NewPool(QueueConfig{Workers: 1, RetryLimit: 1, RetryDelay: time.Millisecond})
	var calls int32
	errs := p.Run(context.Background(), []Job{JobFunc{N: "down", F: func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("down")
	}}})
	assert.EqualError(t, errs[0], "down")
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPool(QueueConfig{Workers: 1})
	errs := p.Run(ctx, []Job{
		JobFunc{N: "a", F: func(context.Context) error { return nil }},
		JobFunc{N: "b", F: func(context.Context) error { return nil }},
	})
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	}
}

func TestRunEmpty(t *testing.T) {
	assert.Empty(t, NewPool(QueueConfig{}).Run(context.Background(), nil))
}
