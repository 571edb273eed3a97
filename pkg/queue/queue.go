package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"InlineRank/pkg/logger"
)

// QueueConfig contains the configuration for the pool
type QueueConfig struct {
	Workers    int           // number of workers
	RetryLimit int           // number of retries after the first attempt
	RetryDelay time.Duration // time delay between retries
}

// Pool runs a batch of jobs on a bounded number of workers.
type Pool struct {
	config QueueConfig
	logger *logger.Logger
}

type PoolOption func(*Pool)

func WithLogger(l *logger.Logger) PoolOption {
	return func(p *Pool) { p.logger = l }
}

func NewPool(config QueueConfig, opts ...PoolOption) *Pool {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.RetryLimit < 0 {
		config.RetryLimit = 0
	}
	p := &Pool{config: config, logger: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Workers returns the configured concurrency.
func (p *Pool) Workers() int { return p.config.Workers }

// Run executes every job and blocks until all have finished. errs[i] is the
// final error of jobs[i], nil on success. Jobs not started before ctx is done
// report ctx.Err().
func (p *Pool) Run(ctx context.Context, jobs []Job) []error {
	errs := make([]error, len(jobs))
	if len(jobs) == 0 {
		return errs
	}

	workers := p.config.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				errs[i] = p.runOne(ctx, jobs[i])
			}
		}()
	}

feed:
	for i := range jobs {
		select {
		case <-ctx.Done():
			for j := i; j < len(jobs); j++ {
				errs[j] = ctx.Err()
			}
			break feed
		case idx <- i:
		}
	}
	close(idx)
	wg.Wait()
	return errs
}

func (p *Pool) runOne(ctx context.Context, job Job) error {
	var err error
	for attempt := 0; attempt <= p.config.RetryLimit; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(p.config.RetryDelay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		start := time.Now()
		err = job.Handle(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			p.logger.Warn("job cancelled",
				logger.String("job", job.Name()),
				logger.Duration("elapsed_ms", time.Since(start)))
			return err
		}
		p.logger.Debug("job attempt failed",
			logger.String("job", job.Name()),
			logger.Int("attempt", attempt+1),
			logger.Error(err))
	}
	p.logger.Warn("max retries reached",
		logger.String("job", job.Name()),
		logger.Int("attempts", p.config.RetryLimit+1),
		logger.Error(err))
	return err
}
