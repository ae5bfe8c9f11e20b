/*
Package worker provides the fixed-size pool that drains a shared queue of image
paths, running one encoder invocation per worker at a time.

Basic usage:

	pool, err := worker.NewPool(worker.Config{
		Workers: worker.DefaultWorkers(),
	}, log)
	if err != nil {
		return err
	}

	stats, err := pool.Drain(ctx, worker.NewQueue(paths), png.Encode)

Drain returns once every path has been claimed by exactly one worker and
processed, whether the encoder succeeded or not.
*/
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sonemaro/pngshrink/pkg/logger"
	"golang.org/x/time/rate"
)

// Config holds the configuration for the worker pool
type Config struct {
	// Workers is the number of concurrent workers
	Workers int

	// RateLimit is the maximum number of encoder launches per second (0 for unlimited)
	RateLimit int

	// OnDone is called after each processed path. It must be safe for
	// concurrent use.
	OnDone DoneFunc
}

// Pool runs a fixed number of workers over a Queue.
type Pool struct {
	config  Config
	log     logger.Logger
	limiter *rate.Limiter

	mu        sync.RWMutex
	status    Status
	queue     *Queue
	startTime time.Time
	endTime   time.Time

	activeWorkers atomic.Int32
	completed     atomic.Int64
	failed        atomic.Int64
}

// NewPool creates a new worker pool with the given configuration
func NewPool(config Config, log logger.Logger) (*Pool, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &Pool{
		config:  config,
		log:     log,
		limiter: limiter,
		status:  StatusIdle,
	}, nil
}

// validateConfig checks if the pool configuration is valid
func validateConfig(config Config) error {
	if config.Workers <= 0 {
		return fmt.Errorf("number of workers must be positive")
	}
	if config.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}
	return nil
}

// Drain spawns the configured number of workers over queue and blocks until
// all of them have exited. Each worker pops one entry under the queue lock,
// releases it, and only then runs encode. A worker exits the first time it
// finds the queue empty; the queue is never refilled.
//
// Encoder failures are logged and counted; they never stop other workers.
// Drain panics if the queue is not empty once every worker has exited.
func (p *Pool) Drain(ctx context.Context, queue *Queue, encode EncodeFunc) (Stats, error) {
	p.mu.Lock()
	if p.status == StatusProcessing {
		p.mu.Unlock()
		return Stats{}, fmt.Errorf("pool is already draining")
	}
	p.status = StatusProcessing
	p.queue = queue
	p.startTime = time.Now()
	p.endTime = time.Time{}
	p.completed.Store(0)
	p.failed.Store(0)
	p.mu.Unlock()

	p.log.WithFields(logger.Fields{
		"workers": p.config.Workers,
		"queued":  queue.Len(),
	}).Debug("Starting workers")

	var wg sync.WaitGroup
	for i := 0; i < p.config.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id, queue, encode)
		}(i)
	}
	wg.Wait()

	p.mu.Lock()
	p.status = StatusStopped
	p.endTime = time.Now()
	p.mu.Unlock()

	if n := queue.Len(); n != 0 {
		panic(fmt.Sprintf("worker: %d queue entries left after all workers exited", n))
	}

	stats := p.GetStats()

	p.log.WithFields(logger.Fields{
		"completed": stats.CompletedTasks,
		"failed":    stats.FailedTasks,
		"duration":  stats.Duration,
	}).Debug("All workers finished")

	return stats, nil
}

// worker claims entries until the queue is empty
func (p *Pool) worker(ctx context.Context, id int, queue *Queue, encode EncodeFunc) {
	for {
		path, ok := queue.Pop()
		if !ok {
			p.log.WithFields(logger.Fields{
				"worker": id,
			}).Trace("Queue empty, worker exiting")
			return
		}

		err := p.process(ctx, path, encode)
		if err != nil {
			p.failed.Add(1)
			p.log.WithFields(logger.Fields{
				"worker": id,
				"path":   path,
				"error":  err,
			}).Error("Failed to process image")
		} else {
			p.completed.Add(1)
			p.log.WithFields(logger.Fields{
				"worker": id,
				"path":   path,
			}).Debug("Image processed")
		}

		if p.config.OnDone != nil {
			p.config.OnDone(path, err)
		}
	}
}

func (p *Pool) process(ctx context.Context, path string, encode EncodeFunc) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}
	}

	p.activeWorkers.Add(1)
	defer p.activeWorkers.Add(-1)

	return encode(ctx, path)
}

// GetStats returns a snapshot of the current or last drain
func (p *Pool) GetStats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := Stats{
		Workers:        p.config.Workers,
		ActiveWorkers:  int(p.activeWorkers.Load()),
		CompletedTasks: int(p.completed.Load()),
		FailedTasks:    int(p.failed.Load()),
		Status:         p.status,
	}

	if p.queue != nil {
		stats.QueuedTasks = p.queue.Len()
	}

	switch {
	case p.startTime.IsZero():
	case p.endTime.IsZero():
		stats.Duration = time.Since(p.startTime)
	default:
		stats.Duration = p.endTime.Sub(p.startTime)
	}

	return stats
}

// Status returns the current status of the pool
func (p *Pool) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}
