package worker

import (
	"context"
	"time"
)

// Status represents the current state of the worker pool
type Status string

const (
	// StatusIdle indicates the pool is ready but not draining
	StatusIdle Status = "idle"

	// StatusProcessing indicates workers are claiming and encoding entries
	StatusProcessing Status = "processing"

	// StatusStopped indicates the last drain has finished
	StatusStopped Status = "stopped"
)

// EncodeFunc processes one claimed path.
type EncodeFunc func(ctx context.Context, path string) error

// DoneFunc is called after each path has been processed, with the error
// returned by the EncodeFunc. It runs on the worker goroutine.
type DoneFunc func(path string, err error)

// Stats provides statistics about a drain
type Stats struct {
	// Workers is the number of workers that were spawned
	Workers int

	// ActiveWorkers is the number of workers currently running an encoder
	ActiveWorkers int

	// QueuedTasks is the number of entries not yet claimed
	QueuedTasks int

	// CompletedTasks is the number of entries encoded successfully
	CompletedTasks int

	// FailedTasks is the number of entries whose encoder failed
	FailedTasks int

	// Status is the current state of the pool
	Status Status

	// Duration is how long the drain has been running
	Duration time.Duration
}

// Processed returns the number of entries claimed and finished.
func (s Stats) Processed() int {
	return s.CompletedTasks + s.FailedTasks
}
