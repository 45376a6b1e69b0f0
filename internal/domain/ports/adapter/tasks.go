package adapter

import "context"

// Task is a unit of background work. ctx is cancelled on timeout, Cancel or pool shutdown.
type Task func(ctx context.Context) error

// TaskHandle tracks one submitted task.
type TaskHandle interface {
	// Wait blocks until the task finishes or ctx ends, returning the task's error.
	Wait(ctx context.Context) error
	Done() <-chan struct{}
	Cancel()
}

// TaskQueue runs tasks on a bounded set of workers.
// Submit returns domain.ErrQueueFull when the queue has no room.
type TaskQueue interface {
	Submit(name string, task Task) (TaskHandle, error)
}
