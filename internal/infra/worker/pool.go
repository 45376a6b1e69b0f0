// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/ports/adapter"
	"workflow-analyst/internal/infra/metrics"
)

// Compile-time check
var _ adapter.TaskQueue = (*Pool)(nil)

// Pool runs submitted tasks on a fixed number of workers with a bounded queue.
// Every task gets its own context, cancelled on timeout, on Cancel, or when the pool stops.
type Pool struct {
	n       int
	timeout time.Duration
	log     *zerolog.Logger

	jobs chan *handle
	quit chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
	base    context.Context
	cancel  context.CancelCauseFunc
}

// NewPool builds a pool. workers <= 0 uses NumCPU, queueSize <= 0 uses workers*4,
// timeout <= 0 disables the per-task deadline.
func NewPool(workers, queueSize int, timeout time.Duration, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = workers * 4
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "worker_pool").Logger()
	return &Pool{
		n:       workers,
		timeout: timeout,
		log:     &l,
		jobs:    make(chan *handle, queueSize),
		quit:    make(chan struct{}),
	}
}

// Start launches the workers. Task contexts derive from ctx; cancelling ctx cancels them too.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	p.base, p.cancel = context.WithCancelCause(ctx)
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-p.quit:
					return
				case h := <-p.jobs:
					metrics.SetJobQueueDepth(len(p.jobs))
					p.exec(h, id)
				}
			}
		}(i)
	}
	p.log.Info().Int("workers", p.n).Int("queue", cap(p.jobs)).Dur("task_timeout", p.timeout).Msg("worker pool started")
}

// Submit enqueues task without blocking. It returns domain.ErrQueueFull when the queue is
// saturated and domain.ErrPoolStopped after Stop.
func (p *Pool) Submit(name string, task adapter.Task) (adapter.TaskHandle, error) {
	if task == nil {
		return nil, fmt.Errorf("%w: nil task", domain.ErrInvalidArgument)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return nil, domain.ErrPoolStopped
	}
	h := newHandle(name, task)
	select {
	case p.jobs <- h:
		metrics.SetJobQueueDepth(len(p.jobs))
		return h, nil
	default:
		return nil, domain.ErrQueueFull
	}
}

// Stop rejects new work, cancels running tasks and runs anything still queued with a
// cancelled context so every task observes its shutdown. It waits for workers until ctx ends.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	if !p.started {
		p.base, p.cancel = context.WithCancelCause(context.Background())
	}
	close(p.quit)
	p.mu.Unlock()

	p.cancel(domain.ErrPoolStopped)

	drained := 0
	for {
		select {
		case h := <-p.jobs:
			p.exec(h, -1)
			drained++
			continue
		default:
		}
		break
	}
	metrics.SetJobQueueDepth(0)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.log.Info().Int("drained", drained).Msg("worker pool stopped")
		return nil
	case <-ctx.Done():
		p.log.Warn().Err(ctx.Err()).Msg("worker pool stop timed out")
		return ctx.Err()
	}
}

func (p *Pool) exec(h *handle, worker int) {
	ctx, cancel := context.WithCancel(p.base)
	defer cancel()
	if p.timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, p.timeout)
		defer cancelTimeout()
	}
	h.bind(cancel)

	start := time.Now()
	err := runSafe(ctx, h.task)
	if err != nil {
		p.log.Warn().Err(err).Str("task", h.name).Int("worker", worker).Dur("elapsed", time.Since(start)).Msg("task finished with error")
	} else {
		p.log.Debug().Str("task", h.name).Int("worker", worker).Dur("elapsed", time.Since(start)).Msg("task finished")
	}
	h.finish(err)
}

func runSafe(ctx context.Context, task adapter.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v\n%s", r, debug.Stack())
		}
	}()
	return task(ctx)
}

type handle struct {
	name string
	task adapter.Task
	done chan struct{}

	mu        sync.Mutex
	cancel    context.CancelFunc
	cancelled bool
	err       error
}

func newHandle(name string, task adapter.Task) *handle {
	return &handle{name: name, task: task, done: make(chan struct{})}
}

// bind attaches the running context's cancel func, firing it at once if Cancel came first.
func (h *handle) bind(cancel context.CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancel = cancel
	if h.cancelled {
		cancel()
	}
}

func (h *handle) finish(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

func (h *handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *handle) Done() <-chan struct{} { return h.done }

// Cancel is safe to call before the task starts; the task then runs with a cancelled context.
func (h *handle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelled = true
	if h.cancel != nil {
		h.cancel()
	}
}
