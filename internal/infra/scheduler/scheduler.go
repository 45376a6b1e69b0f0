package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Func is one periodic run. Errors are logged and do not stop the scheduler.
type Func func(ctx context.Context) error

// Scheduler periodically runs a Func.
type Scheduler struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	fn       Func
	log      *zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a scheduler that runs fn every interval, each run bounded by timeout.
// If interval <= 0 it defaults to 1 minute; timeout <= 0 means the interval.
func New(name string, interval, timeout time.Duration, fn Func, logger *zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if timeout <= 0 {
		timeout = interval
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "scheduler").Str("task", name).Logger()
	return &Scheduler{
		name:     name,
		interval: interval,
		timeout:  timeout,
		fn:       fn,
		log:      &l,
	}
}

// Start begins the loop in a background goroutine. Calling Start twice has no effect.
func (s *Scheduler) Start(parent context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	s.log.Debug().Dur("interval", s.interval).Msg("scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("scheduler stopping")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.fn(runCtx); err != nil {
		s.log.Warn().Err(err).Msg("scheduled run failed")
	}
}

// Stop cancels the loop and waits for it to finish. It is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
