package syncqueue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/syncqueue/pkg/logger"
	"github.com/dmitrymomot/syncqueue/pkg/requestid"
)

// DefaultDrainInterval is how often a Runner drains the queue on its own.
const DefaultDrainInterval = 30 * time.Second

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithInterval sets the delay between periodic drains.
func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithRunnerLogger sets the logger for the runner.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOnPass is called with the result of every drain the runner performs.
func WithOnPass(fn func(Result)) RunnerOption {
	return func(r *Runner) {
		r.onPass = fn
	}
}

// Runner drains a queue in the background, periodically and on Trigger.
// Drains never overlap: a tick arriving mid-pass is skipped by the queue.
type Runner struct {
	queue    *Queue
	exec     Executor
	interval time.Duration
	logger   *slog.Logger
	onPass   func(Result)

	trigger chan struct{}
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRunner creates a runner for q using exec for every drain.
func NewRunner(q *Queue, exec Executor, opts ...RunnerOption) (*Runner, error) {
	if q == nil {
		return nil, ErrQueueNil
	}
	if exec == nil {
		return nil, ErrExecutorNil
	}
	r := &Runner{
		queue:    q,
		exec:     exec,
		interval: DefaultDrainInterval,
		logger:   slog.Default(),
		trigger:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("runner"))
	return r, nil
}

// Start launches the drain loop. The first drain happens immediately.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return ErrRunnerStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(ctx, r.done)

	r.logger.Info("runner started", slog.Duration("interval", r.interval))
	return nil
}

// Stop cancels the loop and waits for an in-flight drain to return.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if r.cancel == nil {
		r.mu.Unlock()
		return ErrRunnerNotStarted
	}
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	cancel()
	<-done

	r.logger.Info("runner stopped")
	return nil
}

// Run starts the runner and returns a function suitable for errgroup.
func (r *Runner) Run(ctx context.Context) func() error {
	return func() error {
		if err := r.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return r.Stop()
	}
}

// Trigger requests a drain as soon as possible, for example after
// connectivity is restored. Requests made while one is pending coalesce.
func (r *Runner) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.drain(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.drain(ctx)
		case <-r.trigger:
			r.drain(ctx)
		}
	}
}

func (r *Runner) drain(ctx context.Context) {
	if r.queue.Count(ctx) == 0 {
		return
	}
	// each pass gets its own correlation ID
	res := r.queue.ProcessAll(requestid.WithContext(ctx, requestid.New()), r.exec)
	if r.onPass != nil {
		r.onPass(res)
	}
}
