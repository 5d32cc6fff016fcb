package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
)

const defaultQuietPeriod = 50 * time.Millisecond

// Runner executes tasks on background goroutines.
// Idle tasks wait until no activity was reported for the quiet period.
type Runner struct {
	ctx    context.Context
	quiet  time.Duration
	logger *slog.Logger

	mu           sync.Mutex
	lastActivity time.Time
	wg           sync.WaitGroup
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithQuietPeriod sets how long the runner must be untouched to count as idle.
func WithQuietPeriod(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.quiet = d
		}
	}
}

// WithRunnerLogger sets the logger for task failures.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a runner whose tasks stop when ctx is done.
func NewRunner(ctx context.Context, opts ...RunnerOption) *Runner {
	r := &Runner{
		ctx:          ctx,
		quiet:        defaultQuietPeriod,
		logger:       slog.Default(),
		lastActivity: time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Touch records activity, postponing idle tasks.
func (r *Runner) Touch() {
	r.mu.Lock()
	r.lastActivity = time.Now()
	r.mu.Unlock()
}

func (r *Runner) idleAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActivity.Add(r.quiet)
}

// NextTick runs fn on a new goroutine.
func (r *Runner) NextTick(name string, fn Func) *Task {
	t := newTask(name, 0, fn)
	r.start(t, func(ctx context.Context) {
		t.run(ctx)
	})
	return t
}

// Idle runs fn once the runner is idle, or after timeout if that comes first.
// A zero timeout waits for idleness only.
func (r *Runner) Idle(name string, timeout time.Duration, fn Func) *Task {
	t := newTask(name, timeout, fn)
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	r.start(t, func(ctx context.Context) {
		for {
			wake := r.idleAt()
			if !deadline.IsZero() && deadline.Before(wake) {
				wake = deadline
			}
			wait := time.Until(wake)
			if wait <= 0 {
				t.run(ctx)
				return
			}
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-t.canceled:
				timer.Stop()
				return
			case <-ctx.Done():
				timer.Stop()
				t.Cancel()
				return
			}
		}
	})
	return t
}

func (r *Runner) start(t *Task, body func(ctx context.Context)) {
	r.wg.Add(1)
	lifecycle.Go(r.ctx, func(ctx context.Context) error {
		defer r.wg.Done()
		body(ctx)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		r.logger.Error("task failed", "task", t.Name, "id", t.ID, "error", fmt.Errorf("panic: %w", err))
	}))
}

// Wait blocks until every started task has finished or been cancelled.
func (r *Runner) Wait() {
	r.wg.Wait()
}

var _ Scheduler = (*Runner)(nil)
