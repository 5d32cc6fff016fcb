// Package tasks schedules deferred work with cancellable handles.
//
// Two schedulers share the Scheduler interface: Queue holds tasks until
// Flush is called, Runner executes them on background goroutines.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Func is the body of a task.
type Func func(ctx context.Context)

// Scheduler defers work.
type Scheduler interface {
	// NextTick runs fn as soon as the scheduler gets to it.
	NextTick(name string, fn Func) *Task
	// Idle runs fn when the scheduler is idle, or after timeout at the latest.
	Idle(name string, timeout time.Duration, fn Func) *Task
}

type taskState int

const (
	statePending taskState = iota
	stateRunning
	stateDone
	stateCanceled
)

// Task is a handle to scheduled work.
type Task struct {
	ID      string
	Name    string
	Timeout time.Duration

	fn       Func
	mu       sync.Mutex
	state    taskState
	done     chan struct{}
	canceled chan struct{}
}

func newTask(name string, timeout time.Duration, fn Func) *Task {
	return &Task{
		ID:       uuid.NewString(),
		Name:     name,
		Timeout:  timeout,
		fn:       fn,
		done:     make(chan struct{}),
		canceled: make(chan struct{}),
	}
}

// Cancel prevents a pending task from running. It returns false if the task
// has already started.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != statePending {
		return t.state == stateCanceled
	}
	t.state = stateCanceled
	close(t.canceled)
	close(t.done)
	return true
}

// Canceled reports whether the task was cancelled before running.
func (t *Task) Canceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == stateCanceled
}

// Done is closed once the task has run or was cancelled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// run executes the task unless it was cancelled. It reports whether fn ran.
func (t *Task) run(ctx context.Context) bool {
	t.mu.Lock()
	if t.state != statePending {
		t.mu.Unlock()
		return false
	}
	t.state = stateRunning
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.state = stateDone
		t.mu.Unlock()
		close(t.done)
	}()
	t.fn(ctx)
	return true
}
