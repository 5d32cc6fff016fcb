package tasks

import (
	"context"
	"sync"
	"time"
)

// Queue is a manual scheduler: tasks wait until Flush.
type Queue struct {
	mu      sync.Mutex
	pending []*Task
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// NextTick enqueues fn.
func (q *Queue) NextTick(name string, fn Func) *Task {
	return q.push(newTask(name, 0, fn))
}

// Idle enqueues fn. A queue is idle whenever it is flushed, so timeout is only recorded.
func (q *Queue) Idle(name string, timeout time.Duration, fn Func) *Task {
	return q.push(newTask(name, timeout, fn))
}

func (q *Queue) push(t *Task) *Task {
	q.mu.Lock()
	q.pending = append(q.pending, t)
	q.mu.Unlock()
	return t
}

// Pending returns the number of tasks waiting to run, cancelled ones included.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush runs queued tasks in FIFO order until the queue is empty, including
// tasks enqueued while flushing. It returns the number of tasks that ran.
func (q *Queue) Flush(ctx context.Context) int {
	ran := 0
	for {
		if ctx.Err() != nil {
			return ran
		}
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return ran
		}
		t := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		if t.run(ctx) {
			ran++
		}
	}
}

var _ Scheduler = (*Queue)(nil)
