package tasks_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/loamcal/pkg/tasks"
	"github.com/stretchr/testify/assert"
)

func waitDone(t *testing.T, task *tasks.Task) {
	t.Helper()
	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("task %s did not finish", task.Name)
	}
}

func TestRunner_NextTick(t *testing.T) {
	r := tasks.NewRunner(context.Background())
	var ran atomic.Bool
	task := r.NextTick("tick", func(ctx context.Context) { ran.Store(true) })
	waitDone(t, task)
	assert.True(t, ran.Load())
	r.Wait()
}

func TestRunner_IdleWaitsForQuiet(t *testing.T) {
	r := tasks.NewRunner(context.Background(), tasks.WithQuietPeriod(80*time.Millisecond))
	var ranAt atomic.Int64

	start := time.Now()
	task := r.Idle("save", 0, func(ctx context.Context) { ranAt.Store(time.Since(start).Milliseconds()) })

	time.Sleep(50 * time.Millisecond)
	r.Touch()
	waitDone(t, task)
	assert.GreaterOrEqual(t, ranAt.Load(), int64(120), "touch must postpone the idle task")
}

func TestRunner_IdleTimeoutBound(t *testing.T) {
	r := tasks.NewRunner(context.Background(), tasks.WithQuietPeriod(time.Hour))
	task := r.Idle("save", 50*time.Millisecond, func(ctx context.Context) {})
	waitDone(t, task)
	assert.False(t, task.Canceled())
}

func TestRunner_CancelPendingIdle(t *testing.T) {
	r := tasks.NewRunner(context.Background(), tasks.WithQuietPeriod(time.Hour))
	var ran atomic.Bool
	task := r.Idle("save", 0, func(ctx context.Context) { ran.Store(true) })
	assert.True(t, task.Cancel())
	r.Wait()
	assert.False(t, ran.Load())
}

func TestRunner_ContextCancelsIdle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := tasks.NewRunner(ctx, tasks.WithQuietPeriod(time.Hour))
	task := r.Idle("save", 0, func(ctx context.Context) {})
	cancel()
	waitDone(t, task)
	assert.True(t, task.Canceled())
	r.Wait()
}
