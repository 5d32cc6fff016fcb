package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/loamcal/pkg/adapters/lifecycle"
	"github.com/aretw0/loamcal/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_ForwardsAndCloses(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	in := make(chan core.Event, 2)
	src := lifecycle.NewSource(in)
	require.NoError(t, src.Start(ctx))

	in <- core.Event{Type: core.EventModify, ID: "Standup"}
	select {
	case e := <-src.Events():
		assert.Equal(t, "MODIFY Standup", e.String())
	case <-ctx.Done():
		t.Fatal("event not forwarded")
	}

	close(in)
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-ctx.Done():
		t.Fatal("output not closed")
	}
}

func TestSource_MergesQueuedChanges(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	in := make(chan core.Event, 8)
	in <- core.Event{Type: core.EventCreate, ID: "Retro"}
	in <- core.Event{Type: core.EventModify, ID: "Standup"}
	in <- core.Event{Type: core.EventModify, ID: "Retro"}
	in <- core.Event{Type: core.EventModify, ID: "$:/state/calendar/create-event"}
	in <- core.Event{Type: core.EventDelete, ID: "Standup"}
	close(in)

	src := lifecycle.NewSource(in, lifecycle.WithFilter(lifecycle.SkipSystemRecords))
	require.NoError(t, src.Start(ctx))

	// Nothing is read until the input is exhausted, so every change is queued.
	require.Eventually(t, func() bool { return len(in) == 0 }, time.Second, 5*time.Millisecond)

	var got []string
	for e := range src.Events() {
		got = append(got, e.String())
	}
	assert.Equal(t, []string{"CREATE Retro", "DELETE Standup"}, got)
}

func TestSource_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := lifecycle.NewSource(make(chan core.Event))
	require.NoError(t, src.Start(ctx))
	cancel()

	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("output not closed after cancel")
	}
}

func TestSkipSystemRecords(t *testing.T) {
	assert.True(t, lifecycle.SkipSystemRecords(core.Event{ID: "Standup"}))
	assert.True(t, lifecycle.SkipSystemRecords(core.Event{ID: "$:"}))
	assert.False(t, lifecycle.SkipSystemRecords(core.Event{ID: "$:/config/NewJournal/Title"}))
}
