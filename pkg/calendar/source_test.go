package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/loamcal/pkg/calendar"
	"github.com/aretw0/loamcal/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(events []calendar.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

func TestSource_Events(t *testing.T) {
	store := newFakeStore(
		core.Document{ID: "Late", Metadata: core.Metadata{"startDate": "20240101150000000", "endDate": "20240101160000000"}},
		core.Document{ID: "Early", Metadata: core.Metadata{"startDate": "20240101090000000", "endDate": "20240101100000000"}},
		core.Document{ID: "Point", Metadata: core.Metadata{"startDate": "20240101120000000"}},
		core.Document{ID: "NextWeek", Metadata: core.Metadata{"startDate": "20240108090000000", "endDate": "20240108100000000"}},
		core.Document{ID: "NoDate"},
		core.Document{ID: calendar.DraftTitle, Metadata: core.Metadata{"startDate": "20240101090000000", "endDate": "20240101100000000"}},
	)
	src := calendar.NewSource(calendar.Context{}, store, nil)

	events, err := src.Events(context.Background(), day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"Early", "Point", "Late"}, titles(events))
	assert.True(t, events[1].Start.Equal(events[1].End))

	all, err := src.Events(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSource_Overlap(t *testing.T) {
	store := newFakeStore(core.Document{ID: "Overnight", Metadata: core.Metadata{"startDate": "20231231220000000", "endDate": "20240101020000000"}})
	src := calendar.NewSource(calendar.Context{}, store, nil)

	events, err := src.Events(context.Background(), day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, events, 1)

	events, err = src.Events(context.Background(), at(2, 0), at(3, 0))
	require.NoError(t, err)
	assert.Empty(t, events, "end is exclusive")
}

func TestSource_Filter(t *testing.T) {
	store := newFakeStore(
		core.Document{ID: "work/standup", Metadata: core.Metadata{"startDate": "20240101090000000", "endDate": "20240101100000000"}},
		core.Document{ID: "home/gym", Metadata: core.Metadata{"startDate": "20240101090000000", "endDate": "20240101100000000"}},
	)
	src := calendar.NewSource(calendar.Context{Filter: "work/**"}, store, nil)
	events, err := src.Events(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"work/standup"}, titles(events))

	_, err = calendar.NewSource(calendar.Context{Filter: "["}, store, nil).Events(context.Background(), time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestSource_Recurrence(t *testing.T) {
	store := newFakeStore(core.Document{ID: "Yoga", Metadata: core.Metadata{
		"startDate": "20240101070000000",
		"endDate":   "20240101080000000",
		"rrule":     "FREQ=DAILY;COUNT=5",
		"exdate":    "20240103070000000",
	}})
	src := calendar.NewSource(calendar.Context{}, store, nil)

	events, err := src.Events(context.Background(), day, day.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 4)
	for _, e := range events {
		assert.Equal(t, "Yoga", e.GroupID)
		assert.Equal(t, time.Hour, e.End.Sub(e.Start))
	}
	assert.Equal(t, 4, events[2].Start.Day())

	// An occurrence already running at the start of the range is included.
	events, err = src.Events(context.Background(), at(48+7, 30), at(48+7, 45))
	require.NoError(t, err)
	assert.Empty(t, events, "the excluded date leaves a gap")
	events, err = src.Events(context.Background(), at(24+7, 30), at(24+7, 45))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].Start.Day())
}

func TestSource_InvalidRecurrenceFallsBack(t *testing.T) {
	store := newFakeStore(core.Document{ID: "Odd", Metadata: core.Metadata{
		"startDate": "20240101070000000",
		"endDate":   "20240101080000000",
		"rrule":     "FREQ=SOMETIMES",
	}})
	events, err := calendar.NewSource(calendar.Context{}, store, nil).Events(context.Background(), day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].GroupID)
}
