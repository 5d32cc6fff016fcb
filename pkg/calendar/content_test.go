package calendar_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/loamcal/pkg/calendar"
	"github.com/aretw0/loamcal/pkg/core"
	"github.com/stretchr/testify/assert"
)

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestEventContent_PendingSelection(t *testing.T) {
	f := calendar.NewFormatter(calendar.Context{}, newFakeStore())

	t.Run("short", func(t *testing.T) {
		out := f.EventContent(calendar.ContentArg{
			Event:    calendar.Event{Title: "New", Start: at(9, 0), End: at(10, 30)},
			View:     calendar.ViewWeek,
			TimeText: "9:00 - 10:30",
		})
		assert.Equal(t, "<div><div>New</div><div>9:00 - 10:30</div><div>1 hour 30 minutes</div></div>", out.HTML)
	})

	t.Run("long duplicates time at the bottom", func(t *testing.T) {
		out := f.EventContent(calendar.ContentArg{
			Event:    calendar.Event{Title: "New", Start: at(9, 0), End: at(12, 0)},
			View:     calendar.ViewDay,
			TimeText: "9:00 - 12:00",
		})
		assert.Equal(t, 2, strings.Count(out.HTML, "9:00 - 12:00"))
		assert.Equal(t, 2, strings.Count(out.HTML, "3 hours"))
		assert.Contains(t, out.HTML, "justify-content: space-between;")
		assert.True(t, strings.HasPrefix(out.HTML, `<div style=`))
	})

	t.Run("without bounds", func(t *testing.T) {
		out := f.EventContent(calendar.ContentArg{Event: calendar.Event{Title: "New"}, View: calendar.ViewWeek, TimeText: "all day"})
		assert.Equal(t, "<div><div>New</div><div>all day</div><div></div></div>", out.HTML)
	})
}

func TestEventContent_CaptionFallsBackToTitle(t *testing.T) {
	store := newFakeStore(core.Document{ID: "Standup", Metadata: core.Metadata{"startDate": "20240101090000000", "endDate": "20240101093000000"}})
	f := calendar.NewFormatter(calendar.Context{}, store)

	for _, view := range calendar.Views {
		t.Run(string(view), func(t *testing.T) {
			out := f.EventContent(calendar.ContentArg{Event: calendar.Event{Title: "Standup"}, View: view, TimeText: "9:00"})
			assert.True(t, strings.HasPrefix(out.HTML, "<div>Standup</div>"), out.HTML)
		})
	}
}

func TestEventContent_Caption(t *testing.T) {
	store := newFakeStore(
		core.Document{ID: "Plain", Content: "notes", Metadata: core.Metadata{"caption": "Team <sync>"}},
		core.Document{ID: "Nested", Metadata: core.Metadata{"caption": "Meet {{Room!!name}}"}},
		core.Document{ID: "Room", Metadata: core.Metadata{"name": "Room *1*"}},
	)
	f := calendar.NewFormatter(calendar.Context{}, store)

	out := f.EventContent(calendar.ContentArg{Event: calendar.Event{Title: "Plain"}, View: calendar.ViewMonth})
	assert.Equal(t, `<div class="fc-event-title-with-text">Team &lt;sync&gt;</div>`, out.HTML)

	out = f.EventContent(calendar.ContentArg{Event: calendar.Event{Title: "Nested"}, View: calendar.ViewMonth})
	assert.Equal(t, `<div>Meet Room 1</div>`, out.HTML)
}

func TestEventContent_MonthShowsCaptionOnly(t *testing.T) {
	store := newFakeStore(core.Document{
		ID:      "Review",
		Content: "secret body",
		Metadata: core.Metadata{
			"caption":   "Review",
			"tags":      []string{"work"},
			"startDate": "20240101090000000",
			"endDate":   "20240101150000000",
		},
	})
	f := calendar.NewFormatter(calendar.Context{}, store)

	out := f.EventContent(calendar.ContentArg{Event: calendar.Event{Title: "Review"}, View: calendar.ViewMonth, TimeText: "9:00"})
	assert.Equal(t, `<div class="fc-event-title-with-text">Review</div>`, out.HTML)
	assert.NotContains(t, out.HTML, "work")
	assert.NotContains(t, out.HTML, "secret body")
	assert.NotContains(t, out.HTML, "9:00")
}

func TestEventContent_TimeGrid(t *testing.T) {
	store := newFakeStore(
		core.Document{
			ID:      "Short",
			Content: "agenda",
			Metadata: core.Metadata{
				"caption":   "Short",
				"tags":      []any{"work", "Weekly Sync"},
				"startDate": "20240101090000000",
				"endDate":   "20240101093000000",
			},
		},
		core.Document{
			ID: "Long",
			Metadata: core.Metadata{
				"startDate": "20240101090000000",
				"endDate":   "20240101110000000",
			},
		},
	)
	f := calendar.NewFormatter(calendar.Context{}, store)

	out := f.EventContent(calendar.ContentArg{Event: calendar.Event{Title: "Short"}, View: calendar.ViewWeek, TimeText: "9:00 - 9:30"})
	assert.Equal(t, `<div class="fc-event-title-with-text">Short</div>`+
		`<div class="fc-event-main-tags"><span>work</span><span>Weekly Sync</span></div>`+
		`<div>9:00 - 9:30</div><div>30 minutes</div><div>agenda</div>`, out.HTML)
	assert.Equal(t, 1, strings.Count(out.HTML, "9:00 - 9:30"))

	// Exactly the threshold uses the long layout.
	out = f.EventContent(calendar.ContentArg{Event: calendar.Event{Title: "Long"}, View: calendar.ViewThreeDay, TimeText: "9:00 - 11:00"})
	assert.Equal(t, 2, strings.Count(out.HTML, "9:00 - 11:00"))
	assert.Equal(t, 2, strings.Count(out.HTML, "2 hours"))
}

func TestEventContent_TextPreview(t *testing.T) {
	long := strings.Repeat("a", 1000) + strings.Repeat("é", 1000) + strings.Repeat("z", 1000)
	store := newFakeStore(
		core.Document{ID: "Plain", Content: long, Metadata: core.Metadata{"type": "text/plain"}},
		core.Document{ID: "Image", Content: "binary", Metadata: core.Metadata{"type": "image/png"}},
	)
	f := calendar.NewFormatter(calendar.Context{}, store)

	out := f.EventContent(calendar.ContentArg{Event: calendar.Event{Title: "Plain"}, View: calendar.ViewDay})
	want := "<div>" + long[:len(strings.Repeat("a", 1000)+strings.Repeat("é", 1000))] + "</div>"
	assert.True(t, strings.HasSuffix(out.HTML, want))
	assert.NotContains(t, out.HTML, "z")

	out = f.EventContent(calendar.ContentArg{Event: calendar.Event{Title: "Image"}, View: calendar.ViewDay})
	assert.True(t, strings.HasSuffix(out.HTML, "<div>image/png too large</div>"))
	assert.NotContains(t, out.HTML, "binary")
}

type countingStore struct {
	*fakeStore
	textReads int
}

func (s *countingStore) GetText(title string) (string, bool) {
	s.textReads++
	return "Notes from the sync", true
}

func TestEventContent_SkinnyRecordRendersWithoutText(t *testing.T) {
	store := &countingStore{fakeStore: newFakeStore(core.Document{
		ID:       "Sync",
		Metadata: core.Metadata{core.FieldSkinny: true, "caption": "Team sync"},
	})}
	f := calendar.NewFormatter(calendar.Context{}, store)

	out := f.EventContent(calendar.ContentArg{Event: calendar.Event{Title: "Sync"}, View: calendar.ViewDay})
	assert.True(t, strings.HasSuffix(out.HTML, "<div></div>"), out.HTML)
	assert.Contains(t, out.HTML, "Team sync")
	assert.NotContains(t, out.HTML, "fc-event-title-with-text")
	assert.NotContains(t, out.HTML, "Notes from the sync")
	assert.Equal(t, 0, store.textReads)
	assert.Equal(t, 0, store.addCount())
	assert.Empty(t, store.dispatched)
}

func TestEventContent_CustomFields(t *testing.T) {
	store := newFakeStore(core.Document{ID: "Trip", Metadata: core.Metadata{
		"from": "20240101",
		"to":   "20240103",
	}})
	f := calendar.NewFormatter(calendar.Context{StartDateField: "from", EndDateField: "to", DurationThreshold: 72 * time.Hour}, store)

	out := f.EventContent(calendar.ContentArg{Event: calendar.Event{Title: "Trip"}, View: calendar.ViewWeek, TimeText: "all day"})
	assert.Contains(t, out.HTML, "<div>2 days</div>")
	assert.Equal(t, 1, strings.Count(out.HTML, "all day"))
}
