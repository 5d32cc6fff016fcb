package calendar

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/loamcal/pkg/core"
	"github.com/aretw0/loamcal/pkg/dates"
	"github.com/aretw0/loamcal/pkg/placement"
	"github.com/aretw0/loamcal/pkg/tasks"
)

const journalSpan = 24 * time.Hour

// Handlers reacts to calendar gestures. Failures are logged, never returned:
// a gesture that cannot be applied leaves the store untouched.
type Handlers struct {
	cfg    Context
	store  Store
	host   Host
	modal  Modal
	sched  tasks.Scheduler
	place  PlaceFunc
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	popup *popup
	stats handlerStats
}

type handlerStats struct {
	Puts    int
	Clicks  int
	Selects int
}

// Option configures Handlers.
type Option func(*Handlers)

// WithModal sets the modal service used by Select.
func WithModal(m Modal) Option {
	return func(h *Handlers) {
		h.modal = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithClock sets the source of modification times.
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) {
		if now != nil {
			h.now = now
		}
	}
}

// WithPlacer replaces the popup placement algorithm.
func WithPlacer(place PlaceFunc) Option {
	return func(h *Handlers) {
		if place != nil {
			h.place = place
		}
	}
}

// NewHandlers creates the handler set. Deferred work goes through sched.
func NewHandlers(cfg Context, store Store, host Host, sched tasks.Scheduler, opts ...Option) *Handlers {
	h := &Handlers{
		cfg:    cfg.Normalized(),
		store:  store,
		host:   host,
		sched:  sched,
		place:  placement.ComputePosition,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// PutEvent writes the bounds of ev into its record and schedules a save.
// It reports whether the record was changed.
func (h *Handlers) PutEvent(ctx context.Context, ev Event, gesture *Gesture) bool {
	if !ev.HasRange() || ev.Title == "" {
		h.logger.Debug("put event skipped, event incomplete", "title", ev.Title)
		return false
	}
	doc, ok := h.store.GetRecord(ev.Title)
	if !ok {
		h.logger.Debug("put event skipped, no record", "title", ev.Title)
		return false
	}
	return h.writeBounds(doc.Clone(), ev.Start, ev.End, gesture)
}

// shiftSeries moves the first occurrence of a recurring record, and its
// excluded dates, by the start and end deltas of a gesture.
func (h *Handlers) shiftSeries(doc core.Document, startDelta, endDelta time.Duration, gesture *Gesture) bool {
	start, ok := dates.Parse(doc.String(h.cfg.StartDateField))
	if !ok {
		h.logger.Debug("shift skipped, record has no start", "title", doc.ID)
		return false
	}
	end, ok := dates.Parse(doc.String(h.cfg.EndDateField))
	if !ok {
		end = start
	}

	doc = doc.Clone()
	if ex := core.ParseStringList(doc.String(FieldExDate)); len(ex) > 0 {
		shifted := make([]string, 0, len(ex))
		for _, s := range ex {
			if t, ok := dates.Parse(s); ok {
				s = dates.Stringify(t.Add(startDelta))
			}
			shifted = append(shifted, s)
		}
		doc.Metadata[FieldExDate] = strings.Join(shifted, " ")
	}
	return h.writeBounds(doc, start.Add(startDelta), end.Add(endDelta), gesture)
}

func (h *Handlers) writeBounds(doc core.Document, start, end time.Time, gesture *Gesture) bool {
	doc.Metadata[h.cfg.StartDateField] = dates.Stringify(start)
	doc.Metadata[h.cfg.EndDateField] = dates.Stringify(end)
	doc.Metadata[core.FieldModified] = dates.Stringify(h.now())
	if err := h.store.AddRecord(doc); err != nil {
		h.logger.Error("failed to update event record", "title", doc.ID, "error", err)
		return false
	}

	h.mu.Lock()
	h.stats.Puts++
	h.mu.Unlock()

	h.notifySave(doc.ID, gesture)
	return true
}

// notifySave asks the host to save title and then the whole store, once idle.
func (h *Handlers) notifySave(title string, gesture *Gesture) {
	h.sched.Idle("save "+title, h.cfg.SaveTimeout, func(ctx context.Context) {
		h.host.Notify(ctx, Notification{
			Type:    SaveNotification,
			Title:   title,
			Params:  map[string]string{"suppressNavigation": "yes"},
			Gesture: gesture,
		})
		h.host.Notify(ctx, Notification{Type: AutoSaveNotification})
	})
}

// EventResize applies the new bounds to the event and its related events.
func (h *Handlers) EventResize(ctx context.Context, info ChangeInfo) int {
	return h.putAll(ctx, info)
}

// EventDrop applies the new bounds to the event and its related events.
func (h *Handlers) EventDrop(ctx context.Context, info ChangeInfo) int {
	return h.putAll(ctx, info)
}

// putAll writes each record once. Occurrences of a recurring record share its
// title, so only the first one seen is applied, as a shift of the series.
func (h *Handlers) putAll(ctx context.Context, info ChangeInfo) int {
	changed := 0
	seen := make(map[string]bool)
	for _, ev := range append([]Event{info.Event}, info.RelatedEvents...) {
		if seen[ev.Title] {
			continue
		}
		seen[ev.Title] = true
		if h.putChanged(ctx, ev, info) {
			changed++
		}
	}
	return changed
}

func (h *Handlers) putChanged(ctx context.Context, ev Event, info ChangeInfo) bool {
	doc, ok := h.store.GetRecord(ev.Title)
	if !ok || doc.String(FieldRRule) == "" {
		return h.PutEvent(ctx, ev, info.Gesture)
	}
	old := info.OldEvent
	if old == nil || !old.HasRange() || !info.Event.HasRange() {
		h.logger.Debug("recurring event not changed, gesture has no previous bounds", "title", ev.Title)
		return false
	}
	return h.shiftSeries(doc, info.Event.Start.Sub(old.Start), info.Event.End.Sub(old.End), info.Gesture)
}

// Select seeds the draft records for a new event and opens the create modal.
// It reports whether the drafts were written.
func (h *Handlers) Select(ctx context.Context, info SelectInfo) bool {
	if h.cfg.ReadOnly {
		h.logger.Debug("select ignored, calendar is read only")
		return false
	}

	start, end := info.Start, info.End
	label := info.StartStr
	body := ""
	if info.View == ViewMonth {
		// Month cells carry dates only; the string bounds are authoritative.
		// The journal title is formatted in the selection's own offset.
		if t, ok := dates.ParseInZone(info.StartStr); ok {
			start = t
		}
		if t, ok := dates.ParseInZone(info.EndStr); ok {
			end = t
		}
		if end.Sub(start) == journalSpan {
			if tmpl, ok := h.store.GetText(JournalTitleConfig); ok {
				label = dates.Format(start, tmpl)
				if text, ok := h.store.GetText(JournalTextConfig); ok {
					body = text
				}
			}
		}
	}
	if start.IsZero() || end.IsZero() {
		h.logger.Debug("select ignored, selection has no bounds", "start", info.StartStr, "end", info.EndStr)
		return false
	}

	if err := h.store.AddRecord(core.Document{ID: DraftCaptionTitle}); err != nil {
		h.logger.Error("failed to write draft caption", "error", err)
		return false
	}
	draft := core.Document{
		ID:      DraftTitle,
		Content: body,
		Metadata: core.Metadata{
			h.cfg.StartDateField: dates.Stringify(start),
			h.cfg.EndDateField:   dates.Stringify(end),
			FieldCalendarEntry:   "yes",
			FieldDraftTitle:      label,
			core.FieldTags:       append([]string{}, h.cfg.DefaultTags...),
		},
	}
	if err := h.store.AddRecord(draft); err != nil {
		h.logger.Error("failed to write draft event", "error", err)
		return false
	}

	h.mu.Lock()
	h.stats.Selects++
	h.mu.Unlock()

	if h.modal == nil {
		return true
	}
	if err := h.modal.Display(ctx, h.cfg.CreateTemplate); err != nil {
		h.logger.Error("failed to display create modal", "error", err)
		return true
	}
	h.modal.Focus(TitleInputSelector)
	return true
}
