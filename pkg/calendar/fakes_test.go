package calendar_test

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/loamcal/pkg/calendar"
	"github.com/aretw0/loamcal/pkg/core"
	"github.com/aretw0/loamcal/pkg/placement"
)

// fakeStore is an in-memory calendar.Store that counts mutations.
type fakeStore struct {
	mu         sync.Mutex
	records    map[string]core.Document
	adds       int
	dispatched []string
	failAdd    bool
}

func newFakeStore(docs ...core.Document) *fakeStore {
	s := &fakeStore{records: make(map[string]core.Document)}
	for _, d := range docs {
		if d.Metadata == nil {
			d.Metadata = core.Metadata{}
		}
		s.records[d.ID] = d
	}
	return s
}

func (s *fakeStore) GetRecord(title string) (core.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.records[title]
	if !ok {
		return core.Document{}, false
	}
	return d.Clone(), true
}

func (s *fakeStore) GetText(title string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.records[title]
	return d.Content, ok
}

func (s *fakeStore) AddRecord(doc core.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adds++
	if s.failAdd {
		return errors.New("store unavailable")
	}
	s.records[doc.ID] = doc.Clone()
	return nil
}

func (s *fakeStore) Dispatch(ctx context.Context, name string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatched = append(s.dispatched, name+":"+payload.(string))
}

func (s *fakeStore) Records() []core.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Document, 0, len(s.records))
	for _, d := range s.records {
		out = append(out, d.Clone())
	}
	return out
}

func (s *fakeStore) addCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adds
}

// fakeHost records notifications and hands out fakeWidgets.
type fakeHost struct {
	mu            sync.Mutex
	notifications []calendar.Notification
	widgets       []*fakeWidget
	renderErr     error
}

func (h *fakeHost) Notify(ctx context.Context, n calendar.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifications = append(h.notifications, n)
}

func (h *fakeHost) RenderPreview(ctx context.Context, title string) (calendar.Widget, error) {
	if h.renderErr != nil {
		return nil, h.renderErr
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	w := &fakeWidget{title: title, id: title}
	h.widgets = append(h.widgets, w)
	return w, nil
}

func (h *fakeHost) Viewport() placement.Rect {
	return placement.Rect{Width: 1000, Height: 800}
}

// open returns the widgets that have not been removed.
func (h *fakeHost) open() []*fakeWidget {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*fakeWidget
	for _, w := range h.widgets {
		if !w.removed {
			out = append(out, w)
		}
	}
	return out
}

type fakeWidget struct {
	id      string
	title   string
	pos     *placement.Point
	onClose []func()
	removed bool
}

func (w *fakeWidget) ID() string                    { return w.id }
func (w *fakeWidget) Size() placement.Size          { return placement.Size{Width: 200, Height: 100} }
func (w *fakeWidget) SetPosition(p placement.Point) { w.pos = &p }
func (w *fakeWidget) OnClose(fn func())             { w.onClose = append(w.onClose, fn) }
func (w *fakeWidget) Remove()                       { w.removed = true }

func (w *fakeWidget) clickClose() {
	for _, fn := range w.onClose {
		fn()
	}
}
