package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// LazyLoadEvent is dispatched to ask the store for the full body of a skinny record.
const LazyLoadEvent = "lazyLoad"

const defaultEventBuffer = 100

// Listener reacts to a dispatched store event.
type Listener func(ctx context.Context, payload any)

// Service is the record store: an in-memory record set backed by a Repository.
// Writes land in memory first and reach the repository on SaveRecord/AutoSave.
type Service struct {
	repo            Repository
	logger          *slog.Logger
	readOnly        bool
	eventBufferSize int

	mu          sync.RWMutex
	records     map[string]Document
	dirty       map[string]bool
	listeners   map[string][]Listener
	subscribers map[*subscriber]struct{}
}

type subscriber struct {
	pattern string
	ch      chan Event
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger used by the service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceReadOnly rejects every write with ErrReadOnly.
func WithServiceReadOnly(readOnly bool) ServiceOption {
	return func(s *Service) {
		s.readOnly = readOnly
	}
}

// WithEventBuffer sets the per-subscriber buffer of Watch. Zero keeps the default (100).
func WithEventBuffer(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.eventBufferSize = size
		}
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:            repo,
		logger:          slog.Default(),
		eventBufferSize: defaultEventBuffer,
		records:         make(map[string]Document),
		dirty:           make(map[string]bool),
		listeners:       make(map[string][]Listener),
		subscribers:     make(map[*subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.AddEventListener(LazyLoadEvent, s.onLazyLoad)
	return s
}

// Load replaces the clean part of the in-memory set with the repository listing.
// Records with unsaved changes are kept.
func (s *Service) Load(ctx context.Context) error {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]Document, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			continue
		}
		next[doc.ID] = doc.Clone()
	}
	for title := range s.dirty {
		next[title] = s.records[title]
	}
	s.records = next
	s.logger.Debug("records loaded", "count", len(next))
	return nil
}

// GetRecord returns a copy of the record with the given title.
func (s *Service) GetRecord(title string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.records[title]
	if !ok {
		return Document{}, false
	}
	return doc.Clone(), true
}

// GetText returns the text body of a record. The body of a skinny record is
// loaded from the repository first.
func (s *Service) GetText(title string) (string, bool) {
	s.mu.RLock()
	doc, ok := s.records[title]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !doc.IsSkinny() {
		return doc.Content, true
	}
	if err := s.Reload(context.Background(), title); err != nil {
		s.logger.Warn("failed to load record body", "title", title, "error", err)
		return doc.Content, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok = s.records[title]
	return doc.Content, ok
}

// Records returns a snapshot of every record, sorted by title.
func (s *Service) Records() []Document {
	s.mu.RLock()
	out := make([]Document, 0, len(s.records))
	for _, doc := range s.records {
		out = append(out, doc.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddRecord creates or replaces a record in memory and marks it for saving.
func (s *Service) AddRecord(doc Document) error {
	if doc.ID == "" {
		return ErrEmptyTitle
	}
	if s.readOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	_, existed := s.records[doc.ID]
	s.records[doc.ID] = doc.Clone()
	s.dirty[doc.ID] = true
	s.mu.Unlock()

	eType := EventModify
	if !existed {
		eType = EventCreate
	}
	s.publish(Event{Type: eType, ID: doc.ID, Timestamp: time.Now().Unix()})
	return nil
}

// IsDirty reports whether a record has changes not yet saved.
func (s *Service) IsDirty(title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty[title]
}

// SaveRecord persists one record if it has unsaved changes.
func (s *Service) SaveRecord(ctx context.Context, title string) error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.mu.RLock()
	doc, ok := s.records[title]
	dirty := s.dirty[title]
	s.mu.RUnlock()
	if !ok || !dirty {
		return nil
	}

	doc = doc.Clone()
	if doc.IsSkinny() {
		// Never overwrite a body that was not loaded.
		full, err := s.repo.Get(ctx, title)
		if err == nil {
			doc.Content = full.Content
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("failed to load body of %s: %w", title, err)
		}
	}
	delete(doc.Metadata, FieldSkinny)

	if err := s.repo.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to save %s: %w", title, err)
	}

	s.mu.Lock()
	if current, ok := s.records[title]; ok && current.IsSkinny() {
		s.records[title] = doc
	}
	delete(s.dirty, title)
	s.mu.Unlock()

	s.logger.Debug("record saved", "title", title)
	return nil
}

// AutoSave persists every record with unsaved changes.
func (s *Service) AutoSave(ctx context.Context) error {
	s.mu.RLock()
	titles := make([]string, 0, len(s.dirty))
	for title := range s.dirty {
		titles = append(titles, title)
	}
	s.mu.RUnlock()
	sort.Strings(titles)

	var errs []error
	for _, title := range titles {
		if err := s.SaveRecord(ctx, title); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AddEventListener registers fn for the named store event.
func (s *Service) AddEventListener(name string, fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[name] = append(s.listeners[name], fn)
}

// Dispatch invokes the listeners registered for name.
func (s *Service) Dispatch(ctx context.Context, name string, payload any) {
	s.mu.RLock()
	fns := append([]Listener(nil), s.listeners[name]...)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(ctx, payload)
	}
}

func (s *Service) onLazyLoad(ctx context.Context, payload any) {
	title, ok := payload.(string)
	if !ok || title == "" {
		return
	}
	if err := s.Reload(ctx, title); err != nil {
		s.logger.Error("lazy load failed", "title", title, "error", err)
	}
}

// Reload reads a record from the repository into memory.
// A record with unsaved changes only gets its body filled in.
func (s *Service) Reload(ctx context.Context, title string) error {
	full, err := s.repo.Get(ctx, title)
	if errors.Is(err, ErrNotFound) {
		s.mu.Lock()
		_, existed := s.records[title]
		if existed && !s.dirty[title] {
			delete(s.records, title)
		}
		s.mu.Unlock()
		if existed {
			s.publish(Event{Type: EventDelete, ID: title, Timestamp: time.Now().Unix()})
		}
		return nil
	}
	if err != nil {
		return err
	}
	full.ID = title
	delete(full.Metadata, FieldSkinny)

	s.mu.Lock()
	if s.dirty[title] {
		current := s.records[title].Clone()
		current.Content = full.Content
		delete(current.Metadata, FieldSkinny)
		full = current
	}
	s.records[title] = full
	s.mu.Unlock()

	s.publish(Event{Type: EventModify, ID: title, Timestamp: time.Now().Unix()})
	return nil
}

// Watch observes record changes whose title matches the doublestar pattern.
// The channel is buffered and closed when ctx is done; slow readers miss events.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	if pattern == "" {
		pattern = "**"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %q", pattern)
	}
	sub := &subscriber{pattern: pattern, ch: make(chan Event, s.eventBufferSize)}

	s.mu.Lock()
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subscribers, sub)
		close(sub.ch)
		s.mu.Unlock()
	}()
	return sub.ch, nil
}

// publish is called without s.mu held.
func (s *Service) publish(e Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sub := range s.subscribers {
		if ok, _ := doublestar.Match(sub.pattern, e.ID); !ok {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			s.logger.Debug("event dropped, subscriber buffer full", "id", e.ID)
		}
	}
}

// Follow keeps the in-memory set in step with external changes reported by a
// Watchable repository. It returns once the watch is established.
func (s *Service) Follow(ctx context.Context) error {
	w, ok := s.repo.(Watchable)
	if !ok {
		return errors.New("repository does not support watching")
	}
	events, err := w.Watch(ctx, "**")
	if err != nil {
		return err
	}
	go func() {
		for e := range events {
			if s.IsDirty(e.ID) && e.Type != EventDelete {
				continue
			}
			if err := s.Reload(ctx, e.ID); err != nil {
				s.logger.Warn("failed to reload record", "id", e.ID, "error", err)
			}
		}
	}()
	return nil
}
