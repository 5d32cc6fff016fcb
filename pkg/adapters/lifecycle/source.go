// Package lifecycle exposes store change events as a lifecycle.Source.
//
// Changes queue up while the consumer is busy. Queued changes to the same
// record are merged, so a slow client refetching after each event sees every
// changed title once instead of a backlog of edits.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/loamcal/pkg/core"
)

// Filter reports whether a change is forwarded.
type Filter func(core.Event) bool

// Option configures the source.
type Option func(*changeSource)

// WithFilter forwards only the changes accepted by keep.
func WithFilter(keep Filter) Option {
	return func(s *changeSource) {
		if keep != nil {
			s.keep = keep
		}
	}
}

// SkipSystemRecords drops changes to "$:/" records such as the create-event draft.
func SkipSystemRecords(e core.Event) bool {
	return len(e.ID) < 3 || e.ID[:3] != "$:/"
}

type changeSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
	keep   Filter
}

// NewSource creates a lifecycle.Source emitting the changes read from events.
func NewSource(events <-chan core.Event, opts ...Option) lifecycle.Source {
	s := &changeSource{
		events: events,
		out:    make(chan lifecycle.Event),
		keep:   func(core.Event) bool { return true },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards changes until ctx is done or the store channel closes, then
// closes the output. Changes still queued when the store channel closes are
// delivered first.
func (s *changeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		var pending []core.Event
		in := s.events
		for in != nil || len(pending) > 0 {
			var send chan lifecycle.Event
			var next core.Event
			if len(pending) > 0 {
				send, next = s.out, pending[0]
			}
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-in:
				if !ok {
					in = nil
					continue
				}
				if s.keep(e) {
					pending = merge(pending, e)
				}
			case send <- next:
				pending = pending[1:]
			}
		}
		return nil
	})
	return nil
}

// merge queues e, folding it into a queued change of the same record.
// A record created and then modified is still reported as created.
func merge(pending []core.Event, e core.Event) []core.Event {
	for i, p := range pending {
		if p.ID != e.ID {
			continue
		}
		if p.Type == core.EventCreate && e.Type == core.EventModify {
			e.Type = core.EventCreate
		}
		pending[i] = e
		return pending
	}
	return append(pending, e)
}
