package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/teambition/rrule-go"

	"github.com/aretw0/loamcal/pkg/core"
	"github.com/aretw0/loamcal/pkg/dates"
)

// MaxOccurrences caps the expansion of a single recurring record.
const MaxOccurrences = 500

// defaultWindow bounds recurrence expansion when the range is open ended.
const defaultWindow = 366 * 24 * time.Hour

// Source projects records into calendar events.
type Source struct {
	cfg     Context
	records RecordLister
	logger  *slog.Logger
}

// NewSource creates an event source over records.
func NewSource(cfg Context, records RecordLister, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{cfg: cfg.Normalized(), records: records, logger: logger}
}

// Events returns the events intersecting [from, to), sorted by start then title.
// A zero from or to leaves that side open.
func (s *Source) Events(ctx context.Context, from, to time.Time) ([]Event, error) {
	if !doublestar.ValidatePattern(s.cfg.Filter) {
		return nil, fmt.Errorf("invalid calendar filter: %q", s.cfg.Filter)
	}

	var events []Event
	for _, doc := range s.records.Records() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if doc.ID == DraftTitle || doc.ID == DraftCaptionTitle {
			continue
		}
		if ok, _ := doublestar.Match(s.cfg.Filter, doc.ID); !ok {
			continue
		}
		start, ok := dates.Parse(doc.String(s.cfg.StartDateField))
		if !ok {
			continue
		}
		end, ok := dates.Parse(doc.String(s.cfg.EndDateField))
		if !ok || end.Before(start) {
			end = start
		}

		if rule := doc.String(FieldRRule); rule != "" {
			occ, err := s.expand(doc, rule, start, end, from, to)
			if err != nil {
				s.logger.Warn("skipping invalid recurrence", "title", doc.ID, "rrule", rule, "error", err)
			} else {
				events = append(events, occ...)
				continue
			}
		}
		if overlaps(start, end, from, to) {
			events = append(events, Event{Title: doc.ID, Start: start, End: end})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].Title < events[j].Title
	})
	return events, nil
}

// expand turns a recurring record into its occurrences within the range.
// Every occurrence shares the record title as GroupID so a move applies to all.
func (s *Source) expand(doc core.Document, rule string, start, end, from, to time.Time) ([]Event, error) {
	r, err := rrule.StrToRRule(strings.TrimPrefix(rule, "RRULE:"))
	if err != nil {
		return nil, err
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range core.ParseStringList(doc.String(FieldExDate)) {
		if t, ok := dates.Parse(ex); ok {
			set.ExDate(t)
		}
	}

	span := end.Sub(start)
	lo, hi := from, to
	if lo.IsZero() {
		lo = start
	}
	if hi.IsZero() {
		hi = lo.Add(defaultWindow)
	}

	var out []Event
	// Occurrences that started before lo may still overlap it.
	for _, occ := range set.Between(lo.Add(-span), hi, true) {
		occEnd := occ.Add(span)
		if !overlaps(occ, occEnd, from, to) {
			continue
		}
		out = append(out, Event{Title: doc.ID, Start: occ, End: occEnd, GroupID: doc.ID})
		if len(out) == MaxOccurrences {
			s.logger.Warn("recurrence truncated", "title", doc.ID, "max", MaxOccurrences)
			break
		}
	}
	return out, nil
}

// overlaps reports whether [start, end) intersects [from, to). A zero-length
// event counts when its start lies inside the range.
func overlaps(start, end, from, to time.Time) bool {
	if !to.IsZero() && !start.Before(to) {
		return false
	}
	if from.IsZero() {
		return true
	}
	if end.Equal(start) {
		return !start.Before(from)
	}
	return end.After(from)
}
