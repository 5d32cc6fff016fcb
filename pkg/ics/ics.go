// Package ics converts between calendar events and iCalendar data.
package ics

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/aretw0/loamcal/pkg/calendar"
	"github.com/aretw0/loamcal/pkg/core"
	"github.com/aretw0/loamcal/pkg/dates"
)

// DefaultProductID identifies exported calendars.
const DefaultProductID = "-//loamcal//EN"

// Encode writes events as a VCALENDAR with one VEVENT each.
func Encode(w io.Writer, prodID string, events []calendar.Event) error {
	if prodID == "" {
		prodID = DefaultProductID
	}
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	stamp := time.Now().UTC()
	for _, ev := range events {
		if ev.Start.IsZero() {
			continue
		}
		cal.Children = append(cal.Children, toVEvent(ev, stamp))
	}
	// An empty VCALENDAR is invalid, so an empty export writes nothing.
	if len(cal.Children) == 0 {
		return nil
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func toVEvent(ev calendar.Event, stamp time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, UID(ev))
	ve.Props.SetText(ical.PropSummary, ev.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ve.Props.SetDateTime(ical.PropDateTimeStart, ev.Start.UTC())
	end := ev.End
	if end.IsZero() {
		end = ev.Start
	}
	ve.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	if ev.GroupID != "" {
		ve.Props.SetText(ical.PropRelatedTo, ev.GroupID)
	}
	return ve
}

// UID is the stable identifier of an exported event.
func UID(ev calendar.Event) string {
	return dates.Stringify(ev.Start) + "-" + ev.Title
}

// Entry is a VEVENT read from an iCalendar stream.
type Entry struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	RRule       string
}

// Decode reads every VEVENT from r. Events without DTSTART are skipped.
func Decode(r io.Reader) ([]Entry, error) {
	dec := ical.NewDecoder(r)
	var entries []Entry
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode calendar: %w", err)
		}
		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			if e, ok := parseEntry(comp); ok {
				entries = append(entries, e)
			}
		}
	}
}

func parseEntry(comp *ical.Component) (Entry, bool) {
	var e Entry
	text := func(name string) string {
		if p := comp.Props.Get(name); p != nil {
			if v, err := p.Text(); err == nil {
				return v
			}
			return p.Value
		}
		return ""
	}
	e.UID = text(ical.PropUID)
	e.Summary = text(ical.PropSummary)
	e.Description = text(ical.PropDescription)
	e.Location = text(ical.PropLocation)
	if p := comp.Props.Get(ical.PropRecurrenceRule); p != nil {
		e.RRule = p.Value
	}

	p := comp.Props.Get(ical.PropDateTimeStart)
	if p == nil {
		return e, false
	}
	start, err := p.DateTime(time.UTC)
	if err != nil {
		return e, false
	}
	e.Start = start
	e.End = start
	if p := comp.Props.Get(ical.PropDateTimeEnd); p != nil {
		if end, err := p.DateTime(time.UTC); err == nil {
			e.End = end
		}
	}
	return e, true
}

// Title returns the record title for the entry.
func (e Entry) Title() string {
	if e.Summary != "" {
		return e.Summary
	}
	return e.UID
}

// Document converts the entry into a calendar record using the field names of cfg.
func (e Entry) Document(cfg calendar.Context) core.Document {
	cfg = cfg.Normalized()
	meta := core.Metadata{
		cfg.StartDateField: dates.Stringify(e.Start),
		cfg.EndDateField:   dates.Stringify(e.End),
	}
	if e.RRule != "" {
		meta[calendar.FieldRRule] = e.RRule
	}
	if e.Location != "" {
		meta["location"] = e.Location
	}
	if e.UID != "" {
		meta["uid"] = e.UID
	}
	if len(cfg.DefaultTags) > 0 {
		meta[core.FieldTags] = append([]string(nil), cfg.DefaultTags...)
	}
	return core.Document{ID: e.Title(), Content: e.Description, Metadata: meta}
}
