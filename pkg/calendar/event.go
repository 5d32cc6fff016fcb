package calendar

import (
	"time"

	"github.com/aretw0/loamcal/pkg/placement"
)

// View is a calendar view type.
type View string

const (
	ViewMonth    View = "dayGridMonth"
	ViewWeek     View = "timeGridWeek"
	ViewThreeDay View = "timeGridThreeDay"
	ViewDay      View = "timeGridDay"
)

// Views lists the supported views.
var Views = []View{ViewMonth, ViewWeek, ViewThreeDay, ViewDay}

// Valid reports whether v is a supported view.
func (v View) Valid() bool {
	switch v {
	case ViewMonth, ViewWeek, ViewThreeDay, ViewDay:
		return true
	}
	return false
}

// Event is the view model of a calendar event. A zero Start or End is absent.
type Event struct {
	Title   string    `json:"title"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	AllDay  bool      `json:"allDay,omitempty"`
	GroupID string    `json:"groupId,omitempty"`
}

// HasRange reports whether both bounds are set.
func (e Event) HasRange() bool {
	return !e.Start.IsZero() && !e.End.IsZero()
}

// ContentArg is what the widget passes when it renders an event cell.
type ContentArg struct {
	Event    Event  `json:"event"`
	View     View   `json:"view"`
	TimeText string `json:"timeText"`
}

// Content is the rendered event cell.
type Content struct {
	HTML string `json:"html"`
}

// Gesture is the pointer event that triggered a mutation.
type Gesture struct {
	Type    string  `json:"type,omitempty"`
	ClientX float64 `json:"clientX,omitempty"`
	ClientY float64 `json:"clientY,omitempty"`
}

// ClickInfo describes a click on an event.
type ClickInfo struct {
	Event Event `json:"event"`
	// Anchor is the bounding box of the clicked event element.
	Anchor placement.Rect `json:"anchor"`
}

// SelectInfo describes a drag selection on the grid.
type SelectInfo struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	StartStr string    `json:"startStr"`
	EndStr   string    `json:"endStr"`
	View     View      `json:"view"`
}

// ChangeInfo describes a moved or resized event and the other events of its group.
type ChangeInfo struct {
	Event Event `json:"event"`
	// OldEvent is Event before the gesture. Recurring records are shifted by
	// the difference between the two instead of taking the occurrence bounds.
	OldEvent      *Event   `json:"oldEvent,omitempty"`
	RelatedEvents []Event  `json:"relatedEvents,omitempty"`
	Gesture       *Gesture `json:"gesture,omitempty"`
}
