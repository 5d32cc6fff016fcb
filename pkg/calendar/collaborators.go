package calendar

import (
	"context"

	"github.com/aretw0/loamcal/pkg/core"
	"github.com/aretw0/loamcal/pkg/placement"
)

// Store is the record store the calendar reads and writes. *core.Service implements it.
type Store interface {
	GetRecord(title string) (core.Document, bool)
	GetText(title string) (string, bool)
	AddRecord(doc core.Document) error
	Dispatch(ctx context.Context, name string, payload any)
}

// RecordLister enumerates records for the event source.
type RecordLister interface {
	Records() []core.Document
}

// Notification is a message for the host UI.
type Notification struct {
	Type    string            `json:"type"`
	Title   string            `json:"title,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
	Gesture *Gesture          `json:"gesture,omitempty"`
}

// Widget is a rendered preview popup.
type Widget interface {
	ID() string
	// Size is the measured size of the rendered popup.
	Size() placement.Size
	SetPosition(p placement.Point)
	// OnClose registers fn for the popup's close controls.
	OnClose(fn func())
	// Remove detaches the popup. It must not invoke OnClose callbacks.
	Remove()
}

// Host is the UI the handlers drive.
type Host interface {
	Notify(ctx context.Context, n Notification)
	// RenderPreview renders the preview template for title.
	RenderPreview(ctx context.Context, title string) (Widget, error)
	Viewport() placement.Rect
}

// Modal displays dialogs.
type Modal interface {
	Display(ctx context.Context, template string) error
	Focus(selector string)
}

// PlaceFunc computes popup positions. placement.ComputePosition is the default.
type PlaceFunc func(anchor placement.Rect, floating placement.Size, viewport placement.Rect, mw ...placement.Middleware) placement.Result
