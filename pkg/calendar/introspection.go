package calendar

import "github.com/aretw0/introspection"

// HandlersState exposes the handler set for observability.
type HandlersState struct {
	PreviewOpen  bool   `json:"preview_open"`
	PreviewTitle string `json:"preview_title,omitempty"`
	ReadOnly     bool   `json:"read_only"`
	Puts         int    `json:"puts"`
	Clicks       int    `json:"clicks"`
	Selects      int    `json:"selects"`
}

// State implements introspection.Introspectable.
func (h *Handlers) State() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := HandlersState{
		ReadOnly: h.cfg.ReadOnly,
		Puts:     h.stats.Puts,
		Clicks:   h.stats.Clicks,
		Selects:  h.stats.Selects,
	}
	if h.popup != nil {
		s.PreviewOpen = true
		s.PreviewTitle = h.popup.title
	}
	return s
}

// ComponentType implements introspection.Component.
func (h *Handlers) ComponentType() string {
	return "calendar"
}

var _ introspection.Introspectable = (*Handlers)(nil)
var _ introspection.Component = (*Handlers)(nil)
