package calendar

import (
	"context"

	"github.com/aretw0/loamcal/pkg/core"
	"github.com/aretw0/loamcal/pkg/placement"
	"github.com/aretw0/loamcal/pkg/tasks"
)

// popup is the open preview. Handlers.popup is nil when the preview is closed.
type popup struct {
	title  string
	widget Widget
	layout *tasks.Task
}

// EventClick toggles the preview popup for the clicked event. Clicking the
// open event closes it; clicking another event replaces it.
func (h *Handlers) EventClick(ctx context.Context, info ClickInfo) {
	title := info.Event.Title

	// Held across teardown and creation so two clicks cannot both open a popup.
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats.Clicks++

	if prev := h.popup; prev != nil {
		h.removeLocked(prev)
		if prev.title == title {
			return
		}
	}

	if doc, ok := h.store.GetRecord(title); ok && doc.Has(core.FieldSkinny) {
		h.sched.NextTick("lazyLoad "+title, func(ctx context.Context) {
			h.store.Dispatch(ctx, core.LazyLoadEvent, title)
		})
	}

	w, err := h.host.RenderPreview(ctx, title)
	if err != nil {
		h.logger.Error("failed to render event preview", "title", title, "error", err)
		return
	}
	p := &popup{title: title, widget: w}
	h.popup = p
	w.OnClose(func() { h.closePopup(p) })

	anchor := info.Anchor
	p.layout = h.sched.NextTick("place "+title, func(ctx context.Context) {
		res := h.place(anchor, w.Size(), h.host.Viewport(), h.middleware()...)
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.popup != p {
			return
		}
		w.SetPosition(res.Point)
	})
}

func (h *Handlers) middleware() []placement.Middleware {
	auto := placement.AutoPlacement(placement.AutoOptions{})
	if h.cfg.Mobile {
		auto = placement.AutoPlacement(placement.AutoOptions{
			CrossAxis:         true,
			AllowedPlacements: []placement.Side{placement.Top, placement.Bottom, placement.Right},
		})
	}
	return []placement.Middleware{auto, placement.Shift(0)}
}

func (h *Handlers) closePopup(p *popup) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.popup == p {
		h.removeLocked(p)
	}
}

func (h *Handlers) removeLocked(p *popup) {
	if p.layout != nil {
		p.layout.Cancel()
	}
	p.widget.Remove()
	h.popup = nil
}

// ClosePreview closes the open preview. It reports whether one was open.
func (h *Handlers) ClosePreview() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.popup == nil {
		return false
	}
	h.removeLocked(h.popup)
	return true
}

// PreviewTitle returns the title shown in the open preview.
func (h *Handlers) PreviewTitle() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.popup == nil {
		return "", false
	}
	return h.popup.title, true
}
