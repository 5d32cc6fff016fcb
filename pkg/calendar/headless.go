package calendar

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aretw0/loamcal/pkg/core"
	"github.com/aretw0/loamcal/pkg/placement"
	"github.com/aretw0/loamcal/pkg/wikitext"
)

const (
	classPreview      = "loamcal-event-preview"
	classPreviewClose = "loamcal-event-preview-close-button"
	maxNotifications  = 100
)

// PersistentStore is a Store that the headless host can save through.
// *core.Service implements it.
type PersistentStore interface {
	wikitext.Resolver
	SaveRecord(ctx context.Context, title string) error
	AutoSave(ctx context.Context) error
}

// HeadlessHost runs the handlers without a browser. Previews are HTML
// fragments and save notifications persist through the store.
type HeadlessHost struct {
	store        PersistentStore
	template     string
	viewport     placement.Rect
	previewSize  placement.Size
	logger       *slog.Logger
	markdown     goldmark.Markdown
	mu           sync.Mutex
	current      *HeadlessWidget
	notification []Notification
}

// HeadlessOption configures a HeadlessHost.
type HeadlessOption func(*HeadlessHost)

// WithViewport sets the viewport used for placement.
func WithViewport(r placement.Rect) HeadlessOption {
	return func(h *HeadlessHost) {
		h.viewport = r
	}
}

// WithPreviewSize sets the measured size of rendered previews.
func WithPreviewSize(s placement.Size) HeadlessOption {
	return func(h *HeadlessHost) {
		h.previewSize = s
	}
}

// WithHostLogger sets the logger.
func WithHostLogger(logger *slog.Logger) HeadlessOption {
	return func(h *HeadlessHost) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHeadlessHost creates a host rendering previews with cfg.PreviewTemplate.
func NewHeadlessHost(store PersistentStore, cfg Context, opts ...HeadlessOption) *HeadlessHost {
	cfg = cfg.Normalized()
	h := &HeadlessHost{
		store:       store,
		template:    cfg.PreviewTemplate,
		viewport:    placement.Rect{Width: 1280, Height: 800},
		previewSize: placement.Size{Width: 320, Height: 240},
		logger:      slog.Default(),
		markdown:    goldmark.New(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Notify persists on save notifications and keeps a bounded history.
func (h *HeadlessHost) Notify(ctx context.Context, n Notification) {
	h.mu.Lock()
	h.notification = append(h.notification, n)
	if len(h.notification) > maxNotifications {
		h.notification = h.notification[len(h.notification)-maxNotifications:]
	}
	h.mu.Unlock()

	var err error
	switch n.Type {
	case SaveNotification:
		err = h.store.SaveRecord(ctx, n.Title)
	case AutoSaveNotification:
		err = h.store.AutoSave(ctx)
	}
	if err != nil {
		h.logger.Error("save failed", "notification", n.Type, "title", n.Title, "error", err)
	}
}

// Notifications returns the received notifications, oldest first.
func (h *HeadlessHost) Notifications() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Notification(nil), h.notification...)
}

// Viewport implements Host.
func (h *HeadlessHost) Viewport() placement.Rect {
	return h.viewport
}

// RenderPreview renders the preview template for title, or a built-in card
// when the template record does not exist.
func (h *HeadlessHost) RenderPreview(ctx context.Context, title string) (Widget, error) {
	root := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div", Attr: []html.Attribute{
		{Key: "class", Val: classPreview},
		{Key: "data-tiddler", Val: title},
	}}

	if _, ok := h.store.GetRecord(h.template); ok {
		tree := wikitext.Parse("{{" + title + "||" + h.template + "}}")
		root.AppendChild(div("", text(wikitext.RenderText(tree, h.store, title))))
	} else if err := h.card(root, title); err != nil {
		return nil, err
	}

	closeBtn := element(atom.Button, classPreviewClose, text("×"))
	root.AppendChild(closeBtn)

	w := &HeadlessWidget{
		id:    uuid.NewString(),
		title: title,
		html:  render(root),
		size:  h.previewSize,
		host:  h,
	}
	h.mu.Lock()
	h.current = w
	h.mu.Unlock()
	return w, nil
}

// card renders caption, tags and the markdown body of a record.
func (h *HeadlessHost) card(root *html.Node, title string) error {
	doc, ok := h.store.GetRecord(title)
	heading := title
	if caption, ok := captionOf(doc); ok && caption != "" {
		heading = caption
		if wikitext.HasTransclusion(caption) {
			heading = wikitext.RenderText(wikitext.Parse(caption), h.store, title)
		}
	}
	root.AppendChild(element(atom.H3, "", text(heading)))
	if !ok {
		return nil
	}

	if tags := doc.Tags(); len(tags) > 0 {
		tagsEl := div(classTags)
		for _, tag := range tags {
			tagsEl.AppendChild(element(atom.Span, "", text(tag)))
		}
		root.AppendChild(tagsEl)
	}

	var body bytes.Buffer
	if err := h.markdown.Convert([]byte(truncate(doc.Content, TextPreviewLimit)), &body); err != nil {
		return err
	}
	nodes, err := html.ParseFragment(&body, &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"})
	if err != nil {
		return err
	}
	bodyEl := div("loamcal-event-preview-body")
	for _, n := range nodes {
		bodyEl.AppendChild(n)
	}
	root.AppendChild(bodyEl)
	return nil
}

// Current returns the preview that is on screen.
func (h *HeadlessHost) Current() (*HeadlessWidget, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current, h.current != nil
}

func (h *HeadlessHost) detach(w *HeadlessWidget) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == w {
		h.current = nil
	}
}

// HeadlessWidget is a rendered preview.
type HeadlessWidget struct {
	id    string
	title string
	html  string
	size  placement.Size
	host  *HeadlessHost

	mu      sync.Mutex
	pos     *placement.Point
	onClose []func()
	removed bool
}

// PreviewView is a snapshot of a headless preview.
type PreviewView struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	HTML     string           `json:"html"`
	Position *placement.Point `json:"position,omitempty"`
}

func (w *HeadlessWidget) ID() string           { return w.id }
func (w *HeadlessWidget) Size() placement.Size { return w.size }

func (w *HeadlessWidget) SetPosition(p placement.Point) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pos = &p
}

func (w *HeadlessWidget) OnClose(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClose = append(w.onClose, fn)
}

func (w *HeadlessWidget) Remove() {
	w.mu.Lock()
	w.removed = true
	w.mu.Unlock()
	w.host.detach(w)
}

// Close presses the close button of the preview.
func (w *HeadlessWidget) Close() {
	w.mu.Lock()
	fns := append([]func(){}, w.onClose...)
	w.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Removed reports whether the preview was detached.
func (w *HeadlessWidget) Removed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.removed
}

// View returns a snapshot of the preview.
func (w *HeadlessWidget) View() PreviewView {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := PreviewView{ID: w.id, Title: w.title, HTML: w.html}
	if w.pos != nil {
		p := *w.pos
		v.Position = &p
	}
	return v
}

// HeadlessModal records the dialogs it was asked to show.
type HeadlessModal struct {
	mu        sync.Mutex
	displayed []string
	focused   []string
}

// Display implements Modal.
func (m *HeadlessModal) Display(ctx context.Context, template string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.displayed = append(m.displayed, template)
	return nil
}

// Focus implements Modal.
func (m *HeadlessModal) Focus(selector string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focused = append(m.focused, selector)
}

// Displayed returns the templates displayed so far.
func (m *HeadlessModal) Displayed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.displayed...)
}

// Focused returns the focus requests so far.
func (m *HeadlessModal) Focused() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.focused...)
}

var (
	_ Host   = (*HeadlessHost)(nil)
	_ Widget = (*HeadlessWidget)(nil)
	_ Modal  = (*HeadlessModal)(nil)
	_ Store  = (*core.Service)(nil)
)
