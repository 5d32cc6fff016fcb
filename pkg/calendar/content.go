package calendar

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aretw0/loamcal/pkg/core"
	"github.com/aretw0/loamcal/pkg/dates"
	"github.com/aretw0/loamcal/pkg/duration"
	"github.com/aretw0/loamcal/pkg/wikitext"
)

const longLayoutStyle = "height: 100%; display: flex; flex-direction: column; justify-content: space-between;"

const (
	classTitleWithText = "fc-event-title-with-text"
	classTags          = "fc-event-main-tags"
)

// Formatter renders the content of event cells.
type Formatter struct {
	cfg     Context
	records wikitext.Resolver
}

// NewFormatter creates a formatter reading records from r.
func NewFormatter(cfg Context, r wikitext.Resolver) *Formatter {
	return &Formatter{cfg: cfg.Normalized(), records: r}
}

// EventContent renders the HTML of one event cell. Missing optional fields
// render as empty; it never fails.
func (f *Formatter) EventContent(arg ContentArg) Content {
	titleEl := div("", text(arg.Event.Title))
	timeEl := div("", text(arg.TimeText))

	doc, ok := f.records.GetRecord(arg.Event.Title)
	if !ok {
		return Content{HTML: f.pendingContent(arg, titleEl, timeEl)}
	}

	// Skinny records render without text until a click loads them.
	body := doc.Content
	captionEl := titleEl
	if caption, ok := captionOf(doc); ok {
		if wikitext.HasTransclusion(caption) {
			caption = wikitext.RenderText(wikitext.Parse(caption), f.records, doc.ID)
		}
		class := ""
		if body != "" {
			class = classTitleWithText
		}
		captionEl = div(class, text(caption))
	}

	var span int64
	durationText := ""
	if doc.Has(f.cfg.StartDateField) && doc.Has(f.cfg.EndDateField) {
		start, end := doc.String(f.cfg.StartDateField), doc.String(f.cfg.EndDateField)
		durationText = duration.Format(start, end)
		if d, ok := duration.Between(start, end); ok {
			span = int64(d)
		}
	}
	durationEl := div("", text(durationText))

	if arg.View == ViewMonth {
		return Content{HTML: render(captionEl)}
	}

	tagsEl := div(classTags)
	for _, tag := range doc.Tags() {
		tagsEl.AppendChild(element(atom.Span, "", text(tag)))
	}

	var textEl *html.Node
	recordType := doc.String(core.FieldType)
	if f.cfg.previewable(recordType) {
		textEl = div("", text(truncate(body, TextPreviewLimit)))
	} else {
		textEl = div("", text(recordType+" too large"))
	}

	top := []*html.Node{captionEl, tagsEl, timeEl, durationEl, textEl}
	if span >= int64(f.cfg.DurationThreshold) {
		return Content{HTML: longLayout(top, []*html.Node{clone(timeEl), clone(durationEl)})}
	}
	return Content{HTML: render(top...)}
}

// pendingContent renders an event without a backing record, such as a
// selection that has not been saved yet.
func (f *Formatter) pendingContent(arg ContentArg, titleEl, timeEl *html.Node) string {
	durationEl := div("")
	if arg.Event.HasRange() {
		start, end := dates.Stringify(arg.Event.Start), dates.Stringify(arg.Event.End)
		durationEl = div("", text(duration.Format(start, end)))
		if arg.Event.End.Sub(arg.Event.Start) >= f.cfg.DurationThreshold {
			return longLayout(
				[]*html.Node{titleEl, timeEl, durationEl},
				[]*html.Node{clone(timeEl), clone(durationEl)},
			)
		}
	}
	return render(div("", titleEl, timeEl, durationEl))
}

func captionOf(doc core.Document) (string, bool) {
	v, ok := doc.Field(core.FieldCaption)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func longLayout(top, bottom []*html.Node) string {
	outer := element(atom.Div, "", div("", top...), div("", bottom...))
	outer.Attr = append(outer.Attr, html.Attribute{Key: "style", Val: longLayoutStyle})
	return render(outer)
}

func element(a atom.Atom, class string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	for _, c := range children {
		if c.Parent != nil {
			c = clone(c)
		}
		n.AppendChild(c)
	}
	return n
}

func div(class string, children ...*html.Node) *html.Node {
	return element(atom.Div, class, children...)
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// clone deep copies n without its parent links.
func clone(n *html.Node) *html.Node {
	c := &html.Node{Type: n.Type, DataAtom: n.DataAtom, Data: n.Data, Attr: append([]html.Attribute(nil), n.Attr...)}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(clone(child))
	}
	return c
}

func render(nodes ...*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		// Rendering a well formed tree into a strings.Builder cannot fail.
		_ = html.Render(&sb, n)
	}
	return sb.String()
}
