package wikitext_test

import (
	"testing"

	"github.com/aretw0/loamcal/pkg/core"
	"github.com/aretw0/loamcal/pkg/wikitext"
	"github.com/stretchr/testify/assert"
)

type records map[string]core.Document

func (r records) GetRecord(title string) (core.Document, bool) {
	doc, ok := r[title]
	return doc, ok
}

func TestParse(t *testing.T) {
	tree := wikitext.Parse("Meet {{Room!!name}} at {{Clock||Badge}} {{open")
	assert.Equal(t, wikitext.Tree{
		{Kind: wikitext.KindText, Text: "Meet "},
		{Kind: wikitext.KindTransclusion, Target: "Room", Field: "name"},
		{Kind: wikitext.KindText, Text: " at "},
		{Kind: wikitext.KindTransclusion, Target: "Clock", Template: "Badge"},
		{Kind: wikitext.KindText, Text: " {{open"},
	}, tree)

	assert.Equal(t, wikitext.Tree{{Kind: wikitext.KindTransclusion, Field: "caption"}}, wikitext.Parse("{{!!caption}}"))
	assert.Nil(t, wikitext.Parse(""))
	assert.True(t, wikitext.HasTransclusion("a {{b}}"))
	assert.False(t, wikitext.HasTransclusion("plain"))
}

func TestRenderText(t *testing.T) {
	store := records{
		"Room":    {ID: "Room", Content: "The **big** room", Metadata: core.Metadata{"name": "Room 1"}},
		"Project": {ID: "Project", Metadata: core.Metadata{"caption": "Apollo"}},
		"Badge":   {ID: "Badge", Content: "[{{!!caption}}]"},
		"Loop":    {ID: "Loop", Content: "x{{Loop}}"},
	}

	tests := []struct {
		name    string
		caption string
		current string
		want    string
	}{
		{name: "field", caption: "Meet in {{Room!!name}}", want: "Meet in Room 1"},
		{name: "text is flattened", caption: "{{Room}}", want: "The big room"},
		{name: "template binds current", caption: "{{Project||Badge}}", want: "[Apollo]"},
		{name: "current record", caption: "{{!!caption}} sync", current: "Project", want: "Apollo sync"},
		{name: "missing target", caption: "a {{Nope}}b", want: "a b"},
		{name: "recursion is bounded", caption: "{{Loop}}", want: "xxxxxxxxxx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wikitext.RenderText(wikitext.Parse(tt.caption), store, tt.current)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, "Title\nSome emphasis on this line", wikitext.Flatten("# Title\n\nSome *emphasis* on\nthis line"))
	assert.Equal(t, "", wikitext.Flatten(""))
}
