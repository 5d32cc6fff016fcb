package fs

import (
	"strings"
	"testing"

	"github.com/aretw0/loamcal/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownSerializer_Parse(t *testing.T) {
	s := NewMarkdownSerializer()

	tests := []struct {
		name    string
		input   string
		content string
		meta    core.Metadata
		wantErr bool
	}{
		{
			name:    "body only",
			input:   "just text",
			content: "just text",
			meta:    core.Metadata{},
		},
		{
			name:    "frontmatter",
			input:   "---\ncaption: Standup\nstartDate: \"20240101090000000\"\n---\nNotes\n",
			content: "Notes\n",
			meta:    core.Metadata{"caption": "Standup", "startDate": "20240101090000000"},
		},
		{
			name:    "crlf",
			input:   "---\r\ncaption: X\r\n---\r\nBody",
			content: "Body",
			meta:    core.Metadata{"caption": "X"},
		},
		{
			name:    "empty frontmatter",
			input:   "---\n---\nBody",
			content: "Body",
			meta:    core.Metadata{},
		},
		{
			name:    "unterminated",
			input:   "---\ncaption: X\nBody",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := s.Parse(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.content, doc.Content)
			assert.Equal(t, tt.meta, doc.Metadata)
		})
	}
}

func TestMarkdownSerializer_SerializeDropsReservedFields(t *testing.T) {
	s := NewMarkdownSerializer()
	data, err := s.Serialize(core.Document{
		ID:      "Standup",
		Content: "Body",
		Metadata: core.Metadata{
			"tags":           []string{"work"},
			"startDate":      "20240101090000000",
			core.FieldSkinny: true,
			core.FieldTitle:  "ignored",
		},
	})
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, "---\n"))
	assert.Contains(t, out, `startDate: "20240101090000000"`)
	assert.NotContains(t, out, core.FieldSkinny)
	assert.NotContains(t, out, "ignored")
	assert.True(t, strings.HasSuffix(out, "---\nBody"))

	doc, err := s.Parse(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "20240101090000000", doc.Metadata["startDate"])
	assert.Equal(t, "Body", doc.Content)
}

func TestTitlePathMapping(t *testing.T) {
	tests := []struct {
		title string
		path  string
	}{
		{title: "Standup", path: "Standup"},
		{title: "2024-01-01", path: "2024-01-01"},
		{title: "$:/config/NewJournal/Title", path: "$%3A/config/NewJournal/Title"},
		{title: "What? 50%", path: "What%3F 50%25"},
		{title: ".hidden", path: "%2Ehidden"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			p, err := titleToPath(tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.path, p)

			back, err := pathToTitle(p)
			require.NoError(t, err)
			assert.Equal(t, tt.title, back)
		})
	}

	_, err := titleToPath("")
	assert.ErrorIs(t, err, core.ErrEmptyTitle)
	_, err = titleToPath("a//b")
	assert.Error(t, err)
	_, err = pathToTitle("bad%2")
	assert.Error(t, err)
}
