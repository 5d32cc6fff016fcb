// Package core holds the record model and the record store used by the calendar.
package core

import (
	"strconv"
	"strings"
	"time"
)

// Reserved field names.
const (
	FieldTitle    = "title"
	FieldText     = "text"
	FieldTags     = "tags"
	FieldType     = "type"
	FieldCaption  = "caption"
	FieldModified = "modified"
	FieldSkinny   = "_is_skinny"
)

// Metadata represents the flexible key-value pairs associated with a document.
type Metadata map[string]any

// Document is the central entity of the domain.
// ID is the unique title of the record and Content its text body.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// Field resolves a field by name. "title" and "text" map to ID and Content.
func (d Document) Field(name string) (any, bool) {
	switch name {
	case FieldTitle:
		return d.ID, d.ID != ""
	case FieldText:
		return d.Content, d.Content != ""
	}
	if d.Metadata == nil {
		return nil, false
	}
	v, ok := d.Metadata[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns a field as a string, or "" when absent or not textual.
func (d Document) String(name string) string {
	v, ok := d.Field(name)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	}
	return ""
}

// Has reports whether a field is set.
func (d Document) Has(name string) bool {
	_, ok := d.Field(name)
	return ok
}

// IsSkinny reports whether only the metadata of the record has been loaded.
func (d Document) IsSkinny() bool {
	v, ok := d.Field(FieldSkinny)
	if !ok {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != "" && val != "no" && val != "false"
	}
	return true
}

// Tags returns the tag list of the record.
// Lists decoded from YAML ([]any), native []string and space separated
// strings with [[multi word]] items are accepted.
func (d Document) Tags() []string {
	v, ok := d.Field(FieldTags)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		tags := make([]string, 0, len(val))
		for _, t := range val {
			if s, ok := t.(string); ok && s != "" {
				tags = append(tags, s)
			}
		}
		return tags
	case string:
		return ParseStringList(val)
	}
	return nil
}

// Clone returns a copy with its own metadata map.
func (d Document) Clone() Document {
	meta := make(Metadata, len(d.Metadata))
	for k, v := range d.Metadata {
		meta[k] = v
	}
	return Document{ID: d.ID, Content: d.Content, Metadata: meta}
}

// ParseStringList splits "a b [[c d]]" into ["a", "b", "c d"].
func ParseStringList(s string) []string {
	var out []string
	for {
		s = strings.TrimLeft(s, " \t\n")
		if s == "" {
			return out
		}
		if strings.HasPrefix(s, "[[") {
			end := strings.Index(s, "]]")
			if end < 0 {
				out = append(out, s[2:])
				return out
			}
			if item := s[2:end]; item != "" {
				out = append(out, item)
			}
			s = s[end+2:]
			continue
		}
		end := strings.IndexAny(s, " \t\n")
		if end < 0 {
			out = append(out, s)
			return out
		}
		out = append(out, s[:end])
		s = s[end:]
	}
}
