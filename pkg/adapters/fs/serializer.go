package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/loamcal/pkg/core"
	"gopkg.in/yaml.v3"
)

// Serializer defines how to read and write a record file.
type Serializer interface {
	// Parse reads from r and returns a Document without ID.
	Parse(r io.Reader) (*core.Document, error)
	// Serialize converts the Document to bytes.
	Serialize(doc core.Document) ([]byte, error)
}

// MarkdownSerializer reads and writes Markdown with YAML frontmatter.
// Frontmatter holds the record fields, the body is the text field.
type MarkdownSerializer struct{}

// NewMarkdownSerializer creates a new Markdown serializer.
func NewMarkdownSerializer() *MarkdownSerializer {
	return &MarkdownSerializer{}
}

func (s *MarkdownSerializer) Parse(r io.Reader) (*core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	doc := &core.Document{Metadata: make(core.Metadata)}

	if !bytes.HasPrefix(data, []byte("---\n")) {
		doc.Content = string(data)
		return doc, nil
	}

	rest := data[4:]
	var yamlData, contentData []byte
	if bytes.HasPrefix(rest, []byte("---\n")) || bytes.Equal(rest, []byte("---")) {
		// Empty frontmatter.
		contentData = bytes.TrimPrefix(rest[3:], []byte("\n"))
	} else {
		end := bytes.Index(rest, []byte("\n---"))
		if end < 0 {
			return nil, errors.New("frontmatter started but no closing delimiter found")
		}
		yamlData = rest[:end+1]
		contentData = rest[end+4:]
		contentData = bytes.TrimPrefix(contentData, []byte("\n"))
	}

	if len(bytes.TrimSpace(yamlData)) > 0 {
		if err := yaml.Unmarshal(yamlData, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
	}
	if doc.Metadata == nil {
		doc.Metadata = make(core.Metadata)
	}

	doc.Content = string(contentData)
	return doc, nil
}

func (s *MarkdownSerializer) Serialize(doc core.Document) ([]byte, error) {
	var buf bytes.Buffer
	meta := make(core.Metadata, len(doc.Metadata))
	for k, v := range doc.Metadata {
		if k == core.FieldSkinny || k == core.FieldTitle || k == core.FieldText {
			continue
		}
		meta[k] = v
	}
	if len(meta) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(meta); err != nil {
			return nil, err
		}
		if err := encoder.Close(); err != nil {
			return nil, err
		}
		buf.WriteString("---\n")
	}
	buf.WriteString(doc.Content)
	return buf.Bytes(), nil
}

// escapedChars cannot appear in a file name on at least one supported platform.
const escapedChars = `<>:"\|?*%`

// titleToPath maps a record title to a slash separated relative path without extension.
// Each "/" separated segment is percent-escaped.
func titleToPath(title string) (string, error) {
	if title == "" {
		return "", core.ErrEmptyTitle
	}
	segments := strings.Split(title, "/")
	for i, seg := range segments {
		if seg == "" {
			return "", fmt.Errorf("invalid title %q: empty path segment", title)
		}
		segments[i] = escapeSegment(seg)
	}
	return strings.Join(segments, "/"), nil
}

func escapeSegment(seg string) string {
	var sb strings.Builder
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if strings.IndexByte(escapedChars, c) >= 0 || c < 0x20 || (i == 0 && c == '.') {
			fmt.Fprintf(&sb, "%%%02X", c)
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// pathToTitle reverses titleToPath.
func pathToTitle(rel string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(rel); i++ {
		c := rel[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		if i+2 >= len(rel) {
			return "", fmt.Errorf("invalid escape in %q", rel)
		}
		b, err := strconv.ParseUint(rel[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("invalid escape in %q: %w", rel, err)
		}
		sb.WriteByte(byte(b))
		i += 2
	}
	return sb.String(), nil
}
