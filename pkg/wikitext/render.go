package wikitext

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/aretw0/loamcal/pkg/core"
)

// MaxDepth bounds nested transclusions.
const MaxDepth = 10

// Resolver looks records up by title.
type Resolver interface {
	GetRecord(title string) (core.Document, bool)
}

var markdown = goldmark.New()

// RenderText resolves the transclusions of tree, with current as the record
// that {{!!field}} and {{||Template}} refer to, and returns plain text.
func RenderText(tree Tree, r Resolver, current string) string {
	return Flatten(expand(tree, r, current, 0))
}

// Expand resolves transclusions but keeps the markup of the result.
func Expand(tree Tree, r Resolver, current string) string {
	return expand(tree, r, current, 0)
}

func expand(tree Tree, r Resolver, current string, depth int) string {
	var sb strings.Builder
	for _, n := range tree {
		if n.Kind == KindText {
			sb.WriteString(n.Text)
			continue
		}
		if depth >= MaxDepth {
			continue
		}
		sb.WriteString(transclude(n, r, current, depth))
	}
	return sb.String()
}

func transclude(n Node, r Resolver, current string, depth int) string {
	target := n.Target
	if target == "" {
		target = current
	}
	if n.Template != "" {
		tmpl, ok := r.GetRecord(n.Template)
		if !ok {
			return ""
		}
		return expand(Parse(tmpl.Content), r, target, depth+1)
	}
	doc, ok := r.GetRecord(target)
	if !ok {
		return ""
	}
	if n.Field != "" {
		return doc.String(n.Field)
	}
	return expand(Parse(doc.Content), r, target, depth+1)
}

// Flatten parses markdown and returns its text content, one line per block.
func Flatten(src string) string {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				sb.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					sb.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				sb.Write(node.Value)
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					sb.Write(seg.Value(source))
				}
			}
		default:
			if !entering && n.Type() == ast.TypeBlock && n.NextSibling() != nil {
				sb.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
