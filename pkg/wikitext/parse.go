// Package wikitext implements the subset of the record markup needed to render
// captions: text runs and {{...}} transclusions, flattened to plain text.
package wikitext

import "strings"

// Kind identifies a node of a parsed tree.
type Kind int

const (
	KindText Kind = iota
	KindTransclusion
)

// Node is a text run or a transclusion.
//
//	{{Title}}            Target
//	{{Title!!field}}     Target, Field
//	{{Title||Template}}  Target, Template
//	{{!!field}}          Field of the current record
//	{{||Template}}       Template applied to the current record
type Node struct {
	Kind     Kind
	Text     string
	Target   string
	Field    string
	Template string
}

// Tree is a parsed piece of markup.
type Tree []Node

// HasTransclusion reports whether text contains transclusion syntax.
func HasTransclusion(text string) bool {
	return strings.Contains(text, "{{")
}

// Parse splits text into text runs and transclusions. An unterminated "{{" is text.
func Parse(text string) Tree {
	var tree Tree
	for text != "" {
		start := strings.Index(text, "{{")
		if start < 0 {
			tree = tree.appendText(text)
			break
		}
		end := strings.Index(text[start+2:], "}}")
		if end < 0 {
			tree = tree.appendText(text)
			break
		}
		if start > 0 {
			tree = tree.appendText(text[:start])
		}
		tree = append(tree, parseTransclusion(text[start+2:start+2+end]))
		text = text[start+2+end+2:]
	}
	return tree
}

func (t Tree) appendText(s string) Tree {
	if n := len(t); n > 0 && t[n-1].Kind == KindText {
		t[n-1].Text += s
		return t
	}
	return append(t, Node{Kind: KindText, Text: s})
}

func parseTransclusion(body string) Node {
	n := Node{Kind: KindTransclusion}
	ref, tmpl, hasTmpl := strings.Cut(body, "||")
	if hasTmpl {
		n.Template = strings.TrimSpace(tmpl)
	}
	target, field, _ := strings.Cut(ref, "!!")
	n.Target = strings.TrimSpace(target)
	n.Field = strings.TrimSpace(field)
	return n
}
