// Package richtext turns editor HTML into a flat sequence of styled blocks
// that every export renderer consumes.
package richtext

import (
	"strconv"
	"strings"
)

// BulletGlyph marks unordered list items.
const BulletGlyph = "•"

const emptyParagraph = "<p></p>"

// Block is one structural unit of an answer: Paragraph, ListItem or Heading.
type Block interface {
	block()
}

// Run is a span of text sharing one formatting context. A Break run carries
// no text and ends the current line.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Break     bool
}

type Paragraph struct {
	Runs []Run
}

// ListItem is one <li>. Ordinal is 1-based for ordered lists and 0 for bullets.
type ListItem struct {
	Ordered bool
	Ordinal int
	Text    string
}

type Heading struct {
	Level int
	Text  string
}

func (Paragraph) block() {}
func (ListItem) block()  {}
func (Heading) block()   {}

// Marker is the prefix rendered before the item text: "•" or "3.".
func (li ListItem) Marker() string {
	if li.Ordered {
		return strconv.Itoa(li.Ordinal) + "."
	}
	return BulletGlyph
}

// Text concatenates the paragraph's runs, turning breaks into newlines.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, run := range p.Runs {
		if run.Break {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// IsBlank reports whether an answer carries no content at all: empty,
// whitespace only, or the editor's empty paragraph marker.
func IsBlank(html string) bool {
	trimmed := strings.TrimSpace(html)
	return trimmed == "" || trimmed == emptyParagraph
}

// PlainText flattens blocks to text, one block per line.
func PlainText(blocks []Block) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b := b.(type) {
		case Paragraph:
			lines = append(lines, b.Text())
		case ListItem:
			lines = append(lines, b.Marker()+" "+b.Text)
		case Heading:
			lines = append(lines, b.Text)
		}
	}
	return strings.Join(lines, "\n")
}
