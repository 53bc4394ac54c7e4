package richtext

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type formatting struct {
	bold      bool
	italic    bool
	underline bool
}

// Convert parses one answer's HTML and returns its blocks. Blank input
// yields no blocks.
func Convert(src string) ([]Block, error) {
	if IsBlank(src) {
		return nil, nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(src), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("parse answer html: %w", err)
	}

	var blocks []Block
	for _, n := range nodes {
		blocks = appendBlock(blocks, n)
	}

	if len(blocks) == 0 {
		var sb strings.Builder
		for _, n := range nodes {
			collectText(&sb, n)
		}
		if text := normalizeText(sb.String()); text != "" {
			blocks = append(blocks, plainParagraph(text))
		}
	}
	return blocks, nil
}

func appendBlock(blocks []Block, n *html.Node) []Block {
	switch n.Type {
	case html.TextNode:
		if text := normalizeText(n.Data); text != "" {
			blocks = append(blocks, plainParagraph(text))
		}
		return blocks
	case html.ElementNode:
	default:
		return blocks
	}

	switch n.DataAtom {
	case atom.Ul, atom.Ol:
		ordered := n.DataAtom == atom.Ol
		ordinal := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.DataAtom != atom.Li {
				continue
			}
			item := ListItem{Ordered: ordered, Text: textContent(c)}
			if ordered {
				ordinal++
				item.Ordinal = ordinal
			}
			blocks = append(blocks, item)
		}
	case atom.P, atom.Div:
		runs := tidyRuns(inlineRuns(n, formatting{}))
		if hasText(runs) {
			blocks = append(blocks, Paragraph{Runs: runs})
		}
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		if text := textContent(n); text != "" {
			blocks = append(blocks, Heading{Level: int(n.Data[1] - '0'), Text: text})
		}
	default:
		if text := textContent(n); text != "" {
			blocks = append(blocks, plainParagraph(text))
		}
	}
	return blocks
}

func inlineRuns(n *html.Node, f formatting) []Run {
	var runs []Run
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if text := collapseSpace(c.Data); text != "" {
				runs = append(runs, Run{Text: text, Bold: f.bold, Italic: f.italic, Underline: f.underline})
			}
		case html.ElementNode:
			if c.DataAtom == atom.Br {
				runs = append(runs, Run{Break: true})
				continue
			}
			next := f
			switch c.DataAtom {
			case atom.Strong, atom.B:
				next.bold = true
			case atom.Em, atom.I:
				next.italic = true
			case atom.U:
				next.underline = true
			}
			// nested blocks start on their own line
			if isBlockElement(c) && len(runs) > 0 && !runs[len(runs)-1].Break {
				runs = append(runs, Run{Break: true})
			}
			runs = append(runs, inlineRuns(c, next)...)
		}
	}
	return runs
}

// tidyRuns trims whitespace at line edges and merges neighbours that share
// formatting.
func tidyRuns(runs []Run) []Run {
	out := make([]Run, 0, len(runs))
	for i, run := range runs {
		if run.Break {
			if n := len(out); n > 0 && !out[n-1].Break {
				out[n-1].Text = strings.TrimRight(out[n-1].Text, " ")
				if out[n-1].Text == "" {
					out = out[:n-1]
				}
			}
			out = append(out, run)
			continue
		}
		if len(out) == 0 || out[len(out)-1].Break || strings.HasSuffix(out[len(out)-1].Text, " ") {
			run.Text = strings.TrimLeft(run.Text, " ")
		}
		if i == len(runs)-1 {
			run.Text = strings.TrimRight(run.Text, " ")
		}
		if run.Text == "" {
			continue
		}
		if n := len(out); n > 0 && sameFormatting(out[n-1], run) {
			out[n-1].Text += run.Text
			continue
		}
		out = append(out, run)
	}
	// a trailing space can survive when the last run was dropped
	if n := len(out); n > 0 && !out[n-1].Break {
		out[n-1].Text = strings.TrimRight(out[n-1].Text, " ")
	}
	return out
}

func sameFormatting(a, b Run) bool {
	return !a.Break && !b.Break && a.Bold == b.Bold && a.Italic == b.Italic && a.Underline == b.Underline
}

func hasText(runs []Run) bool {
	for _, run := range runs {
		if !run.Break && strings.TrimSpace(run.Text) != "" {
			return true
		}
	}
	return false
}

func plainParagraph(text string) Paragraph {
	return Paragraph{Runs: []Run{{Text: text}}}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	collectText(&sb, n)
	return normalizeText(sb.String())
}

func collectText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.DataAtom == atom.Br || isBlockElement(n) {
			sb.WriteByte(' ')
		}
	case html.DocumentNode:
	default:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(sb, c)
	}
}

func isBlockElement(n *html.Node) bool {
	switch n.DataAtom {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Blockquote, atom.Pre,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func normalizeText(s string) string {
	return strings.TrimSpace(collapseSpace(s))
}

// collapseSpace folds runs of HTML whitespace into a single space. Edges are
// kept so adjacent runs still join with their separating space.
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !inSpace {
				sb.WriteByte(' ')
			}
			inSpace = true
		default:
			sb.WriteRune(r)
			inSpace = false
		}
	}
	return sb.String()
}
