package export

import (
	"strings"
	"unicode/utf8"

	"rfpwriter/api/internal/richtext"
)

type fontStyle struct {
	bold      bool
	italic    bool
	underline bool
}

// gofpdf style string
func (s fontStyle) String() string {
	var sb strings.Builder
	if s.bold {
		sb.WriteByte('B')
	}
	if s.italic {
		sb.WriteByte('I')
	}
	if s.underline {
		sb.WriteByte('U')
	}
	return sb.String()
}

type span struct {
	text  string
	style fontStyle
}

type line []span

// measureFunc returns the rendered width of text in the given style at the
// current font size.
type measureFunc func(text string, style fontStyle) float64

func (l line) width(measure measureFunc) float64 {
	var w float64
	for _, sp := range l {
		w += measure(sp.text, sp.style)
	}
	return w
}

func (l line) text() string {
	var sb strings.Builder
	for _, sp := range l {
		sb.WriteString(sp.text)
	}
	return sb.String()
}

// lineWrapper is a greedy word wrapper over styled text.
type lineWrapper struct {
	maxWidth float64
	measure  measureFunc

	lines        []line
	current      line
	currentWidth float64
	pendingSpace bool
	spaceStyle   fontStyle
}

// wrapRuns breaks styled runs into lines no wider than maxWidth. Words
// wider than a full line are split between characters; Break runs force a
// new line.
func wrapRuns(runs []richtext.Run, maxWidth float64, measure measureFunc) []line {
	w := &lineWrapper{maxWidth: maxWidth, measure: measure}
	for _, run := range runs {
		if run.Break {
			w.hardBreak()
			continue
		}
		w.addText(run.Text, fontStyle{bold: run.Bold, italic: run.Italic, underline: run.Underline})
	}
	w.flush()
	return w.lines
}

// wrapText wraps a single-style string.
func wrapText(text string, style fontStyle, maxWidth float64, measure measureFunc) []string {
	lines := wrapRuns([]richtext.Run{{Text: text, Bold: style.bold, Italic: style.italic, Underline: style.underline}}, maxWidth, measure)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.text()
	}
	return out
}

func (w *lineWrapper) addText(text string, style fontStyle) {
	for i, word := range strings.Split(text, " ") {
		if i > 0 {
			// the space keeps the style of the run it was typed in
			w.pendingSpace = true
			w.spaceStyle = style
		}
		if word == "" {
			continue
		}
		w.addWord(word, style)
	}
}

func (w *lineWrapper) addWord(word string, style fontStyle) {
	width := w.measure(word, style)

	if len(w.current) > 0 && w.pendingSpace {
		space := w.measure(" ", w.spaceStyle)
		if w.currentWidth+space+width > w.maxWidth {
			w.flush()
		} else {
			w.appendSpan(" ", w.spaceStyle, space)
		}
	}
	w.pendingSpace = false

	for {
		if w.currentWidth+width <= w.maxWidth {
			w.appendSpan(word, style, width)
			return
		}
		head, rest := w.splitToFit(word, style, w.maxWidth-w.currentWidth)
		if head == "" {
			// nothing fits after text glued to this word; start a fresh line
			w.flush()
			continue
		}
		w.appendSpan(head, style, w.measure(head, style))
		w.flush()
		if rest == "" {
			return
		}
		word = rest
		width = w.measure(word, style)
	}
}

// splitToFit returns the longest prefix of word that fits in room. On an
// empty line at least one character is taken so wrapping always progresses.
func (w *lineWrapper) splitToFit(word string, style fontStyle, room float64) (string, string) {
	end := 0
	for i := range word {
		if i == 0 {
			continue
		}
		if w.measure(word[:i], style) > room {
			break
		}
		end = i
	}
	if end == 0 && len(w.current) == 0 {
		_, size := utf8.DecodeRuneInString(word)
		end = size
	}
	return word[:end], word[end:]
}

func (w *lineWrapper) appendSpan(text string, style fontStyle, width float64) {
	if n := len(w.current); n > 0 && w.current[n-1].style == style {
		w.current[n-1].text += text
	} else {
		w.current = append(w.current, span{text: text, style: style})
	}
	w.currentWidth += width
}

func (w *lineWrapper) hardBreak() {
	if len(w.current) == 0 {
		w.lines = append(w.lines, line{})
	} else {
		w.flush()
	}
	w.pendingSpace = false
}

func (w *lineWrapper) flush() {
	if len(w.current) == 0 {
		return
	}
	w.lines = append(w.lines, w.current)
	w.current = nil
	w.currentWidth = 0
}
