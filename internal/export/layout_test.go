package export

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"rfpwriter/api/internal/richtext"
)

// runeWidth measures every character as one unit, bold or not.
func runeWidth(text string, _ fontStyle) float64 {
	return float64(utf8.RuneCountInString(text))
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    float64
		expected []string
	}{
		{"fits", "short line", 20, []string{"short line"}},
		{"greedy", "aaa bbb ccc", 7, []string{"aaa bbb", "ccc"}},
		{"exact width", "aaa bbb", 7, []string{"aaa bbb"}},
		{"collapses extra spaces at breaks", "aaa    bbb", 4, []string{"aaa", "bbb"}},
		{"long word split", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"long word after text", "ab abcdefgh", 4, []string{"ab", "abcd", "efgh"}},
		{"multibyte split", "ééééé", 2, []string{"éé", "éé", "é"}},
		{"empty", "", 10, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, fontStyle{}, tt.width, runeWidth)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("wrapText(%q, %v) = %q, want %q", tt.text, tt.width, got, tt.expected)
			}
		})
	}
}

func TestWrapTextNeverExceedsWidth(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog; supercalifragilistic words too. ", 20)
	for _, width := range []float64{5, 13, 40, 80} {
		for _, l := range wrapText(text, fontStyle{}, width, runeWidth) {
			if runeWidth(l, fontStyle{}) > width {
				t.Fatalf("line %q exceeds width %v", l, width)
			}
			if strings.HasPrefix(l, " ") || strings.HasSuffix(l, " ") {
				t.Fatalf("line %q has edge spaces", l)
			}
		}
	}
}

func TestWrapRuns(t *testing.T) {
	bold := fontStyle{bold: true}
	plain := fontStyle{}

	t.Run("styled spans on one line", func(t *testing.T) {
		runs := []richtext.Run{{Text: "Bold", Bold: true}, {Text: " text"}}
		got := wrapRuns(runs, 100, runeWidth)
		want := []line{{{text: "Bold", style: bold}, {text: " text", style: plain}}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %#v, want %#v", got, want)
		}
	})

	t.Run("breaks", func(t *testing.T) {
		runs := []richtext.Run{{Text: "one"}, {Break: true}, {Break: true}, {Text: "two"}, {Break: true}}
		got := wrapRuns(runs, 100, runeWidth)
		texts := make([]string, len(got))
		for i, l := range got {
			texts[i] = l.text()
		}
		if want := []string{"one", "", "two"}; !reflect.DeepEqual(texts, want) {
			t.Errorf("got %q, want %q", texts, want)
		}
	})

	t.Run("glued runs split", func(t *testing.T) {
		runs := []richtext.Run{{Text: "abc"}, {Text: "def", Bold: true}}
		got := wrapRuns(runs, 4, runeWidth)
		want := []line{
			{{text: "abc", style: plain}, {text: "d", style: bold}},
			{{text: "ef", style: bold}},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %#v, want %#v", got, want)
		}
	})

	t.Run("space keeps its run style", func(t *testing.T) {
		runs := []richtext.Run{{Text: "a"}, {Text: " b", Italic: true}}
		got := wrapRuns(runs, 10, runeWidth)
		want := []line{{{text: "a", style: plain}, {text: " b", style: fontStyle{italic: true}}}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %#v, want %#v", got, want)
		}
		if w := got[0].width(runeWidth); w != 3 {
			t.Errorf("width = %v", w)
		}
	})
}

func TestFontStyleString(t *testing.T) {
	tests := []struct {
		style fontStyle
		want  string
	}{
		{fontStyle{}, ""},
		{fontStyle{bold: true}, "B"},
		{fontStyle{italic: true}, "I"},
		{fontStyle{bold: true, italic: true}, "BI"},
		{fontStyle{bold: true, underline: true}, "BU"},
		{fontStyle{bold: true, italic: true, underline: true}, "BIU"},
	}
	for _, tt := range tests {
		if got := tt.style.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.style, got, tt.want)
		}
	}
}
