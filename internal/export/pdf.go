package export

import (
	"bytes"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"

	"rfpwriter/api/internal/richtext"
)

type rgb struct{ r, g, b int }

var (
	colorHeading     = rgb{31, 41, 55}
	colorSubtitle    = rgb{107, 114, 128}
	colorRule        = rgb{229, 231, 235}
	colorQuestion    = rgb{75, 85, 99}
	colorAnswer      = rgb{55, 65, 81}
	colorPlaceholder = rgb{156, 163, 175}
)

// Vertical spacing, mm. Converted to points when applied.
const (
	titleLineMM       = 7.0
	titleAfterMM      = 8.0
	subtitleAfterMM   = 8.0
	ruleAfterMM       = 10.0
	sectionKeepMM     = 20.0
	sectionHeaderMM   = 6.0
	sectionRuleMM     = 8.0
	emptySectionMM    = 10.0
	textLineMM        = 4.0
	headingLineMM     = 5.0
	questionTitleMM   = 2.0
	fullQuestionMM    = 4.0
	answerKeepMM      = 15.0
	answerAfterMM     = 4.0
	blockAfterMM      = 1.5
	placeholderMM     = 8.0
	questionAfterMM   = 6.0
	sectionAfterMM    = 6.0
	estimateLineMM    = 5.0
	estimateMaxMM     = 60.0
	estimateLineChars = 80
	listMarkerMM      = 2.0
	listTextMM        = 7.0
)

const fontFamily = "Helvetica"

// pdfLayout lays out a document on fixed-size pages with a manual cursor.
// All coordinates are points.
type pdfLayout struct {
	pdf       *gofpdf.Fpdf
	translate func(string) string
	fontSize  float64

	pageW, pageH             float64
	top, bottom, left, right float64
	y                        float64
}

func newPDFLayout(settings PageSettings, compress bool) *pdfLayout {
	dims := settings.Dimensions()
	// dimensions are already oriented, so the page is always created "P"
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: MMToPoints(dims.Width), Ht: MMToPoints(dims.Height)},
	})
	pdf.SetCompression(compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(MMToPoints(settings.Margins.Left), MMToPoints(settings.Margins.Top), MMToPoints(settings.Margins.Right))

	l := &pdfLayout{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		pageW:     MMToPoints(dims.Width),
		pageH:     MMToPoints(dims.Height),
		top:       MMToPoints(settings.Margins.Top),
		bottom:    MMToPoints(settings.Margins.Bottom),
		left:      MMToPoints(settings.Margins.Left),
		right:     MMToPoints(settings.Margins.Right),
	}
	l.newPage()
	return l
}

// renderPDF produces the PDF byte stream for doc.
func renderPDF(doc *document, settings PageSettings) ([]byte, error) {
	l, err := layoutPDF(doc, settings, true)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := l.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func layoutPDF(doc *document, settings PageSettings, compress bool) (*pdfLayout, error) {
	l := newPDFLayout(settings, compress)
	l.pdf.SetTitle(doc.title, true)
	l.pdf.SetCreator("rfpwriter", true)

	l.writeHeader(doc.title)
	for _, section := range doc.sections {
		l.writeSection(section)
	}
	l.stampPageNumbers()

	if l.pdf.Err() {
		return nil, l.pdf.Error()
	}
	return l, nil
}

func (l *pdfLayout) contentWidth() float64 {
	return l.pageW - l.left - l.right
}

func (l *pdfLayout) newPage() {
	l.pdf.AddPage()
	l.y = l.top
}

func (l *pdfLayout) checkPageBreak(required float64) {
	if l.y+required > l.pageH-l.bottom {
		l.newPage()
	}
}

func (l *pdfLayout) advance(mm float64) {
	l.y += MMToPoints(mm)
}

func (l *pdfLayout) setFont(style fontStyle, size float64, color rgb) {
	l.pdf.SetFont(fontFamily, style.String(), size)
	l.pdf.SetTextColor(color.r, color.g, color.b)
	l.fontSize = size
}

// measure uses the current font size with the requested style.
func (l *pdfLayout) measure(text string, style fontStyle) float64 {
	l.pdf.SetFont(fontFamily, style.String(), l.fontSize)
	return l.pdf.GetStringWidth(l.translate(text))
}

func (l *pdfLayout) text(x float64, s string) {
	l.pdf.Text(x, l.y, l.translate(s))
}

func (l *pdfLayout) rule(width float64) {
	l.pdf.SetDrawColor(colorRule.r, colorRule.g, colorRule.b)
	l.pdf.SetLineWidth(width)
	l.pdf.Line(l.left, l.y, l.pageW-l.right, l.y)
}

func (l *pdfLayout) writeHeader(title string) {
	style := fontStyle{bold: true}
	l.setFont(style, 18, colorHeading)
	lines := wrapText(title, style, l.contentWidth(), l.measure)
	l.setFont(style, 18, colorHeading)
	for i, s := range lines {
		if i > 0 {
			l.advance(titleLineMM)
		}
		l.text(l.left, s)
	}
	l.advance(titleAfterMM)

	l.setFont(fontStyle{}, 10, colorSubtitle)
	l.text(l.left, subtitleText)
	l.advance(subtitleAfterMM)

	l.rule(MMToPoints(0.5))
	l.advance(ruleAfterMM)
}

func (l *pdfLayout) writeSection(section documentSection) {
	l.checkPageBreak(MMToPoints(sectionKeepMM))

	style := fontStyle{bold: true}
	l.setFont(style, 14, colorHeading)
	l.text(l.left, section.header())
	l.advance(sectionHeaderMM)

	l.rule(MMToPoints(0.3))
	l.advance(sectionRuleMM)

	if len(section.questions) == 0 {
		l.setFont(fontStyle{italic: true}, 10, colorPlaceholder)
		l.text(l.left, noQuestionsText)
		l.advance(emptySectionMM)
		return
	}

	for _, question := range section.questions {
		l.writeQuestion(question)
		l.advance(questionAfterMM)
	}
	l.advance(sectionAfterMM)
}

func (l *pdfLayout) writeQuestion(q documentQuestion) {
	answerText := noAnswerText
	if q.answered() {
		answerText = richtext.PlainText(q.blocks)
	}
	estimatedLines := int(math.Ceil(float64(utf8.RuneCountInString(answerText))/estimateLineChars)) + 4
	l.checkPageBreak(MMToPoints(math.Min(float64(estimatedLines)*estimateLineMM, estimateMaxMM)))

	titleStyle := fontStyle{bold: true}
	l.setFont(titleStyle, 11, colorHeading)
	titleLines := wrapText(q.title, titleStyle, l.contentWidth(), l.measure)
	l.setFont(titleStyle, 11, colorHeading)
	l.writeLines(titleLines)
	l.advance(questionTitleMM)

	l.setFont(fontStyle{}, 10, colorQuestion)
	questionLines := wrapText(q.fullQuestion, fontStyle{}, l.contentWidth(), l.measure)
	l.setFont(fontStyle{}, 10, colorQuestion)
	l.writeLines(questionLines)
	l.advance(fullQuestionMM)

	l.checkPageBreak(MMToPoints(answerKeepMM))

	if !q.answered() {
		l.setFont(fontStyle{italic: true}, 10, colorPlaceholder)
		l.text(l.left, noAnswerText)
		l.advance(placeholderMM)
		return
	}

	for _, block := range q.blocks {
		l.writeBlock(block)
		l.advance(blockAfterMM)
	}
	l.advance(answerAfterMM)
}

// writeLines draws single-style lines, breaking the page before any line
// that would start below the bottom margin.
func (l *pdfLayout) writeLines(lines []string) {
	for _, s := range lines {
		if l.y > l.pageH-l.bottom {
			l.newPage()
		}
		l.text(l.left, s)
		l.advance(textLineMM)
	}
}

func (l *pdfLayout) writeBlock(block richtext.Block) {
	switch b := block.(type) {
	case richtext.Paragraph:
		l.fontSize = 10
		lines := wrapRuns(b.Runs, l.contentWidth(), l.measure)
		for _, ln := range lines {
			l.answerLine(textLineMM)
			l.drawSpans(l.left, ln, 10)
			l.advance(textLineMM)
		}
	case richtext.ListItem:
		l.fontSize = 10
		indent := MMToPoints(listTextMM)
		lines := wrapText(b.Text, fontStyle{}, l.contentWidth()-indent, l.measure)
		if len(lines) == 0 {
			lines = []string{""}
		}
		for i, s := range lines {
			l.answerLine(textLineMM)
			l.setFont(fontStyle{}, 10, colorAnswer)
			if i == 0 {
				l.text(l.left+MMToPoints(listMarkerMM), b.Marker())
			}
			l.text(l.left+indent, s)
			l.advance(textLineMM)
		}
	case richtext.Heading:
		size := float64(14 - b.Level)
		style := fontStyle{bold: true}
		l.setFont(style, size, colorHeading)
		lines := wrapText(b.Text, style, l.contentWidth(), l.measure)
		for _, s := range lines {
			l.answerLine(headingLineMM)
			l.setFont(style, size, colorHeading)
			l.text(l.left, s)
			l.advance(headingLineMM)
		}
	}
}

// answerLine starts a new page when the cursor is within one line of the
// bottom margin.
func (l *pdfLayout) answerLine(lineMM float64) {
	if l.y > l.pageH-l.bottom-MMToPoints(lineMM) {
		l.newPage()
	}
}

func (l *pdfLayout) drawSpans(x float64, ln line, size float64) {
	for _, sp := range ln {
		l.setFont(sp.style, size, colorAnswer)
		l.text(x, sp.text)
		x += l.pdf.GetStringWidth(l.translate(sp.text))
	}
}

func (l *pdfLayout) stampPageNumbers() {
	total := l.pdf.PageCount()
	for i := 1; i <= total; i++ {
		l.pdf.SetPage(i)
		l.setFont(fontStyle{}, 9, colorPlaceholder)
		label := l.translate(fmt.Sprintf("Page %d of %d", i, total))
		x := (l.pageW - l.pdf.GetStringWidth(label)) / 2
		l.pdf.Text(x, l.pageH-l.bottom/2, label)
	}
}
