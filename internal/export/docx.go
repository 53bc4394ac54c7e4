package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rfpwriter/api/internal/richtext"
)

// Run sizes are half-points, spacing and indents twentieths of a point.
const (
	docxBodySize      = 22
	docxColorHeading  = "1F2937"
	docxColorSubtitle = "6B7280"
	docxColorQuestion = "4B5563"
	docxColorAnswer   = "374151"
	docxColorMuted    = "9CA3AF"
	docxColorRule     = "E5E7EB"
)

type docxBorder struct {
	size  int
	space int
}

type docxParagraph struct {
	runs   []docxRun
	before int
	after  int
	indent int
	align  string
	border *docxBorder
}

type docxRun struct {
	text      string
	bold      bool
	italic    bool
	underline bool
	size      int
	color     string
	lineBreak bool
	// field is a simple field instruction such as PAGE; text is its cached value.
	field string
}

// renderDOCX writes an Office Open XML package. Page numbers are native
// fields evaluated by the viewer.
func renderDOCX(doc *document, settings PageSettings, created time.Time) ([]byte, error) {
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxPackageRels},
		{"docProps/core.xml", docxCoreProps(doc.title, created)},
		{"word/_rels/document.xml.rels", docxDocumentRels},
		{"word/styles.xml", docxStyles},
		{"word/header1.xml", docxHeader(doc.title)},
		{"word/footer1.xml", docxFooter()},
		{"word/document.xml", docxDocumentXML(doc, settings)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return buf.Bytes(), nil
}

func docxBodyParagraphs(doc *document) []docxParagraph {
	indent := MMToDXA(5)
	paras := []docxParagraph{
		{
			runs:  []docxRun{{text: doc.title, bold: true, size: 36, color: docxColorHeading}},
			after: 200,
		},
		{
			runs:   []docxRun{{text: subtitleText, size: docxBodySize, color: docxColorSubtitle}},
			after:  400,
			border: &docxBorder{size: 8, space: 8},
		},
	}

	for _, section := range doc.sections {
		paras = append(paras, docxParagraph{
			runs:   []docxRun{{text: section.header(), bold: true, size: 28, color: docxColorHeading}},
			before: 400,
			after:  200,
			border: &docxBorder{size: 4, space: 4},
		})

		if len(section.questions) == 0 {
			paras = append(paras, docxParagraph{
				runs:   []docxRun{{text: noQuestionsText, italic: true, size: docxBodySize, color: docxColorMuted}},
				before: 100,
				after:  200,
			})
			continue
		}

		for _, q := range section.questions {
			paras = append(paras,
				docxParagraph{
					runs:   []docxRun{{text: q.title, bold: true, size: 24, color: docxColorHeading}},
					before: 300,
					after:  100,
				},
				docxParagraph{
					runs:   []docxRun{{text: q.fullQuestion, size: docxBodySize, color: docxColorQuestion}},
					before: 60,
					after:  200,
					indent: indent,
				},
			)

			if q.answered() {
				for _, block := range q.blocks {
					paras = append(paras, docxAnswerParagraph(block))
				}
			} else {
				paras = append(paras, docxParagraph{
					runs:   []docxRun{{text: noAnswerText, italic: true, size: docxBodySize, color: docxColorMuted}},
					before: 100,
					after:  100,
					indent: indent,
				})
			}

			// spacer between questions
			paras = append(paras, docxParagraph{after: 100})
		}
	}
	return paras
}

func docxAnswerParagraph(block richtext.Block) docxParagraph {
	switch b := block.(type) {
	case richtext.ListItem:
		return docxParagraph{
			runs:   []docxRun{{text: b.Marker() + " " + b.Text, size: docxBodySize, color: docxColorAnswer}},
			before: 60,
			after:  60,
			indent: MMToDXA(10),
		}
	case richtext.Heading:
		return docxParagraph{
			runs:   []docxRun{{text: b.Text, bold: true, size: 28 - 2*b.Level, color: docxColorHeading}},
			before: 200,
			after:  100,
			indent: MMToDXA(5),
		}
	case richtext.Paragraph:
		runs := make([]docxRun, 0, len(b.Runs))
		for _, r := range b.Runs {
			if r.Break {
				runs = append(runs, docxRun{lineBreak: true})
				continue
			}
			runs = append(runs, docxRun{
				text:      r.Text,
				bold:      r.Bold,
				italic:    r.Italic,
				underline: r.Underline,
				size:      docxBodySize,
				color:     docxColorAnswer,
			})
		}
		return docxParagraph{runs: runs, before: 80, after: 80, indent: MMToDXA(5)}
	default:
		return docxParagraph{}
	}
}

func docxDocumentXML(doc *document, settings PageSettings) string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>`)
	for _, p := range docxBodyParagraphs(doc) {
		writeDocxParagraph(&sb, p)
	}
	writeDocxSection(&sb, settings)
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func writeDocxSection(sb *strings.Builder, settings PageSettings) {
	dims := settings.Dimensions()
	orient := "portrait"
	if settings.Orientation == OrientationLandscape {
		orient = "landscape"
	}
	m := settings.Margins
	sb.WriteString(`<w:sectPr>`)
	sb.WriteString(`<w:headerReference w:type="default" r:id="rIdHeader1"/>`)
	sb.WriteString(`<w:footerReference w:type="default" r:id="rIdFooter1"/>`)
	fmt.Fprintf(sb, `<w:pgSz w:w="%d" w:h="%d" w:orient="%s"/>`, MMToDXA(dims.Width), MMToDXA(dims.Height), orient)
	fmt.Fprintf(sb, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/>`,
		MMToDXA(m.Top), MMToDXA(m.Right), MMToDXA(m.Bottom), MMToDXA(m.Left))
	sb.WriteString(`</w:sectPr>`)
}

func writeDocxParagraph(sb *strings.Builder, p docxParagraph) {
	sb.WriteString(`<w:p>`)

	var props strings.Builder
	if p.border != nil {
		fmt.Fprintf(&props, `<w:pBdr><w:bottom w:val="single" w:sz="%d" w:space="%d" w:color="%s"/></w:pBdr>`,
			p.border.size, p.border.space, docxColorRule)
	}
	if p.before != 0 || p.after != 0 {
		fmt.Fprintf(&props, `<w:spacing w:before="%d" w:after="%d"/>`, p.before, p.after)
	}
	if p.indent != 0 {
		fmt.Fprintf(&props, `<w:ind w:left="%d"/>`, p.indent)
	}
	if p.align != "" {
		fmt.Fprintf(&props, `<w:jc w:val="%s"/>`, p.align)
	}
	if props.Len() > 0 {
		sb.WriteString(`<w:pPr>`)
		sb.WriteString(props.String())
		sb.WriteString(`</w:pPr>`)
	}

	for _, r := range p.runs {
		writeDocxRun(sb, r)
	}
	sb.WriteString(`</w:p>`)
}

func writeDocxRun(sb *strings.Builder, r docxRun) {
	if r.lineBreak {
		sb.WriteString(`<w:r><w:br/></w:r>`)
		return
	}
	if r.field != "" {
		fmt.Fprintf(sb, `<w:fldSimple w:instr=" %s \* MERGEFORMAT ">`, r.field)
	}
	sb.WriteString(`<w:r>`)

	var props strings.Builder
	if r.bold {
		props.WriteString(`<w:b/>`)
	}
	if r.italic {
		props.WriteString(`<w:i/>`)
	}
	if r.color != "" {
		fmt.Fprintf(&props, `<w:color w:val="%s"/>`, r.color)
	}
	if r.size != 0 {
		size := strconv.Itoa(r.size)
		props.WriteString(`<w:sz w:val="` + size + `"/><w:szCs w:val="` + size + `"/>`)
	}
	if r.underline {
		props.WriteString(`<w:u w:val="single"/>`)
	}
	if props.Len() > 0 {
		sb.WriteString(`<w:rPr>`)
		sb.WriteString(props.String())
		sb.WriteString(`</w:rPr>`)
	}

	sb.WriteString(`<w:t xml:space="preserve">`)
	sb.WriteString(xmlEscape(r.text))
	sb.WriteString(`</w:t></w:r>`)
	if r.field != "" {
		sb.WriteString(`</w:fldSimple>`)
	}
}

func docxHeader(title string) string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	writeDocxParagraph(&sb, docxParagraph{
		runs:  []docxRun{{text: title, size: 18, color: docxColorMuted}},
		align: "right",
	})
	sb.WriteString(`</w:hdr>`)
	return sb.String()
}

func docxFooter() string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	writeDocxParagraph(&sb, docxParagraph{
		runs: []docxRun{
			{text: "Page ", size: 18, color: docxColorMuted},
			{text: "1", field: "PAGE", size: 18, color: docxColorMuted},
			{text: " of ", size: 18, color: docxColorMuted},
			{text: "1", field: "NUMPAGES", size: 18, color: docxColorMuted},
		},
		align: "center",
	})
	sb.WriteString(`</w:ftr>`)
	return sb.String()
}

func docxCoreProps(title string, created time.Time) string {
	stamp := created.UTC().Format(time.RFC3339)
	return xml.Header +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + xmlEscape(title) + `</dc:title>` +
		`<dc:creator>rfpwriter</dc:creator>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	// EscapeText only fails when the writer does
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

const docxContentTypes = xml.Header +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>` +
	`<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`</Types>`

const docxPackageRels = xml.Header +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`

const docxDocumentRels = xml.Header +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rIdStyles" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`<Relationship Id="rIdHeader1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>` +
	`<Relationship Id="rIdFooter1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>` +
	`</Relationships>`

const docxStyles = xml.Header +
	`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:docDefaults><w:rPrDefault><w:rPr>` +
	`<w:rFonts w:ascii="Arial" w:hAnsi="Arial" w:eastAsia="Arial" w:cs="Arial"/>` +
	`<w:sz w:val="22"/><w:szCs w:val="22"/>` +
	`</w:rPr></w:rPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
	`</w:styles>`
