package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func unzipDOCX(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	parts := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		parts[f.Name] = string(content)
	}
	return parts
}

func assertWellFormed(t *testing.T, name, content string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(content))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatalf("%s is not well-formed: %v", name, err)
		}
	}
}

func TestDOCXPackage(t *testing.T) {
	sections := testSections(t)
	doc := mustDocument(t, Request{Sections: sections})

	data, err := renderDOCX(doc, DefaultPageSettings(), time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("renderDOCX: %v", err)
	}
	parts := unzipDOCX(t, data)

	for _, name := range []string{
		"[Content_Types].xml", "_rels/.rels", "docProps/core.xml", "word/document.xml",
		"word/styles.xml", "word/header1.xml", "word/footer1.xml", "word/_rels/document.xml.rels",
	} {
		content, ok := parts[name]
		if !ok {
			t.Fatalf("missing part %s", name)
		}
		assertWellFormed(t, name, content)
	}

	body := parts["word/document.xml"]
	questions := 0
	for _, s := range sections {
		questions += len(s.Questions)
		for _, q := range s.Questions {
			if !strings.Contains(body, xmlEscape(q.Title)) {
				t.Errorf("missing question title %q", q.Title)
			}
		}
	}
	if got := strings.Count(body, noAnswerText); got != questions {
		t.Errorf("placeholders = %d, want %d", got, questions)
	}
	if !strings.Contains(body, `<w:pgSz w:w="11906" w:h="16838" w:orient="portrait"/>`) {
		t.Error("A4 portrait page size not in DXA")
	}
	if !strings.Contains(body, `<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440"`) {
		t.Error("default margins not 1440 DXA")
	}

	if !strings.Contains(parts["word/header1.xml"], `<w:jc w:val="right"/>`) ||
		!strings.Contains(parts["word/header1.xml"], "Enterprise Cloud Solutions RFP") {
		t.Error("header should carry the right-aligned title")
	}
	footer := parts["word/footer1.xml"]
	if !strings.Contains(footer, `w:instr=" PAGE `) || !strings.Contains(footer, `w:instr=" NUMPAGES `) {
		t.Error("footer lacks page fields")
	}
	if !strings.Contains(parts["docProps/core.xml"], "2024-05-06T10:00:00Z") {
		t.Error("core properties missing creation time")
	}
}

func TestDOCXLandscapeLetter(t *testing.T) {
	doc := mustDocument(t, Request{Sections: testSections(t)})
	settings := PageSettings{
		PageSize:    PageSizeLetter,
		Orientation: OrientationLandscape,
		Margins:     Margins{Top: 12.7, Bottom: 12.7, Left: 25.4, Right: 0},
	}
	data, err := renderDOCX(doc, settings, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	body := unzipDOCX(t, data)["word/document.xml"]
	if !strings.Contains(body, `<w:pgSz w:w="15817" w:h="12246" w:orient="landscape"/>`) {
		t.Error("letter landscape size wrong")
	}
	if !strings.Contains(body, `<w:pgMar w:top="720" w:right="0" w:bottom="720" w:left="1440"`) {
		t.Error("margins wrong")
	}
}

func TestDOCXAnswerFormatting(t *testing.T) {
	answers := mapAnswers{
		"q1-1": "<p><strong>Bold</strong> &amp; <em>italic</em> <u>under</u><br>next</p>",
		"q1-2": "<ol><li>first</li><li>second</li></ol>",
		"q1-3": "<h3>Heading</h3>",
	}
	doc := mustDocument(t, Request{Sections: testSections(t), Answers: answers})
	data, err := renderDOCX(doc, DefaultPageSettings(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	body := unzipDOCX(t, data)["word/document.xml"]
	assertWellFormed(t, "document.xml", body)

	checks := []string{
		`<w:rPr><w:b/><w:color w:val="374151"/><w:sz w:val="22"/><w:szCs w:val="22"/></w:rPr><w:t xml:space="preserve">Bold</w:t>`,
		`<w:t xml:space="preserve"> &amp; </w:t>`,
		`<w:i/>`,
		`<w:u w:val="single"/>`,
		`<w:r><w:br/></w:r>`,
		`<w:ind w:left="567"/>`,
		`1. first`,
		`2. second`,
		`<w:sz w:val="22"/><w:szCs w:val="22"/></w:rPr><w:t xml:space="preserve">Heading</w:t>`,
	}
	for _, want := range checks {
		if !strings.Contains(body, want) {
			t.Errorf("document.xml missing %s", want)
		}
	}
	if got := strings.Count(body, noAnswerText); got != 5 {
		t.Errorf("placeholders = %d, want 5", got)
	}
}
