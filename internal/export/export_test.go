package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"
)

type statusAnswers struct {
	mapAnswers
	statuses map[string]string
}

func (s statusAnswers) StatusOf(questionID string) string { return s.statuses[questionID] }

func newTestService() *Service {
	svc := NewService(Options{DefaultTitle: "Enterprise Cloud Solutions RFP"})
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 23, 30, 0, 0, time.FixedZone("PDT", -7*3600)) }
	return svc
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Enterprise Cloud Solutions RFP!", "enterprise_cloud_solutions_rfp_"},
		{"My Document v1.2", "my_document_v1_2"},
		{"Café-Plan", "caf__plan"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestExportFilename(t *testing.T) {
	svc := newTestService()
	for _, format := range []Format{FormatPDF, FormatDOCX, FormatCSV} {
		result, err := svc.Export(context.Background(), Request{
			Format:   format,
			Settings: DefaultPageSettings(),
			Title:    "Enterprise Cloud Solutions RFP!",
			Sections: testSections(t),
		})
		if err != nil {
			t.Fatalf("Export(%s): %v", format, err)
		}
		pattern := regexp.MustCompile(`^enterprise_cloud_solutions_rfp__\d{4}-\d{2}-\d{2}\.` + string(format) + `$`)
		if !pattern.MatchString(result.Filename) {
			t.Errorf("filename %q does not match %s", result.Filename, pattern)
		}
		// dated in UTC
		if !strings.Contains(result.Filename, "2024-05-07") {
			t.Errorf("filename %q not dated in UTC", result.Filename)
		}
		if result.MimeType != format.MimeType() || len(result.Data) == 0 {
			t.Errorf("bad result for %s: %q, %d bytes", format, result.MimeType, len(result.Data))
		}
	}
}

func TestExportDefaultTitle(t *testing.T) {
	svc := newTestService()
	result, err := svc.Export(context.Background(), Request{Format: FormatCSV, Title: "   ", Sections: testSections(t)})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(result.Filename, "enterprise_cloud_solutions_rfp_2024") {
		t.Errorf("filename = %q", result.Filename)
	}
}

func TestExportFailures(t *testing.T) {
	svc := newTestService()

	_, err := svc.Export(context.Background(), Request{Format: "odt", Sections: testSections(t)})
	if !errors.Is(err, ErrExportFailed) {
		t.Errorf("unsupported format: expected ErrExportFailed, got %v", err)
	}

	chromeSvc := NewService(Options{PDFEngine: EngineChrome, DefaultTitle: "RFP"})
	chromeSvc.chrome.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	result, err := chromeSvc.Export(context.Background(), Request{Format: FormatPDF, Sections: testSections(t)})
	if !errors.Is(err, ErrExportFailed) || !errors.Is(err, ErrChromeUnavailable) {
		t.Errorf("missing chrome: expected ErrExportFailed wrapping ErrChromeUnavailable, got %v", err)
	}
	if result != nil {
		t.Error("failed export returned partial output")
	}
}

func TestExportCSV(t *testing.T) {
	svc := newTestService()
	answers := statusAnswers{
		mapAnswers: mapAnswers{
			"q1-1": `<p>Acme, "the" <strong>best</strong></p><ul><li>fast</li></ul>`,
			"q2-1": "<p>draft</p>",
		},
		statuses: map[string]string{"q1-1": "saved", "q2-1": "editing"},
	}
	result, err := svc.Export(context.Background(), Request{Format: FormatCSV, Sections: testSections(t), Answers: answers})
	if err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(bytes.NewReader(result.Data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 9 {
		t.Fatalf("rows = %d, want header + 8", len(rows))
	}
	if strings.Join(rows[0], ",") != "Section,Question ID,Title,Question,Answer,Status" {
		t.Errorf("header = %v", rows[0])
	}
	first := rows[1]
	if first[0] != "1" || first[1] != "q1-1" {
		t.Errorf("first row = %v", first)
	}
	if first[4] != "Acme, \"the\" best\n• fast" {
		t.Errorf("answer = %q", first[4])
	}
	if first[5] != "saved" {
		t.Errorf("status = %q", first[5])
	}
	if rows[2][4] != "" || rows[2][5] != "empty" {
		t.Errorf("unanswered row = %v", rows[2])
	}
	if rows[4][1] != "q2-1" || rows[4][5] != "editing" {
		t.Errorf("q2-1 row = %v", rows[4])
	}
}

func TestPreview(t *testing.T) {
	svc := newTestService()
	settings := DefaultPageSettings()
	settings.PageSize = PageSizeLetter
	settings.Orientation = OrientationLandscape

	html, err := svc.Preview(Request{
		Settings: settings,
		Sections: testSections(t),
		Answers: mapAnswers{
			"q1-1": `<p><strong>Bold</strong> <script>alert(1)</script></p>`,
			"q1-2": `<ol><li>one</li></ol>`,
		},
	})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	checks := []string{
		"Enterprise Cloud Solutions RFP",
		"Response Document",
		"Section 1: Company Information",
		"<strong>Bold</strong>",
		`<span class="marker">1.</span> one`,
		"No answer provided yet",
		"size: 279mm 216mm",
		"margin: 25.4mm 25.4mm 25.4mm 25.4mm",
	}
	for _, want := range checks {
		if !strings.Contains(html, want) {
			t.Errorf("preview missing %q", want)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Error("preview re-emitted raw answer markup")
	}
}

func TestParseFormat(t *testing.T) {
	if f, ok := ParseFormat(" PDF "); !ok || f != FormatPDF {
		t.Errorf("ParseFormat(PDF) = %q, %v", f, ok)
	}
	if _, ok := ParseFormat("xlsx"); ok {
		t.Error("xlsx accepted")
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello world", "hello%20world"},       // Spaces encoded as %20, not +
		{"test+sign", "test%2Bsign"},           // + signs are encoded
		{"special<>", "special%3C%3E"},         // Special chars encoded
		{"normal-text.txt", "normal-text.txt"}, // Unreserved chars pass through
		{"é", "%C3%A9"},                        // UTF-8 bytes
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := percentEncodeForDataURL(tt.input)
			if result != tt.expected {
				t.Errorf("percentEncodeForDataURL(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestChromeHeaderEscapesTitle(t *testing.T) {
	header := chromeHeaderTemplate(`R&D <RFP>`)
	if !strings.Contains(header, "R&amp;D &lt;RFP&gt;") {
		t.Errorf("header = %s", header)
	}
}
