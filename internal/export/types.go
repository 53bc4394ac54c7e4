// Package export renders a session's answers into downloadable PDF, DOCX
// and CSV documents, and into an HTML preview.
package export

import (
	"errors"
	"strings"

	"rfpwriter/api/internal/catalog"
)

// Format represents the export output format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(value string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatPDF, FormatDOCX, FormatCSV:
		return f, true
	default:
		return "", false
	}
}

func (f Format) Extension() string {
	return string(f)
}

func (f Format) MimeType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// AnswerLookup returns the stored HTML for a question, "" when unanswered.
// session.Snapshot satisfies it.
type AnswerLookup interface {
	Answer(questionID string) string
}

// StatusLookup is optionally implemented by an AnswerLookup; the CSV
// export includes the status column when it is.
type StatusLookup interface {
	StatusOf(questionID string) string
}

// Request contains parameters for an export operation
type Request struct {
	Format   Format
	Settings PageSettings
	// Title falls back to the service's default title when blank.
	Title    string
	Sections []catalog.Section
	Answers  AnswerLookup
}

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrExportFailed wraps every renderer failure. No partial output is returned with it.
	ErrExportFailed = errors.New("export failed")
	// ErrChromeUnavailable indicates the chrome PDF engine has no browser binary to run.
	ErrChromeUnavailable = errors.New("chromium not installed")
)

type noAnswers struct{}

func (noAnswers) Answer(string) string { return "" }
