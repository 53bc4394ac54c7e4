package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rfpwriter/api/internal/logger"
)

const (
	EngineLayout = "layout"
	EngineChrome = "chrome"
)

// Options configures a Service. Zero values fall back to the layout
// engine, a 30s Chrome timeout and a no-op logger.
type Options struct {
	PDFEngine     string
	ChromeTimeout time.Duration
	DefaultTitle  string
	Logger        *logger.Logger
}

// Service renders export documents. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	pdfEngine    string
	chrome       *chromePrinter
	defaultTitle string
	log          *logger.Logger
	now          func() time.Time
}

// NewService creates a new export service
func NewService(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	engine := EngineLayout
	if opts.PDFEngine == EngineChrome {
		engine = EngineChrome
	}
	return &Service{
		pdfEngine:    engine,
		chrome:       newChromePrinter(opts.ChromeTimeout),
		defaultTitle: opts.DefaultTitle,
		log:          log,
		now:          time.Now,
	}
}

func (s *Service) title(req Request) string {
	if title := strings.TrimSpace(req.Title); title != "" {
		return title
	}
	return s.defaultTitle
}

// Export generates an export in the requested format. Every failure is
// reported as ErrExportFailed.
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	title := s.title(req)
	settings := req.Settings.withDefaults()

	doc, err := buildDocument(title, req)
	if err != nil {
		return nil, s.fail(req.Format, "convert answers", err)
	}

	var data []byte
	switch req.Format {
	case FormatPDF:
		data, err = s.exportPDF(ctx, doc, settings)
	case FormatDOCX:
		data, err = renderDOCX(doc, settings, s.now())
	case FormatCSV:
		data, err = renderCSV(doc)
	default:
		err = fmt.Errorf("unsupported format %q", req.Format)
	}
	if err != nil {
		return nil, s.fail(req.Format, string(req.Format), err)
	}

	result := &Result{
		Data:     data,
		Filename: exportFilename(title, req.Format, s.now()),
		MimeType: req.Format.MimeType(),
	}
	s.log.Debug("export rendered", "format", req.Format, "bytes", len(data), "filename", result.Filename)
	return result, nil
}

func (s *Service) exportPDF(ctx context.Context, doc *document, settings PageSettings) ([]byte, error) {
	if s.pdfEngine != EngineChrome {
		return renderPDF(doc, settings)
	}
	html, err := RenderDocumentHTML(templateData(doc, settings))
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return s.chrome.print(ctx, html, doc.title, settings)
}

// Preview renders the document as a standalone HTML page.
func (s *Service) Preview(req Request) (string, error) {
	doc, err := buildDocument(s.title(req), req)
	if err != nil {
		return "", fmt.Errorf("convert answers: %w", err)
	}
	html, err := RenderDocumentHTML(templateData(doc, req.Settings.withDefaults()))
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return html, nil
}

func (s *Service) fail(format Format, stage string, err error) error {
	s.log.Warn("export failed", "format", format, "stage", stage, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrExportFailed, stage, err)
}
