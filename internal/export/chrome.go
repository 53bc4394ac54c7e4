package export

import (
	"context"
	"fmt"
	"html"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

var chromeBinaries = []string{"chromium-browser", "chromium", "google-chrome"}

// chromePrinter prints the HTML preview to PDF with headless Chrome.
type chromePrinter struct {
	timeout  time.Duration
	lookPath func(string) (string, error)
}

func newChromePrinter(timeout time.Duration) *chromePrinter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &chromePrinter{timeout: timeout, lookPath: exec.LookPath}
}

func (c *chromePrinter) binary() (string, error) {
	for _, name := range chromeBinaries {
		if path, err := c.lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrChromeUnavailable
}

// print renders html on a page of the given settings. The header shows the
// title and the footer Chrome's own page counter.
func (c *chromePrinter) print(ctx context.Context, htmlDoc, title string, settings PageSettings) ([]byte, error) {
	execPath, err := c.binary()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Chrome options for headless mode in container
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	dataURL := "data:text/html;charset=utf-8," + percentEncodeForDataURL(htmlDoc)
	dims := settings.Dimensions()

	var pdfData []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfData, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(MMToInches(dims.Width)).
				WithPaperHeight(MMToInches(dims.Height)).
				WithMarginTop(MMToInches(settings.Margins.Top)).
				WithMarginBottom(MMToInches(settings.Margins.Bottom)).
				WithMarginLeft(MMToInches(settings.Margins.Left)).
				WithMarginRight(MMToInches(settings.Margins.Right)).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(chromeHeaderTemplate(title)).
				WithFooterTemplate(chromeFooterTemplate).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome print: %w", err)
	}
	return pdfData, nil
}

const chromeFooterTemplate = `<div style="width:100%;font-size:9px;color:#9CA3AF;text-align:center;">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

func chromeHeaderTemplate(title string) string {
	return `<div style="width:100%;font-size:9px;color:#9CA3AF;text-align:right;padding-right:12px;">` +
		html.EscapeString(title) + `</div>`
}

// percentEncodeForDataURL encodes a string for use in a data URL. Spaces
// become %20 rather than the + that url.QueryEscape produces.
func percentEncodeForDataURL(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z',
			b >= 'A' && b <= 'Z',
			b >= '0' && b <= '9',
			b == '-', b == '_', b == '.', b == '~':
			// Unreserved characters per RFC 3986
			result.WriteByte(b)
		default:
			fmt.Fprintf(&result, "%%%02X", b)
		}
	}
	return result.String()
}
