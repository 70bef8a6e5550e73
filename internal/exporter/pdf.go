package exporter

import (
	"context"
	"os"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	apperrors "cgmcli/internal/errors"
)

// printPDF prints the HTML dashboard through headless Chrome. The page
// is written to a temp file so Chrome can load it with all inline SVG
// intact.
func (e *Exporter) printPDF(ctx context.Context, html []byte) ([]byte, error) {
	tmp, err := os.CreateTemp("", "cgm-dashboard-*.html")
	if err != nil {
		return nil, apperrors.NewExportError("create temp html for pdf", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return nil, apperrors.NewExportError("write temp html for pdf", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, apperrors.NewExportError("close temp html for pdf", err)
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts, chromedp.Flag("headless", true))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate("file://" + tmp.Name()),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var printErr error
			pdf, _, printErr = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return printErr
		}),
	}
	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return nil, apperrors.NewExportError("print dashboard to pdf (requires a local Chrome or Chromium)", err)
	}
	return pdf, nil
}
