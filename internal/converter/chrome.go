package converter

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configures the headless Chrome engine.
type ChromeOptions struct {
	ExecPath  string
	NoSandbox bool
	// Paper size and margins in inches. Zero values mean A4 with 0.4in margins.
	PaperWidth  float64
	PaperHeight float64
	Margin      float64
}

// Chrome renders HTML documents to PDF with headless Chrome.
// A browser is started per conversion.
type Chrome struct {
	opts ChromeOptions
}

func NewChrome(opts ChromeOptions) *Chrome {
	if opts.PaperWidth <= 0 || opts.PaperHeight <= 0 {
		opts.PaperWidth, opts.PaperHeight = 8.27, 11.69
	}
	if opts.Margin <= 0 {
		opts.Margin = 0.4
	}
	return &Chrome{opts: opts}
}

func (c *Chrome) Name() string { return "chrome" }

func (c *Chrome) Accepts(format string) bool {
	return format == "html" || format == "htm"
}

func (c *Chrome) Convert(ctx context.Context, input []byte, _ string, _ string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "chromedata-*")
	if err != nil {
		return nil, fmt.Errorf("cannot create temp profile dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(tmpDir),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.opts.ExecPath != "" {
		allocatorOptions = append(allocatorOptions, chromedp.ExecPath(c.opts.ExecPath))
	}
	if c.opts.NoSandbox {
		allocatorOptions = append(allocatorOptions, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions...)
	defer cancelAlloc()
	chromeCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	// Uploaded HTML must not reach the network or the host filesystem.
	chromedp.ListenTarget(chromeCtx, func(ev any) {
		e, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			execCtx := cdp.WithExecutor(chromeCtx, chromedp.FromContext(chromeCtx).Target)
			if allowedURL(e.Request.URL) {
				_ = fetch.ContinueRequest(e.RequestID).Do(execCtx)
				return
			}
			_ = fetch.FailRequest(e.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
		}()
	})

	var pdfBuf []byte
	err = chromedp.Run(chromeCtx,
		chromedp.Navigate("about:blank"),
		fetch.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frame, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frame.Frame.ID, string(input)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(200*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(c.opts.PaperWidth).
				WithPaperHeight(c.opts.PaperHeight).
				WithMarginTop(c.opts.Margin).
				WithMarginBottom(c.opts.Margin).
				WithMarginLeft(c.opts.Margin).
				WithMarginRight(c.opts.Margin).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome render: %w", err)
	}
	return pdfBuf, nil
}

func allowedURL(u string) bool {
	return strings.HasPrefix(u, "data:") || u == "about:blank"
}
