package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultRenderTimeout bounds a single headless render.
const DefaultRenderTimeout = 45 * time.Second

// BrowserRenderer renders script-driven listing pages in headless Chrome.
// Requires Chrome/Chromium to be installed on the system.
type BrowserRenderer struct {
	Timeout time.Duration
	// Settle is how long to wait after the body is ready for client-side rendering.
	Settle time.Duration
	Logger *slog.Logger
}

// NewBrowserRenderer creates a renderer with default timings.
func NewBrowserRenderer(logger *slog.Logger) *BrowserRenderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BrowserRenderer{
		Timeout: DefaultRenderTimeout,
		Settle:  3 * time.Second,
		Logger:  logger,
	}
}

// Render navigates to pageURL and returns the rendered HTML.
func (b *BrowserRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	b.Logger.Info("rendering page in headless browser", "url", pageURL)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.Timeout)
	defer cancel()

	var rendered string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(b.Settle),
		chromedp.OuterHTML("html", &rendered),
	)
	if err != nil {
		return "", &Error{URL: pageURL, Message: "browser rendering failed", Cause: fmt.Errorf("chromedp: %w", err)}
	}

	b.Logger.Debug("rendered page", "url", pageURL, "bytes", len(rendered))
	return rendered, nil
}
