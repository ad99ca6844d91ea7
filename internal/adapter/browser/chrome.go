// Package browser drives a headless Chrome to capture rendered map pages.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/couchcryptid/fire-match-viz/internal/observability"
	"github.com/jonboulle/clockwork"
)

// tilesLoadedJS is set by the map page once the tile layer fires "load".
const tilesLoadedJS = `window.__tilesLoaded === true`

// Chrome captures pages with a fresh headless browser per call. The browser
// is torn down when Capture returns, whether or not it succeeded.
type Chrome struct {
	execPath    string
	tileTimeout time.Duration
	settleDelay time.Duration
	clock       clockwork.Clock
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// Options configures a Chrome adapter.
type Options struct {
	ExecPath    string        // empty uses the chromedp lookup
	TileTimeout time.Duration // upper bound on waiting for tiles
	SettleDelay time.Duration // pause after tiles report loaded, for marker paint
}

// NewChrome creates a Chrome adapter.
func NewChrome(opts Options, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Chrome {
	return &Chrome{
		execPath:    opts.ExecPath,
		tileTimeout: opts.TileTimeout,
		settleDelay: opts.SettleDelay,
		clock:       clock,
		metrics:     metrics,
		logger:      logger,
	}
}

// Capture loads pageURL in a width×height viewport, waits for the tile layer
// and returns a PNG of the viewport.
func (c *Chrome) Capture(ctx context.Context, pageURL string, width, height int) ([]byte, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(width, height),
	)
	if c.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			c.logger.Debug("chromedp", "detail", fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(pageURL),
		chromedp.ActionFunc(c.waitForTiles),
		chromedp.ActionFunc(c.settle),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("headless capture: %w", err)
	}
	return buf, nil
}

func (c *Chrome) waitForTiles(ctx context.Context) error {
	start := c.clock.Now()
	var loaded bool
	err := chromedp.Poll(tilesLoadedJS, &loaded, chromedp.WithPollingTimeout(c.tileTimeout)).Do(ctx)
	waited := c.clock.Since(start)
	c.metrics.TileWaitDuration.Observe(waited.Seconds())
	if err != nil {
		return fmt.Errorf("wait for tiles after %s: %w", waited, err)
	}
	c.logger.Debug("tiles loaded", "wait", waited)
	return nil
}

func (c *Chrome) settle(ctx context.Context) error {
	if c.settleDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(c.settleDelay):
		return nil
	}
}
