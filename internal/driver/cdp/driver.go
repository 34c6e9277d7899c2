// Package cdp adapts the Chrome DevTools Protocol to the agnostic
// ScreenDriver contract, for automating browser-hosted surfaces. All
// methods expect a chromedp-derived context.
package cdp

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
	"github.com/xkilldash9x/visor-cli/internal/config"
)

// Driver is the production ScreenDriver over CDP.
type Driver struct {
	logger *zap.Logger
}

// New creates the CDP driver.
func New(logger *zap.Logger) *Driver {
	return &Driver{logger: logger.With(zap.String("component", "cdp_driver"))}
}

// NewBrowserContext allocates a browser, derives a chromedp context from
// parent, and navigates to the configured target. The returned cancel func
// tears the browser down.
func NewBrowserContext(parent context.Context, cfg config.DriverConfig) (context.Context, context.CancelFunc, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	if cfg.TargetURL != "" {
		navCtx := browserCtx
		if cfg.NavigationTimeout > 0 {
			var cancelNav context.CancelFunc
			navCtx, cancelNav = context.WithTimeout(browserCtx, cfg.NavigationTimeout)
			defer cancelNav()
		}
		if err := chromedp.Run(navCtx, chromedp.Navigate(cfg.TargetURL)); err != nil {
			cancel()
			return nil, nil, fmt.Errorf("failed to navigate to %q: %w", cfg.TargetURL, err)
		}
	}
	return browserCtx, cancel, nil
}

// DispatchMouseEvent implements schemas.ScreenDriver.
func (d *Driver) DispatchMouseEvent(ctx context.Context, ev schemas.MouseEvent) error {
	p := &input.DispatchMouseEventParams{
		Type:       mouseType(ev.Type),
		X:          ev.X,
		Y:          ev.Y,
		Button:     input.MouseButton(ev.Button),
		ClickCount: int64(ev.ClickCount),
		Buttons:    ev.Buttons,
	}
	return p.Do(ctx)
}

// TypeText implements schemas.ScreenDriver: each rune becomes a char key
// event, spaced by delay.
func (d *Driver) TypeText(ctx context.Context, text string, delay time.Duration) error {
	for _, r := range text {
		p := &input.DispatchKeyEventParams{
			Type: input.KeyChar,
			Text: string(r),
		}
		if err := p.Do(ctx); err != nil {
			return err
		}
		if delay > 0 {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}
	}
	return nil
}

// CaptureScreen implements schemas.ScreenDriver, returning a PNG of the
// current viewport.
func (d *Driver) CaptureScreen(ctx context.Context) ([]byte, error) {
	shot, err := page.CaptureScreenshot().
		WithFormat(page.CaptureScreenshotFormatPng).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return shot, nil
}

func mouseType(t schemas.MouseEventType) input.MouseType {
	switch t {
	case schemas.MousePress:
		return input.MousePressed
	case schemas.MouseRelease:
		return input.MouseReleased
	default:
		return input.MouseMoved
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ schemas.ScreenDriver = (*Driver)(nil)
