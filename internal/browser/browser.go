// Package browser manages the headless Chrome session used to render
// gov.uk pages. The session is lazily created and can be restarted after
// failures without losing the caller's handle.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/fcobackup/fco-backup-fetcher/internal/utils"
)

// DefaultPageTimeout bounds a single page render.
const DefaultPageTimeout = 2 * time.Minute

// Chrome wraps a restartable headless Chrome session
type Chrome struct {
	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	pageTimeout time.Duration
}

// New creates a Chrome handle. No browser process is started until the
// first Render call.
func New() *Chrome {
	return &Chrome{pageTimeout: DefaultPageTimeout}
}

// Render navigates to url in the managed session and returns the rendered
// document HTML.
func (c *Chrome) Render(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tab, err := c.session()
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(tab, c.pageTimeout)
	defer cancel()

	var html string
	err = chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("error rendering %s: %w", url, err)
	}
	return html, nil
}

// Restart tears down the current browser process. The next Render call
// starts a fresh one.
func (c *Chrome) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	utils.GetLogger().Warn("Restarting browser session")
	c.stopLocked()
}

// Close shuts down the browser process if one is running
func (c *Chrome) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Chrome) session() (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tabCtx != nil {
		return c.tabCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.NoSandbox,
	)

	c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	c.tabCtx, c.tabCancel = chromedp.NewContext(c.allocCtx)

	// Force the browser process to start now so a broken Chrome install
	// surfaces here instead of on the first navigation.
	if err := chromedp.Run(c.tabCtx); err != nil {
		c.stopLocked()
		return nil, fmt.Errorf("error starting browser: %w", err)
	}

	return c.tabCtx, nil
}

func (c *Chrome) stopLocked() {
	if c.tabCancel != nil {
		c.tabCancel()
		c.tabCancel = nil
		c.tabCtx = nil
	}
	if c.allocCancel != nil {
		c.allocCancel()
		c.allocCancel = nil
		c.allocCtx = nil
	}
}
