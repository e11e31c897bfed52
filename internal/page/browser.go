package page

import (
	"context"
	"errors"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	errs "dealwatch/groceryworker/pkg/errors"
)

// BrowserFetcher renders pages through headless Chrome. The storefronts
// build their product tiles client-side, so a plain GET usually returns an
// empty shell.
type BrowserFetcher struct {
	browser   *rod.Browser
	stabilize time.Duration
}

// NewBrowserFetcher launches headless Chrome and connects to it.
// stabilize is the fixed wait applied after load-complete, because tiles
// may still be rendering when the load event fires.
func NewBrowserFetcher(stabilize time.Duration) (*BrowserFetcher, error) {
	u, err := launcher.New().
		Headless(true).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Launch()
	if err != nil {
		return nil, errs.NewConfiguration("failed to launch browser", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, errs.NewConfiguration("failed to connect to browser", err)
	}

	return &BrowserFetcher{browser: browser, stabilize: stabilize}, nil
}

// Open creates a background page for the URL. Navigation happens in
// AwaitLoad so the load timeout covers the whole page acquisition.
func (f *BrowserFetcher) Open(ctx context.Context, url string) (Handle, error) {
	p, err := f.browser.Page(proto.TargetCreateTarget{URL: "about:blank", Background: true})
	if err != nil {
		return nil, errs.NewExtractionUnavailable("", "failed to create browsing context", err)
	}
	return &browserHandle{page: p.Context(ctx), url: url, stabilize: f.stabilize}, nil
}

// Close shuts the browser down
func (f *BrowserFetcher) Close() error {
	if f.browser != nil {
		return f.browser.Close()
	}
	return nil
}

type browserHandle struct {
	page      *rod.Page
	url       string
	stabilize time.Duration
}

func (h *browserHandle) AwaitLoad(ctx context.Context, timeout time.Duration) (string, error) {
	p := h.page.Timeout(timeout)

	if err := p.Navigate(h.url); err != nil {
		return "", classifyLoadErr(err, timeout)
	}
	if err := p.WaitLoad(); err != nil {
		return "", classifyLoadErr(err, timeout)
	}

	// load-complete fired, but tiles may still be rendering
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(h.stabilize):
	}

	html, err := h.page.HTML()
	if err != nil {
		return "", errs.NewExtractionUnavailable("", "failed to read page content", err)
	}
	return html, nil
}

func (h *browserHandle) Close() error {
	return h.page.Close()
}

func classifyLoadErr(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.NewFetchTimeout("", timeout, err)
	}
	return errs.NewExtractionUnavailable("", "page navigation failed", err)
}
