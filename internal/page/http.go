package page

import (
	"context"
	"time"

	"dealwatch/groceryworker/helpers"
	errs "dealwatch/groceryworker/pkg/errors"
)

// HTTPFetcher acquires pages with a plain GET and browser-like headers.
// It sees only server-rendered markup, so it is a fallback for
// environments without a browser, not the default.
type HTTPFetcher struct{}

// NewHTTPFetcher creates an HTTP-based page fetcher
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{}
}

// Open returns a handle bound to the URL; the request itself is issued by
// AwaitLoad so the load timeout applies to it.
func (f *HTTPFetcher) Open(ctx context.Context, url string) (Handle, error) {
	return &httpHandle{url: url}, nil
}

// Close is a no-op; the shared HTTP client needs no teardown
func (f *HTTPFetcher) Close() error {
	return nil
}

type httpHandle struct {
	url string
}

func (h *httpHandle) AwaitLoad(ctx context.Context, timeout time.Duration) (string, error) {
	type fetched struct {
		body string
		err  error
	}
	done := make(chan fetched, 1)
	go func() {
		body, err := helpers.FetchPage(h.url)
		done <- fetched{body, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case f := <-done:
		return f.body, f.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", errs.NewFetchTimeout("", timeout, nil)
	}
}

func (h *httpHandle) Close() error {
	return nil
}
