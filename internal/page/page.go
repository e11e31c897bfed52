// Package page owns the browsing-context boundary: opening a rendered
// page for a URL, waiting for it to load, and exposing its content. The
// scheduler only sees these interfaces, so it can be tested against a
// fetcher that returns canned content.
package page

import (
	"context"
	"time"
)

// Handle is one exclusively-owned browsing context. It is created, used
// and closed within a single (store, item) fetch.
type Handle interface {
	// AwaitLoad blocks until the page signals load-complete, then waits a
	// fixed stabilization interval for late-rendering content before
	// returning the page HTML. Fails with a fetch-timeout error once the
	// budget elapses.
	AwaitLoad(ctx context.Context, timeout time.Duration) (string, error)

	// Close tears the browsing context down
	Close() error
}

// Fetcher acquires rendered pages
type Fetcher interface {
	// Open creates a non-foregrounded browsing context for the URL
	Open(ctx context.Context, url string) (Handle, error)

	// Close releases the underlying browser resources
	Close() error
}
