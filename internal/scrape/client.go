// Package scrape defines the message contract with a loaded page's
// extraction capability: a side-effect-free readiness ping and a
// scrapeDeals request. A round-trip that produces no response within the
// communication timeout is a failure distinct from an empty deal array.
package scrape

import (
	"context"
	"time"

	"dealwatch/groceryworker/internal/deal"
	"dealwatch/groceryworker/internal/extract"
	"dealwatch/groceryworker/internal/store"
	errs "dealwatch/groceryworker/pkg/errors"
)

// Action names a capability request
type Action string

const (
	// ActionPing probes readiness without side effects
	ActionPing Action = "ping"
	// ActionScrapeDeals asks the capability to extract deals for a term
	ActionScrapeDeals Action = "scrapeDeals"
)

// Request is a typed message to the extraction capability
type Request struct {
	Action     Action    `json:"action"`
	Store      store.Key `json:"store,omitempty"`
	SearchTerm string    `json:"searchTerm,omitempty"`
}

// Response is the capability's reply
type Response struct {
	Success bool        `json:"success"`
	Deals   []deal.Deal `json:"deals,omitempty"`
}

// Client talks to the extraction capability of one loaded page
type Client interface {
	Ping(ctx context.Context) error
	ScrapeDeals(ctx context.Context, key store.Key, searchTerm string) ([]deal.Deal, error)
}

// PageClient binds the capability to one page's content. Requests run the
// extractor against that content and are bounded by the communication
// timeout.
type PageClient struct {
	html      string
	profile   *store.Profile
	extractor *extract.Extractor
	timeout   time.Duration
}

// NewPageClient creates a client for one loaded page
func NewPageClient(html string, profile *store.Profile, extractor *extract.Extractor, timeout time.Duration) *PageClient {
	return &PageClient{
		html:      html,
		profile:   profile,
		extractor: extractor,
		timeout:   timeout,
	}
}

// Ping probes the capability
func (c *PageClient) Ping(ctx context.Context) error {
	resp, err := c.send(ctx, Request{Action: ActionPing})
	if err != nil {
		return err
	}
	if !resp.Success {
		return errs.NewExtractionUnavailable(string(c.profile.Key), "capability reported not ready", nil)
	}
	return nil
}

// ScrapeDeals requests extraction for a search term
func (c *PageClient) ScrapeDeals(ctx context.Context, key store.Key, searchTerm string) ([]deal.Deal, error) {
	if key != c.profile.Key {
		return nil, errs.NewValidation(string(key), "client is bound to store "+string(c.profile.Key))
	}
	resp, err := c.send(ctx, Request{Action: ActionScrapeDeals, Store: key, SearchTerm: searchTerm})
	if err != nil {
		return nil, err
	}
	return resp.Deals, nil
}

func (c *PageClient) send(ctx context.Context, req Request) (*Response, error) {
	respCh := make(chan *Response, 1)
	errCh := make(chan error, 1)

	go func() {
		switch req.Action {
		case ActionPing:
			respCh <- &Response{Success: true}
		case ActionScrapeDeals:
			deals, err := c.extractor.Extract(c.html, c.profile, req.SearchTerm)
			if err != nil {
				errCh <- err
				return
			}
			respCh <- &Response{Success: true, Deals: deals}
		default:
			errCh <- errs.NewValidation(string(c.profile.Key), "unknown action "+string(req.Action))
		}
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case resp := <-respCh:
		return resp, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, errs.NewCommunication(string(c.profile.Key), "request cancelled", ctx.Err())
	case <-timer.C:
		return nil, errs.NewCommunication(string(c.profile.Key), "no response within "+c.timeout.String(), nil)
	}
}
