package scrape

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dealwatch/groceryworker/internal/extract"
	"dealwatch/groceryworker/internal/store"
	errs "dealwatch/groceryworker/pkg/errors"
)

const milkPage = `<html><body>
	<div data-testid="product-tile">
		<h3 data-testid="product-title">Full Cream Milk 2L</h3>
		<span data-testid="price-current">$3.50</span>
		<a href="/product/milk-2l">view</a>
	</div>
</body></html>`

func colesClient(t *testing.T, timeout time.Duration) *PageClient {
	t.Helper()
	reg, err := store.NewRegistry()
	assert.NoError(t, err)
	profile, err := reg.Get(store.Coles)
	assert.NoError(t, err)
	return NewPageClient(milkPage, profile, extract.New(), timeout)
}

func TestPageClientPing(t *testing.T) {
	client := colesClient(t, time.Second)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestPageClientScrapeDeals(t *testing.T) {
	client := colesClient(t, time.Second)

	deals, err := client.ScrapeDeals(context.Background(), store.Coles, "milk")
	assert.NoError(t, err)
	assert.Len(t, deals, 1)
	assert.Equal(t, "Full Cream Milk 2L", deals[0].Title)
	assert.Equal(t, "$3.50", deals[0].Price)
}

func TestPageClientEmptyPageIsNotAnError(t *testing.T) {
	reg, _ := store.NewRegistry()
	profile, _ := reg.Get(store.Coles)
	client := NewPageClient("<html><body></body></html>", profile, extract.New(), time.Second)

	deals, err := client.ScrapeDeals(context.Background(), store.Coles, "milk")
	assert.NoError(t, err)
	assert.Empty(t, deals)
}

func TestPageClientRejectsWrongStore(t *testing.T) {
	client := colesClient(t, time.Second)

	_, err := client.ScrapeDeals(context.Background(), store.Aldi, "milk")
	assert.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeValidation))
}

func TestPageClientCancelledContext(t *testing.T) {
	client := colesClient(t, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// a dead context surfaces as a communication failure, not a hang
	err := client.Ping(ctx)
	if err != nil {
		assert.True(t, errs.IsType(err, errs.ErrorTypeCommunication))
	}
}
