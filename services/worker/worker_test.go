package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealwatch/groceryworker/internal/deal"
	"dealwatch/groceryworker/services/storage"
)

// MockScanner implements the Scanner interface for testing
type MockScanner struct {
	mu      sync.Mutex
	calls   [][]deal.GroceryItem
	results []deal.SearchResult
}

var _ Scanner = (*MockScanner)(nil)

func (m *MockScanner) Run(ctx context.Context, items []deal.GroceryItem) []deal.SearchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, items)
	return m.results
}

func (m *MockScanner) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func TestWorkerRunScan(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	_, err := mem.AddItem(ctx, "Milk", "milk")
	require.NoError(t, err)

	scanner := &MockScanner{results: []deal.SearchResult{{
		SearchTerm: "milk",
		Deals:      []deal.Deal{{ID: "d1", Title: "Full Cream Milk 2L", Price: "$3.50"}},
	}}}

	w := NewWorker(ctx, scanner, mem, time.Second)
	w.runScan()

	require.Equal(t, 1, scanner.callCount())
	assert.Equal(t, "milk", scanner.calls[0][0].SearchTerm)
}

func TestWorkerSkipsScanWithoutItems(t *testing.T) {
	ctx := context.Background()
	scanner := &MockScanner{}

	w := NewWorker(ctx, scanner, storage.NewMemoryStorage(), time.Second)
	w.runScan()

	assert.Equal(t, 0, scanner.callCount())
}

func TestWorkerStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mem := storage.NewMemoryStorage()
	_, err := mem.AddItem(ctx, "Milk", "milk")
	require.NoError(t, err)

	scanner := &MockScanner{}
	w := NewWorker(ctx, scanner, mem, time.Hour)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	// let the first pass run, then cancel during the interval sleep
	assert.Eventually(t, func() bool { return scanner.callCount() >= 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
	assert.Equal(t, 1, scanner.callCount())
}
