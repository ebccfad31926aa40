package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/lugondev/go-carbon-dex/internal/metrics"
)

// Collector is a processor that keeps every input it is given.
// It is safe for concurrent use.
type Collector[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewCollector creates an empty Collector.
func NewCollector[T any]() *Collector[T] {
	return &Collector[T]{}
}

func (c *Collector[T]) Process(_ context.Context, data T, _ *metrics.Collection) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, data)
	return nil
}

// Items returns a copy of the inputs in arrival order.
func (c *Collector[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Collector[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
