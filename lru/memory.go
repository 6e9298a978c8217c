// Package lru provides an in-process read-through cache in front of a
// selector memory.
package lru

import (
	"context"

	hlru "github.com/hashicorp/golang-lru/v2"

	"github.com/fwojciec/harvest"
)

// DefaultSize is the default number of cached descriptors.
const DefaultSize = 512

// Ensure Memory implements harvest.SelectorMemory at compile time.
var _ harvest.SelectorMemory = (*Memory)(nil)

// Memory caches descriptors from a backing SelectorMemory so repeated
// recalls for the same site skip the store. Writes go through to the
// backing store before the cache is updated.
type Memory struct {
	next  harvest.SelectorMemory
	cache *hlru.Cache[string, harvest.ContainerDescriptor]
}

// NewMemory creates a caching wrapper around next. A size of zero uses
// DefaultSize.
func NewMemory(next harvest.SelectorMemory, size int) (*Memory, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := hlru.New[string, harvest.ContainerDescriptor](size)
	if err != nil {
		return nil, err
	}
	return &Memory{next: next, cache: cache}, nil
}

// Remember stores the descriptor and refreshes the cache entry.
func (m *Memory) Remember(ctx context.Context, d *harvest.ContainerDescriptor) error {
	if err := m.next.Remember(ctx, d); err != nil {
		return err
	}
	m.cache.Add(d.SiteKey, *d)
	return nil
}

// Recall returns the cached descriptor or reads through to the store.
func (m *Memory) Recall(ctx context.Context, siteKey string) (*harvest.ContainerDescriptor, error) {
	if d, ok := m.cache.Get(siteKey); ok {
		return &d, nil
	}
	d, err := m.next.Recall(ctx, siteKey)
	if err != nil {
		return nil, err
	}
	m.cache.Add(siteKey, *d)
	return d, nil
}

// Forget removes the descriptor from the store and the cache.
func (m *Memory) Forget(ctx context.Context, siteKey string) error {
	m.cache.Remove(siteKey)
	return m.next.Forget(ctx, siteKey)
}

// List delegates to the backing store; listings are rare and must not
// miss entries evicted from the cache.
func (m *Memory) List(ctx context.Context) ([]*harvest.ContainerDescriptor, error) {
	return m.next.List(ctx)
}
