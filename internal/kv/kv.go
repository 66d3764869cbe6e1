// Package kv defines the key-value store the stopwatch manager persists into.
package kv

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Store is an asynchronous key-value store. Values are opaque bytes
// (JSON in practice).
//
// Get returns only the keys that exist; a nil keys slice returns every key.
// A missing key is not an error.
type Store interface {
	Get(ctx context.Context, keys []string) (map[string][]byte, error)
	Set(ctx context.Context, items map[string][]byte) error
	Remove(ctx context.Context, keys []string) error
	Clear(ctx context.Context) error
}

// Memory is an in-process Store. The zero value is ready to use.
type Memory struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if keys == nil {
		keys = slices.Collect(maps.Keys(m.items))
	}
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.items[k]; ok {
			out[k] = slices.Clone(v)
		}
	}
	return out, nil
}

// Set implements Store.
func (m *Memory) Set(ctx context.Context, items map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.items == nil {
		m.items = make(map[string][]byte, len(items))
	}
	for k, v := range items {
		m.items[k] = slices.Clone(v)
	}
	return nil
}

// Remove implements Store.
func (m *Memory) Remove(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

// Clear implements Store.
func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.items)
	return nil
}
