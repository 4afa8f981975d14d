// Package cache implements the cache port with an in-process L1
// (ristretto), a remote L2 (NATS JetStream KV) and a tiered combination
// of the two. The gateway caches board and tracker listings to keep
// repeated dry-run previews from hammering the integrations.
package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Memory wraps a ristretto cache as an in-process L1 cache.
type Memory struct {
	c *ristretto.Cache[string, []byte]
}

// NewMemory creates a ristretto-backed cache. maxCostBytes is the maximum
// total size of cached values in bytes.
func NewMemory(maxCostBytes int64) (*Memory, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10, // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Memory{c: c}, nil
}

// Get retrieves a value from the cache.
func (m *Memory) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	val, found := m.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores a value in the cache with the given TTL.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.c.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

// Delete removes a value from the cache.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Del(key)
	return nil
}

// Wait blocks until buffered writes have been applied. Ristretto admits
// sets through an async buffer, so a read immediately after Set may miss.
func (m *Memory) Wait() {
	m.c.Wait()
}

// Close shuts down the cache and releases resources.
func (m *Memory) Close() {
	m.c.Close()
}
