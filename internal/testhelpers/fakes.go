// Package testhelpers provides small test doubles shared across the agent
// and orchestrator test suites.
package testhelpers

import (
	"context"
	"sync"
	"time"

	"github.com/ghfacilities/query-engine/internal/llm"
)

// FakeProvider is a fixed-response LLM provider for tests.
type FakeProvider struct {
	Resp string
	Err  error

	mu    sync.Mutex
	Calls int
}

func (f *FakeProvider) Chat(_ context.Context, _ []llm.Message, _ int, _ float64) (string, error) {
	f.mu.Lock()
	f.Calls++
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Resp, nil
}

// MemoryResponseCache is an in-process llm.ResponseCache for tests, so cache
// behavior can be exercised without a Redis instance.
type MemoryResponseCache struct {
	mu    sync.Mutex
	store map[string]string
}

// NewMemoryResponseCache builds an empty MemoryResponseCache.
func NewMemoryResponseCache() *MemoryResponseCache {
	return &MemoryResponseCache{store: make(map[string]string)}
}

func (c *MemoryResponseCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	return v, ok, nil
}

func (c *MemoryResponseCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
	return nil
}
