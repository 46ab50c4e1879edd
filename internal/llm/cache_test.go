package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct{ store map[string]string }

func newMemCache() *memCache { return &memCache{store: make(map[string]string)} }

func (m *memCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.store[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.store[key] = value
	return nil
}

type countingProvider struct{ calls int }

func (p *countingProvider) Chat(_ context.Context, _ []Message, _ int, _ float64) (string, error) {
	p.calls++
	return "answer", nil
}

func TestCachingProvider_HitAvoidsSecondCall(t *testing.T) {
	t.Parallel()
	inner := &countingProvider{}
	cache := newMemCache()
	p := NewCachingProvider(inner, cache, "model-x", time.Minute)

	msgs := []Message{{Role: "user", Content: "how many cardiology facilities in Ashanti?"}}
	out1, err := p.Chat(context.Background(), msgs, 256, 0.0)
	require.NoError(t, err)
	out2, err := p.Chat(context.Background(), msgs, 256, 0.0)
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
	assert.Equal(t, 1, inner.calls)
}

func TestFingerprintRequest_DiffersByModel(t *testing.T) {
	t.Parallel()
	msgs := []Message{{Role: "user", Content: "x"}}
	a := FingerprintRequest("model-a", msgs, 100, 0.2)
	b := FingerprintRequest("model-b", msgs, 100, 0.2)
	assert.NotEqual(t, a, b)
}

func TestFingerprintRequest_StableForSameInput(t *testing.T) {
	t.Parallel()
	msgs := []Message{{Role: "user", Content: "x"}}
	a := FingerprintRequest("model-a", msgs, 100, 0.2)
	b := FingerprintRequest("model-a", msgs, 100, 0.2)
	assert.Equal(t, a, b)
}
