package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// ResponseCache memoizes Chat responses by request fingerprint, sparing the
// classifier's LLM fallback and the aggregator's summarization step a round
// trip when an identical request repeats within the TTL.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// FingerprintRequest derives a stable cache key from a chat request's
// inputs, so repeat queries against a fixed corpus hit cache.
func FingerprintRequest(model string, messages []Message, maxTokens int, temperature float64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%.3f", model, maxTokens, temperature)
	for _, m := range messages {
		h.Write([]byte("|"))
		h.Write([]byte(m.Role))
		h.Write([]byte(":"))
		h.Write([]byte(m.Content))
	}
	return "llmcache:" + hex.EncodeToString(h.Sum(nil))
}

// RedisResponseCache is a Redis-backed ResponseCache.
type RedisResponseCache struct {
	client *redis.Client
}

// NewRedisResponseCache dials addr (e.g. "localhost:6379") and verifies the
// connection with a ping.
func NewRedisResponseCache(addr string) (*RedisResponseCache, error) {
	c := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisResponseCache{client: c}, nil
}

// Get returns the cached value for key, or ok=false on a cache miss.
func (r *RedisResponseCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value under key with the given TTL.
func (r *RedisResponseCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the underlying Redis connection.
func (r *RedisResponseCache) Close() error { return r.client.Close() }

// CachingProvider wraps a Provider with a ResponseCache, short-circuiting
// identical requests within ttl.
type CachingProvider struct {
	inner Provider
	cache ResponseCache
	model string
	ttl   time.Duration
}

// NewCachingProvider wraps inner with cache, tagging fingerprints with model
// so switching backends never serves a stale cross-model response.
func NewCachingProvider(inner Provider, cache ResponseCache, model string, ttl time.Duration) *CachingProvider {
	return &CachingProvider{inner: inner, cache: cache, model: model, ttl: ttl}
}

func (p *CachingProvider) Chat(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error) {
	key := FingerprintRequest(p.model, messages, maxTokens, temperature)
	if cached, ok, err := p.cache.Get(ctx, key); err == nil && ok {
		return cached, nil
	}

	out, err := p.inner.Chat(ctx, messages, maxTokens, temperature)
	if err != nil {
		return "", err
	}
	_ = p.cache.Set(ctx, key, out, p.ttl)
	return out, nil
}
