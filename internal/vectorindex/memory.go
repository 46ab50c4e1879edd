package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"
)

type memoryPoint struct {
	vectors  map[string][]float32
	metadata map[string]string
}

// memoryIndex is an in-process cosine-similarity Index, used when no Qdrant
// endpoint is configured (local development, tests).
type memoryIndex struct {
	mu          sync.RWMutex
	collections map[string]map[string]memoryPoint // collection -> id -> point
}

// NewMemory builds an in-memory Index.
func NewMemory() Index {
	return &memoryIndex{collections: make(map[string]map[string]memoryPoint)}
}

func (m *memoryIndex) EnsureCollection(_ context.Context, collection string, _ []string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection]; !ok {
		m.collections[collection] = make(map[string]memoryPoint)
	}
	return nil
}

func (m *memoryIndex) Upsert(_ context.Context, collection, id string, vectors map[string][]float32, metadata map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	points, ok := m.collections[collection]
	if !ok {
		points = make(map[string]memoryPoint)
		m.collections[collection] = points
	}
	vcopy := make(map[string][]float32, len(vectors))
	for name, v := range vectors {
		cp := make([]float32, len(v))
		copy(cp, v)
		vcopy[name] = cp
	}
	points[id] = memoryPoint{vectors: vcopy, metadata: copyMetadata(metadata)}
	return nil
}

func (m *memoryIndex) Search(_ context.Context, collection, vectorName string, query []float32, filter map[string]string, k int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 {
		k = 10
	}

	points := m.collections[collection]
	qnorm := norm(query)
	hits := make([]Hit, 0, len(points))
	for id, p := range points {
		v, ok := p.vectors[vectorName]
		if !ok || !matchesFilter(p.metadata, filter) {
			continue
		}
		score := cosine(query, v, qnorm)
		hits = append(hits, Hit{ID: id, Score: score, Metadata: copyMetadata(p.metadata)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *memoryIndex) Healthy(_ context.Context) error { return nil }
func (m *memoryIndex) Close() error                    { return nil }

func copyMetadata(md map[string]string) map[string]string {
	out := make(map[string]string, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}

func matchesFilter(md, filter map[string]string) bool {
	if len(filter) == 0 {
		return true
	}
	for k, v := range filter {
		if md[k] != v {
			return false
		}
	}
	return true
}

func norm(a []float32) float64 {
	var s float64
	for _, x := range a {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var s float64
	for i := 0; i < n; i++ {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func cosine(a, b []float32, anorm float64) float64 {
	if anorm == 0 {
		anorm = norm(a)
	}
	bnorm := norm(b)
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	return dot(a, b) / (anorm * bnorm)
}
