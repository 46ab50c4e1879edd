// Package vectorindex provides a named-vector similarity search client, the
// storage backend the semantic searcher's RRF fusion queries per vector
// template.
package vectorindex

import "context"

// Hit is a single similarity search result.
type Hit struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// Index is a named-vector collection store: each point can carry several
// independently-searchable vectors (e.g. full_document, clinical_detail,
// specialties_context), matching the corpus's multi-vector representation.
type Index interface {
	// EnsureCollection creates the collection if it does not already exist,
	// with one configured vector per name in vectorNames, all of dimension
	// dim.
	EnsureCollection(ctx context.Context, collection string, vectorNames []string, dim int) error

	// Upsert writes or replaces the point for id, with one vector per
	// named entry in vectors.
	Upsert(ctx context.Context, collection, id string, vectors map[string][]float32, metadata map[string]string) error

	// Search returns the top k nearest points to query under the named
	// vector, restricted to points whose metadata matches every entry in
	// filter.
	Search(ctx context.Context, collection, vectorName string, query []float32, filter map[string]string, k int) ([]Hit, error)

	// Healthy reports whether the backend is reachable.
	Healthy(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
