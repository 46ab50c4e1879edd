package search

import (
	"context"
	"fmt"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/ghfacilities/query-engine/internal/embedding"
	"github.com/ghfacilities/query-engine/internal/vectorindex"
)

// candidateMultiplier: each named vector is queried for 3K candidates
// before fusion, per the spec's oversampling rule.
const candidateMultiplier = 3

// Searcher runs the multi-vector RRF semantic search.
type Searcher struct {
	embedder   embedding.Embedder
	index      vectorindex.Index
	store      *corpus.Store
	collection string
}

// New builds a Searcher over the given vector index collection.
func New(embedder embedding.Embedder, index vectorindex.Index, store *corpus.Store, collection string) *Searcher {
	return &Searcher{embedder: embedder, index: index, store: store, collection: collection}
}

// Search performs the full pipeline: query-template embedding, weighted
// RRF fusion across the three named vectors, and projection into
// domain.SemanticHit results. k is the final result count (post-fusion).
func (s *Searcher) Search(ctx context.Context, query string, k int) (domain.SemanticSearchResult, error) {
	return s.search(ctx, query, k, buildFilter(query, s.store))
}

// SearchUnfiltered runs the same pipeline with no filter predicate, used by
// the orchestrator's self-correction retry when a filtered search returns
// no results.
func (s *Searcher) SearchUnfiltered(ctx context.Context, query string, k int) (domain.SemanticSearchResult, error) {
	return s.search(ctx, query, k, nil)
}

func (s *Searcher) search(ctx context.Context, query string, k int, filter map[string]string) (domain.SemanticSearchResult, error) {
	if k <= 0 {
		k = 30
	}
	weights := computeWeights(query)
	texts := buildQueryTexts(query)

	hitsByVector := make(map[string][]vectorindex.Hit, len(VectorNames))
	for _, vectorName := range VectorNames {
		qvec, err := embedding.Embed(ctx, s.embedder, texts[vectorName])
		if err != nil {
			return domain.SemanticSearchResult{}, fmt.Errorf("search: embedding %s query: %w", vectorName, err)
		}
		hits, err := s.index.Search(ctx, s.collection, vectorName, qvec, filter, k*candidateMultiplier)
		if err != nil {
			return domain.SemanticSearchResult{}, fmt.Errorf("search: querying %s: %w", vectorName, err)
		}
		hitsByVector[vectorName] = hits
	}

	fused := fuseRRF(hitsByVector, weights)
	if len(fused) > k {
		fused = fused[:k]
	}

	results := make([]domain.SemanticHit, 0, len(fused))
	for _, f := range fused {
		facility := s.store.Get(f.id)
		if facility == nil {
			continue
		}
		results = append(results, domain.SemanticHit{
			Facility: domain.Ref(facility),
			RRFScore: f.score,
			Display:  displayScore(f.score),
		})
	}

	return domain.SemanticSearchResult{
		Results:       results,
		SearchMethod:  "reciprocal_rank_fusion",
		VectorWeights: weights,
	}, nil
}
