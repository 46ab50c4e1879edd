package search

import (
	"sort"

	"github.com/ghfacilities/query-engine/internal/vectorindex"
)

// fuseRRF accumulates weighted reciprocal-rank scores across named-vector
// hit lists and returns them sorted by score descending, ties broken by id.
func fuseRRF(hitsByVector map[string][]vectorindex.Hit, weights map[string]float64) []scoredID {
	acc := map[string]float64{}
	for vectorName, hits := range hitsByVector {
		w := weights[vectorName]
		if w == 0 {
			continue
		}
		for rank, h := range hits {
			acc[h.ID] += w / float64(rrfK+rank+1)
		}
	}

	out := make([]scoredID, 0, len(acc))
	for id, score := range acc {
		out = append(out, scoredID{id: id, score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].id < out[j].id
	})
	return out
}

type scoredID struct {
	id    string
	score float64
}

// displayScore normalizes an RRF score into [0,1] for UI presentation.
func displayScore(rrfScore float64) float64 {
	d := rrfScore * 100
	if d > 1 {
		return 1
	}
	return d
}
