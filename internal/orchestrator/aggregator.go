package orchestrator

import "github.com/ghfacilities/query-engine/internal/domain"

// aggregate walks every agent result's FacilitiesForMap() projection,
// deduplicating by facility id, and builds the per-agent citation list
// each map point implies (one citation per facility id surfaced, citing
// the field that produced it).
func aggregate(results map[domain.AgentName]domain.AgentResult) ([]domain.MapPoint, map[domain.AgentName][]domain.Citation) {
	seen := make(map[string]bool)
	var points []domain.MapPoint
	citations := make(map[domain.AgentName][]domain.Citation, len(results))

	for name, result := range results {
		result := result
		for _, p := range result.FacilitiesForMap() {
			citations[name] = append(citations[name], domain.Citation{
				FacilityID: p.FacilityID, Field: result.Action, Confidence: 1.0,
			})
			if seen[p.FacilityID] {
				continue
			}
			seen[p.FacilityID] = true
			points = append(points, p)
		}
	}
	return points, citations
}
