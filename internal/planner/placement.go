package planner

import (
	"sort"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/ghfacilities/query-engine/internal/geospatial"
)

const (
	placementGridStepDeg = 0.3
	placementTopN        = 10
)

// NewFacilityPlacement lays a 0.3-degree grid over Ghana's bounding box
// and, for each grid point, computes the distance to the nearest facility
// offering specialty (or any facility if specialty is empty). The 10
// points farthest from existing coverage are returned as placement
// candidates, prioritized by how underserved they are.
func NewFacilityPlacement(store *corpus.Store, specialty domain.Specialty) domain.PlacementResult {
	var existing []*domain.Facility
	if specialty == "" {
		existing = store.All()
	} else {
		existing = store.BySpecialty(specialty)
	}

	type coord struct{ lat, lng float64 }
	coords := make([]coord, 0, len(existing))
	for _, f := range existing {
		if f.ValidCoordinates() {
			coords = append(coords, coord{f.Latitude, f.Longitude})
		}
	}

	var candidates []domain.PlacementCandidate
	for lat := domain.MinLat; lat <= domain.MaxLat; lat += placementGridStepDeg {
		for lng := domain.MinLng; lng <= domain.MaxLng; lng += placementGridStepDeg {
			best := -1.0
			for _, c := range coords {
				d := geospatial.HaversineBetween(lat, lng, c.lat, c.lng)
				if best < 0 || d < best {
					best = d
				}
			}
			if best < 0 {
				continue
			}
			candidates = append(candidates, domain.PlacementCandidate{
				Lat: lat, Lng: lng, DistanceKm: best, Priority: placementPriority(best),
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].DistanceKm > candidates[j].DistanceKm })
	if len(candidates) > placementTopN {
		candidates = candidates[:placementTopN]
	}

	return domain.PlacementResult{Placements: candidates, Specialty: string(specialty)}
}

func placementPriority(distanceKm float64) string {
	switch {
	case distanceKm > 100:
		return "critical"
	case distanceKm > 50:
		return "high"
	default:
		return "medium"
	}
}
