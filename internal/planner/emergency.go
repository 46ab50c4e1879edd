package planner

import (
	"sort"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/ghfacilities/query-engine/internal/geocoder"
	"github.com/ghfacilities/query-engine/internal/geospatial"
)

const emergencyRadiusKm = 100.0

// travelSpeedKmPerHour is the assumed road travel speed used to convert a
// radius-query distance into a minutes estimate.
const travelSpeedKmPerHour = 60.0

// EmergencyRoute geocodes patientLocation (falling back to the Ghana
// centroid if it cannot be resolved), finds every facility within 100km
// capable of serving specialty, scores and ranks them, and splits the
// ranking into primary/backup/alternatives.
func EmergencyRoute(index *geospatial.Index, store *corpus.Store, gaz *geocoder.Gazetteer, patientLocation string, specialty domain.Specialty) domain.EmergencyRouteResult {
	lat, lng := ghanaCentroidLat, ghanaCentroidLng
	if patientLocation != "" {
		if coord, ok := gaz.Geocode(patientLocation); ok {
			lat, lng = coord.Lat, coord.Lng
		}
	}

	radiusResult := index.Radius(lat, lng, emergencyRadiusKm, specialty)
	candidates := radiusResult.Results
	for i := range candidates {
		if f := store.Get(candidates[i].Facility.ID); f != nil {
			candidates[i].Score = capabilityScore(f, specialty)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].DistanceKm < candidates[j].DistanceKm
	})

	result := domain.EmergencyRouteResult{Candidates: candidates}
	if len(candidates) > 0 {
		p := mapPointFromRef(candidates[0].Facility)
		result.Primary = &p
		result.PrimaryScore = candidates[0].Score
		result.TravelTimeMinutes = candidates[0].DistanceKm / travelSpeedKmPerHour * 60
	}
	if len(candidates) > 1 {
		b := mapPointFromRef(candidates[1].Facility)
		result.Backup = &b
	}
	if len(candidates) > 2 {
		end := len(candidates)
		if end > 5 {
			end = 5
		}
		for _, c := range candidates[2:end] {
			result.Alternatives = append(result.Alternatives, mapPointFromRef(c.Facility))
		}
	}
	return result
}

func mapPointFromRef(f domain.FacilityRef) domain.MapPoint {
	return domain.MapPoint{FacilityID: f.ID, Name: f.Name, Latitude: f.Latitude, Longitude: f.Longitude}
}
