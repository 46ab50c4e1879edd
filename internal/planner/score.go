// Package planner answers facility placement and routing questions:
// capability scoring, emergency routing, specialist deployment tours,
// equipment distribution, new-facility siting, and capacity planning.
package planner

import "github.com/ghfacilities/query-engine/internal/domain"

// accraLat, accraLng anchor the specialist deployment tour's starting point.
const (
	accraLat = 5.6037
	accraLng = -0.1870

	ghanaCentroidLat = 7.9465
	ghanaCentroidLng = -1.0232
)

// capabilityScore rates a facility 0-100 for how well it can serve a
// requested specialty.
func capabilityScore(f *domain.Facility, specialty domain.Specialty) float64 {
	score := 20.0
	if specialty != "" && f.HasSpecialty(specialty) {
		score += 35
	}
	if f.HasCapability("ICU") || f.HasCapability("operating_theater") {
		score += 20
	}
	if f.Capacity > 20 {
		score += 10
	}
	if f.Doctors > 0 {
		score += 10
	}
	if f.HasEquipment("CT") || f.HasEquipment("MRI") || f.HasEquipment("scanner") {
		score += 5
	}
	return score
}
