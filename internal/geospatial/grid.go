package geospatial

import (
	"sort"

	"github.com/ghfacilities/query-engine/internal/domain"
)

const (
	gridStepDeg        = 0.25
	coldSpotCap        = 15
	coldSpotThresholdKm = 55.0
	desertThresholdKm  = 75.0
)

// ghanaRegions are the 16 administrative regions, geocoded against the
// gazetteer to approximate a centroid for each.
var ghanaRegions = []string{
	"Greater Accra", "Ashanti", "Western", "Western North", "Central",
	"Eastern", "Volta", "Oti", "Northern", "North East", "Savannah",
	"Upper East", "Upper West", "Bono", "Bono East", "Ahafo",
}

// CoverageGaps lays a 0.25-degree grid over Ghana's bounding box and, for
// each cell, finds the distance to the nearest specialty-offering facility.
// Cells whose nearest facility exceeds thresholdKm are cold spots; the 15
// most under-served cells are returned.
func (idx *Index) CoverageGaps(specialty domain.Specialty, thresholdKm float64) domain.CoverageGapResult {
	if thresholdKm <= 0 {
		thresholdKm = coldSpotThresholdKm
	}
	pts := idx.subTree(specialty)

	var coldSpots []domain.ColdSpot
	for lat := domain.MinLat; lat <= domain.MaxLat; lat += gridStepDeg {
		for lng := domain.MinLng; lng <= domain.MaxLng; lng += gridStepDeg {
			d := nearestDistance(lat, lng, pts)
			if d < 0 || d <= thresholdKm {
				continue
			}
			coldSpots = append(coldSpots, domain.ColdSpot{Lat: lat, Lng: lng, DistanceKm: d})
		}
	}
	sort.Slice(coldSpots, func(i, j int) bool { return coldSpots[i].DistanceKm > coldSpots[j].DistanceKm })
	if len(coldSpots) > coldSpotCap {
		coldSpots = coldSpots[:coldSpotCap]
	}

	return domain.CoverageGapResult{
		ColdSpots: coldSpots,
		Specialty: string(specialty),
		Method:    "grid_scan",
	}
}

// MedicalDeserts geocodes each of Ghana's 16 regions as a centroid and
// reports the distance from that centroid to the nearest specialty-offering
// facility, with severity critical (>150km), high (>100km), or medium
// (>75km, the default threshold).
func (idx *Index) MedicalDeserts(specialty domain.Specialty, thresholdKm float64) domain.CoverageGapResult {
	if thresholdKm <= 0 {
		thresholdKm = desertThresholdKm
	}
	pts := idx.subTree(specialty)

	var deserts []domain.MedicalDesert
	for _, region := range ghanaRegions {
		coord, ok := idx.gazetteer.Geocode(region)
		if !ok {
			continue
		}
		d := nearestDistance(coord.Lat, coord.Lng, pts)
		if d < 0 || d <= thresholdKm {
			continue
		}
		severity := "medium"
		switch {
		case d > 150:
			severity = "critical"
		case d > 100:
			severity = "high"
		}
		deserts = append(deserts, domain.MedicalDesert{Region: region, DistanceKm: d, Severity: severity})
	}
	sort.Slice(deserts, func(i, j int) bool { return deserts[i].DistanceKm > deserts[j].DistanceKm })

	return domain.CoverageGapResult{
		Deserts:   deserts,
		Specialty: string(specialty),
		Method:    "region_centroid_distance",
	}
}
