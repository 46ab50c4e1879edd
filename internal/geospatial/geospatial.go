// Package geospatial answers distance and density questions over facility
// coordinates: radius/k-NN queries, coverage-gap grid scans, medical-desert
// detection, regional equity, and city-to-city distance.
package geospatial

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ghfacilities/query-engine/internal/apperr"
	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/ghfacilities/query-engine/internal/geocoder"
)

// EarthRadiusKm is the sphere radius used for all Haversine distances.
const EarthRadiusKm = 6371.0

// radiusSearchCap bounds how many hits a radius query returns.
const radiusSearchCap = 30

// point is one indexed facility with validated coordinates.
type point struct {
	facility *domain.Facility
	latRad   float64
	lngRad   float64
}

// Index is the geospatial analyst's spatial index. Despite the name it is
// a flat, linear-scan index rather than a literal ball-tree: at the
// corpus's scale (~800 points) a scan costs microseconds, and specialty
// sub-trees are just filtered slices built once and cached.
type Index struct {
	points []point

	mu            sync.Mutex
	bySpecialty   map[domain.Specialty][]point
	gazetteer     *geocoder.Gazetteer
}

// New builds an Index from every facility with valid coordinates.
func New(facilities []*domain.Facility, gaz *geocoder.Gazetteer) *Index {
	idx := &Index{
		bySpecialty: make(map[domain.Specialty][]point),
		gazetteer:   gaz,
	}
	for _, f := range facilities {
		if !f.ValidCoordinates() {
			continue
		}
		idx.points = append(idx.points, point{
			facility: f,
			latRad:   toRadians(f.Latitude),
			lngRad:   toRadians(f.Longitude),
		})
	}
	return idx
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// HaversineBetween returns the great-circle distance in km between two
// (lat, lng) points given in degrees. Exported for the planner's tour
// distance matrix, which needs the same metric outside of an Index.
func HaversineBetween(lat1, lng1, lat2, lng2 float64) float64 {
	return haversineKm(toRadians(lat1), toRadians(lng1), toRadians(lat2), toRadians(lng2))
}

// haversineKm returns the great-circle distance between two points given
// in radians.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := lat2 - lat1
	dLng := lng2 - lng1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// subTree returns the cached, specialty-filtered point slice, building it
// at most once per specialty (guarded by mu: an at-most-once init lock;
// reads of an already-built slice need no further synchronization since
// the slice is never mutated after creation).
func (idx *Index) subTree(specialty domain.Specialty) []point {
	if specialty == "" {
		return idx.points
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if cached, ok := idx.bySpecialty[specialty]; ok {
		return cached
	}
	var filtered []point
	for _, p := range idx.points {
		if p.facility.HasSpecialty(specialty) {
			filtered = append(filtered, p)
		}
	}
	idx.bySpecialty[specialty] = filtered
	return filtered
}

// Radius returns every facility within radiusKm of center, sorted by
// distance ascending, capped at 30 results.
func (idx *Index) Radius(centerLat, centerLng, radiusKm float64, specialty domain.Specialty) domain.RadiusSearchResult {
	centerLatR, centerLngR := toRadians(centerLat), toRadians(centerLng)
	pts := idx.subTree(specialty)

	var results []domain.ScoredFacility
	for _, p := range pts {
		d := haversineKm(centerLatR, centerLngR, p.latRad, p.lngRad)
		if d <= radiusKm {
			results = append(results, domain.ScoredFacility{Facility: domain.Ref(p.facility), DistanceKm: d})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].DistanceKm < results[j].DistanceKm })
	if len(results) > radiusSearchCap {
		results = results[:radiusSearchCap]
	}

	return domain.RadiusSearchResult{
		Center:    [2]float64{centerLat, centerLng},
		RadiusKm:  radiusKm,
		Results:   results,
		Specialty: string(specialty),
	}
}

// Nearest returns the k closest facilities to center.
func (idx *Index) Nearest(centerLat, centerLng float64, k int, specialty domain.Specialty) []domain.ScoredFacility {
	centerLatR, centerLngR := toRadians(centerLat), toRadians(centerLng)
	pts := idx.subTree(specialty)

	results := make([]domain.ScoredFacility, 0, len(pts))
	for _, p := range pts {
		d := haversineKm(centerLatR, centerLngR, p.latRad, p.lngRad)
		results = append(results, domain.ScoredFacility{Facility: domain.Ref(p.facility), DistanceKm: d})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].DistanceKm < results[j].DistanceKm })
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// nearestDistance returns the distance in km to the single nearest point in
// pts, or -1 if pts is empty.
func nearestDistance(lat, lng float64, pts []point) float64 {
	if len(pts) == 0 {
		return -1
	}
	latR, lngR := toRadians(lat), toRadians(lng)
	best := math.Inf(1)
	for _, p := range pts {
		d := haversineKm(latR, lngR, p.latRad, p.lngRad)
		if d < best {
			best = d
		}
	}
	return best
}

// CityDistance geocodes two city names and returns the geodesic distance
// between them.
func (idx *Index) CityDistance(fromCity, toCity string) (domain.DistanceQueryResult, error) {
	from, ok := idx.gazetteer.Geocode(fromCity)
	if !ok {
		return domain.DistanceQueryResult{}, fmt.Errorf("%w: %s", apperr.ErrUnknownLocation, fromCity)
	}
	to, ok := idx.gazetteer.Geocode(toCity)
	if !ok {
		return domain.DistanceQueryResult{}, fmt.Errorf("%w: %s", apperr.ErrUnknownLocation, toCity)
	}
	d := haversineKm(toRadians(from.Lat), toRadians(from.Lng), toRadians(to.Lat), toRadians(to.Lng))
	return domain.DistanceQueryResult{FromCity: fromCity, ToCity: toCity, DistanceKm: d}, nil
}
