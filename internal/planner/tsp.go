package planner

import (
	"math"
	"sort"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/ghfacilities/query-engine/internal/geospatial"
)

const (
	defaultMaxStops = 8
	twoOptEpsilon   = 1e-9
	twoOptMaxPasses = 1000
)

type tourStop struct {
	facility *domain.Facility
	lat      float64
	lng      float64
}

// SpecialistDeploymentTour filters facilities by specialty, keeps the
// top maxStops by capability score, and routes a visiting specialist
// through them starting from Accra via greedy nearest-neighbour
// construction refined by 2-opt local search.
func SpecialistDeploymentTour(store *corpus.Store, specialty domain.Specialty, maxStops int) domain.TourResult {
	if maxStops <= 0 {
		maxStops = defaultMaxStops
	}

	candidates := store.BySpecialty(specialty)
	ranked := make([]*domain.Facility, 0, len(candidates))
	for _, f := range candidates {
		if f.ValidCoordinates() {
			ranked = append(ranked, f)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		return capabilityScore(ranked[i], specialty) > capabilityScore(ranked[j], specialty)
	})
	if len(ranked) > maxStops {
		ranked = ranked[:maxStops]
	}

	stops := make([]tourStop, 0, len(ranked)+1)
	stops = append(stops, tourStop{lat: accraLat, lng: accraLng})
	for _, f := range ranked {
		stops = append(stops, tourStop{facility: f, lat: f.Latitude, lng: f.Longitude})
	}
	if len(stops) <= 1 {
		return domain.TourResult{}
	}

	dist := buildDistanceMatrix(stops)
	order := greedyNearestNeighbour(dist)
	greedyLen := tourLength(order, dist)

	order = twoOpt(order, dist)
	finalLen := tourLength(order, dist)

	result := domain.TourResult{GreedyInitDistance: greedyLen, FinalDistance: finalLen}
	for _, idx := range order {
		s := stops[idx]
		if s.facility == nil {
			result.Stops = append(result.Stops, domain.MapPoint{Name: "Accra (start)", Latitude: accraLat, Longitude: accraLng})
			continue
		}
		result.Stops = append(result.Stops, domain.MapPoint{
			FacilityID: s.facility.ID, Name: s.facility.Name,
			Latitude: s.facility.Latitude, Longitude: s.facility.Longitude,
		})
	}
	return result
}

func buildDistanceMatrix(stops []tourStop) [][]float64 {
	n := len(stops)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := geospatial.HaversineBetween(stops[i].lat, stops[i].lng, stops[j].lat, stops[j].lng)
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}

// greedyNearestNeighbour builds an initial tour starting at index 0 (Accra),
// always stepping to the nearest unvisited stop.
func greedyNearestNeighbour(dist [][]float64) []int {
	n := len(dist)
	visited := make([]bool, n)
	order := make([]int, 0, n)
	cur := 0
	visited[0] = true
	order = append(order, 0)
	for len(order) < n {
		best, bestDist := -1, math.Inf(1)
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if dist[cur][j] < bestDist {
				best, bestDist = j, dist[cur][j]
			}
		}
		visited[best] = true
		order = append(order, best)
		cur = best
	}
	return order
}

func tourLength(order []int, dist [][]float64) float64 {
	total := 0.0
	for i := 0; i+1 < len(order); i++ {
		total += dist[order[i]][order[i+1]]
	}
	return total
}

// twoOpt repeatedly reverses segments [i..j] (j > i+1) when doing so
// shortens the tour by more than epsilon, stopping after a full pass with
// no improvement or after twoOptMaxPasses passes.
func twoOpt(order []int, dist [][]float64) []int {
	n := len(order)
	improved := true
	for pass := 0; pass < twoOptMaxPasses && improved; pass++ {
		improved = false
		for i := 0; i < n-2; i++ {
			for j := i + 2; j < n; j++ {
				var before, after float64
				if j == n-1 {
					before = dist[order[i]][order[i+1]]
					after = dist[order[i]][order[j]]
				} else {
					before = dist[order[i]][order[i+1]] + dist[order[j]][order[j+1]]
					after = dist[order[i]][order[j]] + dist[order[i+1]][order[j+1]]
				}
				if before-after > twoOptEpsilon {
					reverseSegment(order, i+1, j)
					improved = true
				}
			}
		}
	}
	return order
}

func reverseSegment(order []int, i, j int) {
	for i < j {
		order[i], order[j] = order[j], order[i]
		i++
		j--
	}
}
