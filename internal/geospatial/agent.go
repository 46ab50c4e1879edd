package geospatial

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
)

const defaultRadiusKm = 25.0

// radiusPattern extracts a "N km" / "N.N km" distance from a query, e.g.
// "hospitals within 30 km of Tamale".
var radiusPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*km`)

// Agent is the geospatial analyst wired into the orchestrator's agent
// registry.
type Agent struct {
	index *Index
	store *corpus.Store
}

// NewAgent wires an Agent over an already-built Index and the corpus it was
// built from (needed for city-name extraction).
func NewAgent(index *Index, store *corpus.Store) *Agent {
	return &Agent{index: index, store: store}
}

// Handle dispatches on intent to the matching geospatial query.
func (a *Agent) Handle(intent domain.Intent, query string) domain.AgentResult {
	specialty := corpus.ExtractSpecialty(query)

	switch intent {
	case domain.IntentDistanceQuery:
		return a.cityDistance(query)
	case domain.IntentCoverageGap:
		result := a.index.CoverageGaps(specialty, coldSpotThresholdKm)
		return domain.AgentResult{Agent: domain.AgentGeo, Action: "coverage_gaps", CoverageGap: &result}
	case domain.IntentMedicalDesert:
		result := a.index.MedicalDeserts(specialty, desertThresholdKm)
		return domain.AgentResult{Agent: domain.AgentGeo, Action: "medical_deserts", CoverageGap: &result}
	default:
		return a.radiusOrNearest(query, specialty)
	}
}

func (a *Agent) radiusOrNearest(query string, specialty domain.Specialty) domain.AgentResult {
	lat, lng, ok := a.resolveCenter(query)
	if !ok {
		return domain.AgentResult{Agent: domain.AgentGeo, Action: "radius_search", Error: "could not resolve a location in the query"}
	}
	result := a.index.Radius(lat, lng, extractRadiusKm(query), specialty)
	return domain.AgentResult{Agent: domain.AgentGeo, Action: "radius_search", RadiusSearch: &result}
}

// extractRadiusKm reads the requested distance out of query ("within 30 km",
// "30km away"), defaulting to defaultRadiusKm when none is present.
func extractRadiusKm(query string) float64 {
	m := radiusPattern.FindStringSubmatch(query)
	if m == nil {
		return defaultRadiusKm
	}
	km, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return defaultRadiusKm
	}
	return km
}

func (a *Agent) cityDistance(query string) domain.AgentResult {
	from, to, ok := extractCityPair(query, a.store)
	if !ok {
		return domain.AgentResult{Agent: domain.AgentGeo, Action: "city_distance", Error: "could not identify two cities in the query"}
	}
	result, err := a.index.CityDistance(from, to)
	if err != nil {
		return domain.AgentResult{Agent: domain.AgentGeo, Action: "city_distance", Error: err.Error()}
	}
	return domain.AgentResult{Agent: domain.AgentGeo, Action: "city_distance", DistanceQuery: &result}
}

// resolveCenter finds a single city mentioned in the query and geocodes it.
func (a *Agent) resolveCenter(query string) (float64, float64, bool) {
	city := matchLongestCityName(query, a.store)
	if city == "" {
		return 0, 0, false
	}
	coord, ok := a.index.gazetteer.Geocode(city)
	if !ok {
		return 0, 0, false
	}
	return coord.Lat, coord.Lng, true
}

// extractCityPair finds the two distinct city names present in a query,
// in the order they appear, for "distance between A and B" style phrasing.
func extractCityPair(query string, store *corpus.Store) (string, string, bool) {
	if store == nil {
		return "", "", false
	}
	lower := strings.ToLower(query)
	cities := store.Cities()
	sort.Slice(cities, func(i, j int) bool { return len(cities[i]) > len(cities[j]) })

	type match struct {
		city string
		pos  int
	}
	var found []match
	seen := map[string]bool{}
	for _, c := range cities {
		if seen[c] {
			continue
		}
		idx := strings.Index(lower, strings.ToLower(c))
		if idx < 0 {
			continue
		}
		seen[c] = true
		found = append(found, match{city: c, pos: idx})
	}
	if len(found) < 2 {
		return "", "", false
	}
	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })
	return found[0].city, found[1].city, true
}

func matchLongestCityName(query string, store *corpus.Store) string {
	if store == nil {
		return ""
	}
	cities := store.Cities()
	sort.Slice(cities, func(i, j int) bool { return len(cities[i]) > len(cities[j]) })
	lower := strings.ToLower(query)
	for _, c := range cities {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	return ""
}
