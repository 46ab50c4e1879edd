package planner

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/ghfacilities/query-engine/internal/geocoder"
	"github.com/ghfacilities/query-engine/internal/geospatial"
)

var (
	emergencyPattern  = regexp.MustCompile(`(?i)emergency|urgent|nearest hospital|closest hospital`)
	deploymentPattern = regexp.MustCompile(`(?i)deploy|tour|route a specialist|visit.*facilities`)
	equipmentPattern  = regexp.MustCompile(`(?i)distribute|where.*(place|put).*equipment|equipment.*(gap|shortage)`)
	placementPattern  = regexp.MustCompile(`(?i)new facility|build a|site a|where should we (build|open)`)
	capacityPattern   = regexp.MustCompile(`(?i)capacity|beds per|doctors per|bed.doctor`)
)

// Planner is the planning engine agent wired into the orchestrator's agent
// registry. PLANNING is a single intent covering five distinct operations,
// disambiguated from the query text.
type Planner struct {
	store     *corpus.Store
	index     *geospatial.Index
	gazetteer *geocoder.Gazetteer
}

// New builds a Planner over the corpus, spatial index, and gazetteer.
func New(store *corpus.Store, index *geospatial.Index, gazetteer *geocoder.Gazetteer) *Planner {
	return &Planner{store: store, index: index, gazetteer: gazetteer}
}

// Handle dispatches a PLANNING query to the matching sub-operation.
func (p *Planner) Handle(query string) domain.AgentResult {
	specialty := corpus.ExtractSpecialty(query)

	switch {
	case emergencyPattern.MatchString(query):
		result := EmergencyRoute(p.index, p.store, p.gazetteer, p.extractLocation(query), specialty)
		return domain.AgentResult{Agent: domain.AgentPlanner, Action: "emergency_routing", EmergencyRoute: &result}
	case deploymentPattern.MatchString(query):
		result := SpecialistDeploymentTour(p.store, specialty, defaultMaxStops)
		return domain.AgentResult{Agent: domain.AgentPlanner, Action: "specialist_deployment_tour", Tour: &result}
	case equipmentPattern.MatchString(query):
		result := EquipmentDistribution(p.store, corpus.ExtractEquipment(query))
		return domain.AgentResult{Agent: domain.AgentPlanner, Action: "equipment_distribution", EquipmentPlan: &result}
	case placementPattern.MatchString(query):
		result := NewFacilityPlacement(p.store, specialty)
		return domain.AgentResult{Agent: domain.AgentPlanner, Action: "new_facility_placement", Placement: &result}
	case capacityPattern.MatchString(query):
		result := CapacityPlan(p.store)
		return domain.AgentResult{Agent: domain.AgentPlanner, Action: "capacity_planning", CapacityPlan: &result}
	default:
		result := EmergencyRoute(p.index, p.store, p.gazetteer, p.extractLocation(query), specialty)
		return domain.AgentResult{Agent: domain.AgentPlanner, Action: "emergency_routing", EmergencyRoute: &result}
	}
}

// extractLocation finds a city or region name mentioned in the query, for
// emergency routing's patient-location geocode; cities are matched
// longest-first so multi-word names win over substrings.
func (p *Planner) extractLocation(query string) string {
	lower := strings.ToLower(query)
	cities := p.store.Cities()
	sort.Slice(cities, func(i, j int) bool { return len(cities[i]) > len(cities[j]) })
	for _, c := range cities {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	return corpus.ExtractRegion(query)
}
