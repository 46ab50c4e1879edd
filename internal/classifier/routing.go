package classifier

import "github.com/ghfacilities/query-engine/internal/domain"

type route struct {
	agents []domain.AgentName
	flow   domain.Flow
}

// routingTable maps each intent to its default agent list and execution
// flow.
var routingTable = map[domain.Intent]route{
	domain.IntentCount:              {[]domain.AgentName{domain.AgentAnalyst}, domain.FlowSingle},
	domain.IntentAggregate:          {[]domain.AgentName{domain.AgentAnalyst}, domain.FlowSingle},
	domain.IntentAnomalyDetection:   {[]domain.AgentName{domain.AgentAnalyst, domain.AgentValidator}, domain.FlowSequential},
	domain.IntentValidation:         {[]domain.AgentName{domain.AgentSearcher, domain.AgentValidator}, domain.FlowSequential},
	domain.IntentDistanceQuery:      {[]domain.AgentName{domain.AgentGeo}, domain.FlowSingle},
	domain.IntentCoverageGap:        {[]domain.AgentName{domain.AgentGeo, domain.AgentValidator}, domain.FlowSequential},
	domain.IntentMedicalDesert:      {[]domain.AgentName{domain.AgentGeo, domain.AgentValidator}, domain.FlowSequential},
	domain.IntentSinglePointFailure: {[]domain.AgentName{domain.AgentAnalyst, domain.AgentValidator}, domain.FlowSequential},
	domain.IntentFacilityLookup:     {[]domain.AgentName{domain.AgentSearcher}, domain.FlowSingle},
	domain.IntentServiceSearch:      {[]domain.AgentName{domain.AgentSearcher, domain.AgentAnalyst}, domain.FlowSequential},
	domain.IntentSpecialtySearch:    {[]domain.AgentName{domain.AgentSearcher}, domain.FlowSingle},
	domain.IntentComparison:         {[]domain.AgentName{domain.AgentAnalyst, domain.AgentGeo}, domain.FlowParallel},
	domain.IntentPlanning:           {[]domain.AgentName{domain.AgentPlanner}, domain.FlowSingle},
	domain.IntentGeneral:            {[]domain.AgentName{domain.AgentSearcher, domain.AgentAnalyst}, domain.FlowParallel},
}

func agentSet(agents []domain.AgentName) map[domain.AgentName]struct{} {
	out := make(map[domain.AgentName]struct{}, len(agents))
	for _, a := range agents {
		out[a] = struct{}{}
	}
	return out
}

// disjoint reports whether a and b share no agents.
func disjoint(a, b []domain.AgentName) bool {
	bs := agentSet(b)
	for _, x := range a {
		if _, ok := bs[x]; ok {
			return false
		}
	}
	return true
}
