package domain

// Citation traces a single claim in a response back to the facility field
// that produced it.
type Citation struct {
	FacilityID string  `json:"facility_id"`
	Field      string  `json:"field"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	StepIndex  int     `json:"step_index"`
}

// TraceStep records one invocation in the orchestrator's execution log:
// one per agent plus one for the router and one for the aggregator.
type TraceStep struct {
	Agent      string   `json:"agent"`
	Action     string   `json:"action"`
	DurationMs int64    `json:"duration_ms"`
	Summary    string   `json:"summary"`
	Citations  []Citation `json:"citations,omitempty"`
	Error      string   `json:"error,omitempty"`
	TimedOut   bool     `json:"timed_out,omitempty"`
}

// AgentResult is the tagged-union result produced by a single agent
// invocation. On success exactly one of the typed payload fields is
// populated, matching the action named in Action; a result that carries
// an Error may have none.
type AgentResult struct {
	Agent  AgentName `json:"agent"`
	Action string    `json:"action"`
	Error  string    `json:"error,omitempty"`

	Count         *CountResult         `json:"count_result,omitempty"`
	Aggregation   *AggregationResult   `json:"aggregation_result,omitempty"`
	Anomaly       *AnomalyResult       `json:"anomaly_result,omitempty"`
	Validation    *ValidationResult    `json:"validation_result,omitempty"`
	RadiusSearch  *RadiusSearchResult  `json:"radius_result,omitempty"`
	CoverageGap   *CoverageGapResult   `json:"coverage_gap_result,omitempty"`
	SPoF          *SPoFResult          `json:"spof_result,omitempty"`
	SemanticSearch *SemanticSearchResult `json:"semantic_search_result,omitempty"`
	DistanceQuery *DistanceQueryResult `json:"distance_result,omitempty"`
	EmergencyRoute *EmergencyRouteResult `json:"emergency_route_result,omitempty"`
	Tour          *TourResult          `json:"tour_result,omitempty"`
	EquipmentPlan *EquipmentPlanResult `json:"equipment_plan_result,omitempty"`
	Placement     *PlacementResult     `json:"placement_result,omitempty"`
	CapacityPlan  *CapacityPlanResult  `json:"capacity_plan_result,omitempty"`
	RegionalEquity *RegionalEquityResult `json:"regional_equity_result,omitempty"`

	Citations []Citation `json:"citations"`
}

// FacilitiesForMap returns the subset of this result's facilities that carry
// valid coordinates, as a typed replacement for the "scan every
// facility-bearing key" aggregation pattern.
func (r *AgentResult) FacilitiesForMap() []MapPoint {
	switch {
	case r.Count != nil:
		return mapPoints(r.Count.Facilities)
	case r.Aggregation != nil:
		return nil
	case r.Anomaly != nil:
		return mapPointsFromAnomalies(r.Anomaly.Anomalies)
	case r.Validation != nil:
		return mapPointsFromValidated(r.Validation.Flagged)
	case r.RadiusSearch != nil:
		return mapPointsFromScored(r.RadiusSearch.Results)
	case r.CoverageGap != nil:
		return nil
	case r.SPoF != nil:
		return nil
	case r.SemanticSearch != nil:
		return mapPointsFromHits(r.SemanticSearch.Results)
	case r.EmergencyRoute != nil:
		out := mapPointsFromScored(nil)
		if r.EmergencyRoute.Primary != nil {
			out = append(out, *r.EmergencyRoute.Primary)
		}
		if r.EmergencyRoute.Backup != nil {
			out = append(out, *r.EmergencyRoute.Backup)
		}
		for _, a := range r.EmergencyRoute.Alternatives {
			out = append(out, a)
		}
		return out
	case r.Tour != nil:
		return r.Tour.Stops
	case r.EquipmentPlan != nil:
		var out []MapPoint
		for _, s := range r.EquipmentPlan.Suggestions {
			out = append(out, s.Facility)
		}
		return out
	case r.Placement != nil:
		return nil
	case r.CapacityPlan != nil:
		return nil
	case r.RegionalEquity != nil:
		return nil
	}
	return nil
}

func mapPoints(facilities []FacilityRef) []MapPoint {
	var out []MapPoint
	for _, f := range facilities {
		if f.HasCoordinates {
			out = append(out, MapPoint{FacilityID: f.ID, Name: f.Name, Latitude: f.Latitude, Longitude: f.Longitude})
		}
	}
	return out
}

func mapPointsFromAnomalies(items []AnomalyFlag) []MapPoint {
	var out []MapPoint
	for _, a := range items {
		if a.Facility.HasCoordinates {
			out = append(out, MapPoint{FacilityID: a.Facility.ID, Name: a.Facility.Name, Latitude: a.Facility.Latitude, Longitude: a.Facility.Longitude})
		}
	}
	return out
}

func mapPointsFromValidated(items []ValidatedFacility) []MapPoint {
	var out []MapPoint
	for _, v := range items {
		if v.Facility.HasCoordinates {
			out = append(out, MapPoint{FacilityID: v.Facility.ID, Name: v.Facility.Name, Latitude: v.Facility.Latitude, Longitude: v.Facility.Longitude})
		}
	}
	return out
}

func mapPointsFromScored(items []ScoredFacility) []MapPoint {
	var out []MapPoint
	for _, s := range items {
		if s.Facility.HasCoordinates {
			out = append(out, MapPoint{FacilityID: s.Facility.ID, Name: s.Facility.Name, Latitude: s.Facility.Latitude, Longitude: s.Facility.Longitude})
		}
	}
	return out
}

func mapPointsFromHits(items []SemanticHit) []MapPoint {
	var out []MapPoint
	for _, h := range items {
		if h.Facility.HasCoordinates {
			out = append(out, MapPoint{FacilityID: h.Facility.ID, Name: h.Facility.Name, Latitude: h.Facility.Latitude, Longitude: h.Facility.Longitude})
		}
	}
	return out
}

// FacilityRef is a lightweight, serializable projection of Facility used in
// agent result payloads (avoids re-exporting the mutable corpus type).
type FacilityRef struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	City             string   `json:"city"`
	Region           string   `json:"region"`
	FacilityType     string   `json:"facility_type"`
	Specialties      []string `json:"specialties,omitempty"`
	Capacity         int      `json:"capacity"`
	Doctors          int      `json:"doctors"`
	Latitude         float64  `json:"latitude,omitempty"`
	Longitude        float64  `json:"longitude,omitempty"`
	HasCoordinates   bool     `json:"has_coordinates"`
}

// Ref projects a Facility into its serializable reference form.
func Ref(f *Facility) FacilityRef {
	specs := make([]string, 0, len(f.Specialties))
	for s := range f.Specialties {
		specs = append(specs, string(s))
	}
	return FacilityRef{
		ID: f.ID, Name: f.Name, City: f.City, Region: f.Region,
		FacilityType: string(f.FacilityType), Specialties: specs,
		Capacity: f.Capacity, Doctors: f.Doctors,
		Latitude: f.Latitude, Longitude: f.Longitude, HasCoordinates: f.ValidCoordinates(),
	}
}

// Response is the structured, cited, map-ready answer returned to the
// inbound caller.
type Response struct {
	RequestID       string                 `json:"request_id"`
	Query           string                 `json:"query"`
	Intent          Intent                 `json:"intent"`
	Confidence      float64                `json:"confidence"`
	AgentsUsed      []AgentName            `json:"agents_used"`
	AgentResults    map[AgentName]AgentResult `json:"agent_results"`
	MapFacilities   []MapPoint             `json:"map_facilities"`
	Summary         string                 `json:"summary"`
	Trace           []TraceStep            `json:"trace"`
	TotalDurationMs int64                  `json:"total_duration_ms"`
	Timestamp       string                 `json:"timestamp"`
	Partial         bool                   `json:"partial,omitempty"`
}
