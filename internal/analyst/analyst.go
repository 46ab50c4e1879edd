// Package analyst answers structured queries directly against the corpus:
// counts, region/specialty aggregation, bed-doctor ratio anomalies, and
// single-point-of-failure specialty coverage.
package analyst

import (
	"sort"
	"strings"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
)

// ratioFloor is the minimum IQR anomaly threshold, preventing noise at
// sparse sample sizes from flagging everything.
const ratioFloor = 20.0

// spofMaxCount is the facility-count ceiling for a specialty to be
// considered a single point of failure.
const spofMaxCount = 3

// Analyst runs structured queries against a corpus.Store.
type Analyst struct {
	store *corpus.Store
}

// New builds an Analyst over store.
func New(store *corpus.Store) *Analyst {
	return &Analyst{store: store}
}

// Handle dispatches query to the action its intent and extracted parameters
// select, returning the populated AgentResult.
func (a *Analyst) Handle(intent domain.Intent, query string) domain.AgentResult {
	switch intent {
	case domain.IntentCount:
		return a.countFacilities(query)
	case domain.IntentAggregate:
		lower := strings.ToLower(query)
		if strings.Contains(lower, "distribution") || strings.Contains(lower, "breakdown") {
			return a.specialtyDistribution()
		}
		return a.regionAggregation()
	case domain.IntentAnomalyDetection:
		return a.anomalyBedDoctorRatio()
	case domain.IntentSinglePointFailure:
		return a.singlePointOfFailure()
	default:
		return a.findByFilters(query)
	}
}

func (a *Analyst) matchFacilities(query string) ([]*domain.Facility, map[string]string) {
	filters := map[string]string{}
	specialty := corpus.ExtractSpecialty(query)
	region := corpus.ExtractRegion(query)
	facilityType := corpus.ExtractFacilityType(query)

	negated := specialty != "" && corpus.IsNegated(query, string(specialty))

	matches := a.store.Filter(func(f *domain.Facility) bool {
		if region != "" && f.Region != region {
			return false
		}
		if facilityType != "" && f.FacilityType != facilityType {
			return false
		}
		if specialty != "" {
			has := f.HasSpecialty(specialty)
			if negated && has {
				return false
			}
			if !negated && !has {
				return false
			}
		}
		return true
	})

	if region != "" {
		filters["region"] = region
	}
	if facilityType != "" {
		filters["facility_type"] = string(facilityType)
	}
	if specialty != "" {
		if negated {
			filters["lacking_specialty"] = string(specialty)
		} else {
			filters["specialty"] = string(specialty)
		}
	}
	return matches, filters
}

func (a *Analyst) countFacilities(query string) domain.AgentResult {
	matches, filters := a.matchFacilities(query)
	return domain.AgentResult{
		Agent:  domain.AgentAnalyst,
		Action: "count_facilities",
		Count: &domain.CountResult{
			Count:          len(matches),
			Facilities:     refsOf(matches),
			FiltersApplied: filters,
		},
	}
}

func (a *Analyst) findByFilters(query string) domain.AgentResult {
	matches, filters := a.matchFacilities(query)
	return domain.AgentResult{
		Agent:  domain.AgentAnalyst,
		Action: "find_by_filters",
		Count: &domain.CountResult{
			Count:          len(matches),
			Facilities:     refsOf(matches),
			FiltersApplied: filters,
		},
	}
}

func (a *Analyst) regionAggregation() domain.AgentResult {
	agg := map[string]int{}
	for _, region := range a.store.Regions() {
		agg[region] = len(a.store.ByRegion(region))
	}
	topRegion, topCount := "", 0
	for _, region := range a.store.Regions() {
		if agg[region] > topCount {
			topRegion, topCount = region, agg[region]
		}
	}
	return domain.AgentResult{
		Agent:  domain.AgentAnalyst,
		Action: "region_aggregation",
		Aggregation: &domain.AggregationResult{
			Aggregation: agg,
			TopRegion:   topRegion,
			TopCount:    topCount,
		},
	}
}

func (a *Analyst) specialtyDistribution() domain.AgentResult {
	dist := map[string]int{}
	unique := 0
	for _, s := range domain.AllSpecialties {
		n := len(a.store.BySpecialty(s))
		if n > 0 {
			unique++
		}
		dist[string(s)] = n
	}
	return domain.AgentResult{
		Agent:  domain.AgentAnalyst,
		Action: "specialty_distribution",
		Aggregation: &domain.AggregationResult{
			Distribution:           dist,
			TotalUniqueSpecialties: unique,
		},
	}
}

func (a *Analyst) anomalyBedDoctorRatio() domain.AgentResult {
	type pair struct {
		facility *domain.Facility
		ratio    float64
	}
	var ratios []float64
	var pairs []pair
	for _, f := range a.store.All() {
		if f.Doctors <= 0 || f.Capacity <= 0 {
			continue
		}
		ratio := float64(f.Capacity) / float64(f.Doctors)
		ratios = append(ratios, ratio)
		pairs = append(pairs, pair{facility: f, ratio: ratio})
	}

	q25 := percentile(ratios, 25)
	q75 := percentile(ratios, 75)
	iqr := q75 - q25
	threshold := q75 + 1.5*iqr
	if threshold < ratioFloor {
		threshold = ratioFloor
	}

	var flags []domain.AnomalyFlag
	for _, p := range pairs {
		if p.ratio <= threshold {
			continue
		}
		var reasons []string
		reasons = append(reasons, "bed_doctor_ratio_exceeds_iqr_threshold")
		if p.ratio > 2*threshold {
			reasons = append(reasons, "ratio_far_exceeds_threshold")
		}
		flags = append(flags, domain.AnomalyFlag{
			Facility: domain.Ref(p.facility),
			Ratio:    p.ratio,
			Reasons:  reasons,
		})
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Ratio > flags[j].Ratio })

	return domain.AgentResult{
		Agent:  domain.AgentAnalyst,
		Action: "anomaly_bed_doctor_ratio",
		Anomaly: &domain.AnomalyResult{
			Anomalies: flags,
			Threshold: threshold,
		},
	}
}

func (a *Analyst) singlePointOfFailure() domain.AgentResult {
	rare := map[string]int{}
	var risks []domain.SPoFRisk
	for _, s := range domain.AllSpecialties {
		facilities := a.store.BySpecialty(s)
		if len(facilities) == 0 || len(facilities) > spofMaxCount {
			continue
		}
		rare[string(s)] = len(facilities)
		risks = append(risks, domain.SPoFRisk{
			Specialty:     string(s),
			FacilityCount: len(facilities),
			Facilities:    refsOf(facilities),
			RiskLevel:     spofRiskLevel(len(facilities)),
		})
	}
	sort.Slice(risks, func(i, j int) bool {
		if risks[i].FacilityCount != risks[j].FacilityCount {
			return risks[i].FacilityCount < risks[j].FacilityCount
		}
		return risks[i].Specialty < risks[j].Specialty
	})

	return domain.AgentResult{
		Agent:  domain.AgentAnalyst,
		Action: "single_point_of_failure",
		SPoF: &domain.SPoFResult{
			RareSpecialties: rare,
			Results:         risks,
		},
	}
}

func spofRiskLevel(count int) string {
	switch count {
	case 1:
		return "critical"
	case 2:
		return "high"
	default:
		return "medium"
	}
}

// percentile returns the p-th percentile (0-100) of values via linear
// interpolation between the closest ranks. values need not be pre-sorted.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func refsOf(facilities []*domain.Facility) []domain.FacilityRef {
	out := make([]domain.FacilityRef, 0, len(facilities))
	for _, f := range facilities {
		out = append(out, domain.Ref(f))
	}
	return out
}
