package analyst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
)

func sampleFacilities() []*domain.Facility {
	return []*domain.Facility{
		{ID: "f1", Name: "Accra General", City: "Accra", Region: "Greater Accra",
			FacilityType: domain.FacilityHospital,
			Specialties:  map[domain.Specialty]struct{}{domain.SpecialtyCardiology: {}},
			Capacity:     200, Doctors: 20},
		{ID: "f2", Name: "Kumasi Clinic", City: "Kumasi", Region: "Ashanti",
			FacilityType: domain.FacilityClinic,
			Specialties:  map[domain.Specialty]struct{}{domain.SpecialtyPediatrics: {}},
			Capacity:     50, Doctors: 5},
		{ID: "f3", Name: "Accra Dialysis Center", City: "Accra", Region: "Greater Accra",
			FacilityType: domain.FacilityHospital,
			Specialties:  map[domain.Specialty]struct{}{domain.SpecialtyDialysis: {}},
			Capacity:     80, Doctors: 8},
		{ID: "f4", Name: "Tamale Overloaded Clinic", City: "Tamale", Region: "Northern",
			FacilityType: domain.FacilityClinic,
			Capacity:     500, Doctors: 2},
	}
}

func TestAnalyst_CountFacilitiesByRegion(t *testing.T) {
	t.Parallel()
	store := corpus.New(sampleFacilities())
	a := New(store)

	result := a.Handle(domain.IntentCount, "how many hospitals are in Greater Accra")
	require.NotNil(t, result.Count)
	assert.Equal(t, 2, result.Count.Count)
	assert.Equal(t, "Greater Accra", result.Count.FiltersApplied["region"])
}

func TestAnalyst_RegionAggregation(t *testing.T) {
	t.Parallel()
	store := corpus.New(sampleFacilities())
	a := New(store)

	result := a.Handle(domain.IntentAggregate, "which region has the most facilities")
	require.NotNil(t, result.Aggregation)
	assert.Equal(t, "Greater Accra", result.Aggregation.TopRegion)
	assert.Equal(t, 2, result.Aggregation.TopCount)
}

func TestAnalyst_SpecialtyDistribution(t *testing.T) {
	t.Parallel()
	store := corpus.New(sampleFacilities())
	a := New(store)

	result := a.Handle(domain.IntentAggregate, "breakdown of specialties")
	require.NotNil(t, result.Aggregation)
	assert.Equal(t, 1, result.Aggregation.Distribution["cardiology"])
	assert.Equal(t, 3, result.Aggregation.TotalUniqueSpecialties)
}

func TestAnalyst_AnomalyFlagsHighRatio(t *testing.T) {
	t.Parallel()
	store := corpus.New(sampleFacilities())
	a := New(store)

	result := a.Handle(domain.IntentAnomalyDetection, "find anomalies")
	require.NotNil(t, result.Anomaly)
	require.Len(t, result.Anomaly.Anomalies, 1)
	assert.Equal(t, "f4", result.Anomaly.Anomalies[0].Facility.ID)
	assert.GreaterOrEqual(t, result.Anomaly.Threshold, ratioFloor)
}

func TestAnalyst_SinglePointOfFailure(t *testing.T) {
	t.Parallel()
	store := corpus.New(sampleFacilities())
	a := New(store)

	result := a.Handle(domain.IntentSinglePointFailure, "which specialties are rare")
	require.NotNil(t, result.SPoF)
	assert.Equal(t, 1, result.SPoF.RareSpecialties["cardiology"])
	for _, risk := range result.SPoF.Results {
		assert.Equal(t, "critical", risk.RiskLevel)
	}
}

func TestAnalyst_NegationInvertsFilter(t *testing.T) {
	t.Parallel()
	store := corpus.New(sampleFacilities())
	a := New(store)

	result := a.Handle(domain.IntentFacilityLookup, "hospitals without cardiology")
	require.NotNil(t, result.Count)
	for _, f := range result.Count.Facilities {
		assert.NotContains(t, f.Specialties, "cardiology")
	}
}

func TestPercentile_Basic(t *testing.T) {
	t.Parallel()
	vals := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, percentile(vals, 25), 1e-9)
	assert.InDelta(t, 3.25, percentile(vals, 75), 1e-9)
}
