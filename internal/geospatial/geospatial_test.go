package geospatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/ghfacilities/query-engine/internal/geocoder"
)

func sampleFacilities() []*domain.Facility {
	return []*domain.Facility{
		{ID: "f1", Name: "Korle Bu", City: "Accra", Region: "Greater Accra",
			Latitude: 5.5364, Longitude: -0.2266, HasCoordinates: true,
			Specialties: map[domain.Specialty]struct{}{domain.SpecialtyCardiology: {}},
			Capacity:    400, Doctors: 50},
		{ID: "f2", Name: "Komfo Anokye", City: "Kumasi", Region: "Ashanti",
			Latitude: 6.6885, Longitude: -1.6244, HasCoordinates: true,
			Specialties: map[domain.Specialty]struct{}{domain.SpecialtyNeurosurgery: {}},
			Capacity:    300, Doctors: 40},
		{ID: "f3", Name: "Cape Coast Teaching Hospital", City: "Cape Coast", Region: "Central",
			Latitude: 5.1053, Longitude: -1.2466, HasCoordinates: true,
			Capacity: 100, Doctors: 10},
		{ID: "f4", Name: "No Coordinates Clinic", City: "Wa", Region: "Upper West",
			Capacity: 20, Doctors: 2},
	}
}

func testGazetteer(t *testing.T) *geocoder.Gazetteer {
	t.Helper()
	gaz, err := geocoder.LoadFrom([]byte(`
- name: Accra
  lat: 5.6037
  lng: -0.1870
- name: Kumasi
  lat: 6.6885
  lng: -1.6244
- name: Greater Accra
  lat: 5.6037
  lng: -0.1870
- name: Ashanti
  lat: 6.6885
  lng: -1.6244
`))
	require.NoError(t, err)
	return gaz
}

func TestRadius_EveryResultWithinRadiusPlusEpsilon(t *testing.T) {
	t.Parallel()
	idx := New(sampleFacilities(), testGazetteer(t))
	result := idx.Radius(5.6037, -0.1870, 100, "")
	require.NotEmpty(t, result.Results)
	for _, r := range result.Results {
		assert.LessOrEqual(t, r.DistanceKm, 100.0+1e-6)
	}
}

func TestRadius_ExcludesFacilityWithoutCoordinates(t *testing.T) {
	t.Parallel()
	idx := New(sampleFacilities(), testGazetteer(t))
	result := idx.Radius(7.5, -1.0, 10000, "")
	for _, r := range result.Results {
		assert.NotEqual(t, "f4", r.Facility.ID)
	}
}

func TestRadius_SpecialtyFilterNarrowsResults(t *testing.T) {
	t.Parallel()
	idx := New(sampleFacilities(), testGazetteer(t))
	result := idx.Radius(5.6037, -0.1870, 10000, domain.SpecialtyNeurosurgery)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "f2", result.Results[0].Facility.ID)
}

func TestNearest_SortedAscendingByDistance(t *testing.T) {
	t.Parallel()
	idx := New(sampleFacilities(), testGazetteer(t))
	results := idx.Nearest(5.6037, -0.1870, 3, "")
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].DistanceKm, results[i].DistanceKm)
	}
}

func TestCityDistance_KnownCitiesSucceeds(t *testing.T) {
	t.Parallel()
	idx := New(sampleFacilities(), testGazetteer(t))
	result, err := idx.CityDistance("Accra", "Kumasi")
	require.NoError(t, err)
	assert.Greater(t, result.DistanceKm, 100.0)
	assert.Less(t, result.DistanceKm, 300.0)
}

func TestCityDistance_UnknownCityFails(t *testing.T) {
	t.Parallel()
	idx := New(sampleFacilities(), testGazetteer(t))
	_, err := idx.CityDistance("Accra", "Atlantis")
	assert.Error(t, err)
}

func TestMedicalDeserts_FarRegionsFlagged(t *testing.T) {
	t.Parallel()
	idx := New(sampleFacilities(), testGazetteer(t))
	result := idx.MedicalDeserts(domain.SpecialtyNeurosurgery, 50)
	var sawAshanti bool
	for _, d := range result.Deserts {
		if d.Region == "Ashanti" {
			sawAshanti = true
		}
	}
	assert.False(t, sawAshanti, "Ashanti hosts the only neurosurgery facility so it should not be flagged")
}

func TestRegionalEquity_ProducesOneRowPerRegion(t *testing.T) {
	t.Parallel()
	store := corpus.New(sampleFacilities())
	result := RegionalEquity(store)
	assert.Len(t, result.Regions, len(store.Regions()))
}

func TestExtractCityPair_FindsTwoDistinctCitiesInOrder(t *testing.T) {
	t.Parallel()
	store := corpus.New(sampleFacilities())
	from, to, ok := extractCityPair("how far is it from Accra to Kumasi", store)
	require.True(t, ok)
	assert.Equal(t, "Accra", from)
	assert.Equal(t, "Kumasi", to)
}

func TestExtractCityPair_SingleCityFails(t *testing.T) {
	t.Parallel()
	store := corpus.New(sampleFacilities())
	_, _, ok := extractCityPair("hospitals near Accra", store)
	assert.False(t, ok)
}
