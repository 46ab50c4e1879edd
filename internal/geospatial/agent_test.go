package geospatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
)

func TestExtractRadiusKm_ParsesRequestedDistance(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 30.0, extractRadiusKm("hospitals within 30 km of Tamale"))
	assert.Equal(t, 12.5, extractRadiusKm("clinics within 12.5km of Wa"))
}

func TestExtractRadiusKm_DefaultsWhenNoDistancePresent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, defaultRadiusKm, extractRadiusKm("hospitals near Tamale"))
}

func TestHandle_RadiusSearchHonorsRequestedDistance(t *testing.T) {
	t.Parallel()
	facilities := sampleFacilities()
	store := corpus.New(facilities)
	idx := New(facilities, testGazetteer(t))
	agent := NewAgent(idx, store)

	result := agent.Handle(domain.IntentSpecialtySearch, "hospitals within 30 km of Accra")
	require.NotNil(t, result.RadiusSearch)
	for _, r := range result.RadiusSearch.Results {
		assert.LessOrEqual(t, r.DistanceKm, 30.0+1e-6)
	}
}

func TestExtractCityPair_ThreeCitiesKeepsFirstTwoInOrder(t *testing.T) {
	t.Parallel()
	store := corpus.New(sampleFacilities())
	from, to, ok := extractCityPair("how far is it from Kumasi to Accra, and also Cape Coast", store)
	require.True(t, ok)
	assert.Equal(t, "Kumasi", from)
	assert.Equal(t, "Accra", to)
}
