package geocoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGazetteer = `
- name: Accra
  lat: 5.6037
  lng: -0.1870
- name: Wa
  lat: 10.0601
  lng: -2.5099
- name: Nkawkaw
  lat: 6.5500
  lng: -0.7667
- name: Kumasi
  lat: 6.6885
  lng: -1.6244
`

func TestGeocode_ExactMatch(t *testing.T) {
	t.Parallel()
	g, err := LoadFrom([]byte(testGazetteer))
	require.NoError(t, err)

	c, ok := g.Geocode("accra")
	require.True(t, ok)
	assert.Equal(t, "exact", c.Method)
	assert.InDelta(t, 5.6037, c.Lat, 0.0001)
}

func TestGeocode_WordBoundaryAvoidsSubstringFalsePositive(t *testing.T) {
	t.Parallel()
	g, err := LoadFrom([]byte(testGazetteer))
	require.NoError(t, err)

	c, ok := g.Geocode("facilities near nkawkaw")
	require.True(t, ok)
	assert.Equal(t, "Nkawkaw", c.Name)

	// "wa" must not match inside "nkawkaw" via word-boundary matching.
	_, ok = g.Geocode("xyznkawkawxyz")
	assert.False(t, ok)
}

func TestGeocode_FuzzyMatch(t *testing.T) {
	t.Parallel()
	g, err := LoadFrom([]byte(testGazetteer))
	require.NoError(t, err)

	c, ok := g.Geocode("kumassi")
	require.True(t, ok)
	assert.Equal(t, "fuzzy", c.Method)
	assert.Equal(t, "Kumasi", c.Name)
}

func TestGeocode_NoMatch(t *testing.T) {
	t.Parallel()
	g, err := LoadFrom([]byte(testGazetteer))
	require.NoError(t, err)

	_, ok := g.Geocode("nonexistent place qwxyz")
	assert.False(t, ok)
}

func TestGeocode_EmbeddedGazetteerLoads(t *testing.T) {
	t.Parallel()
	g, err := Load()
	require.NoError(t, err)
	assert.Greater(t, g.Len(), 50)

	c, ok := g.Geocode("Kumasi")
	require.True(t, ok)
	assert.InDelta(t, 6.6885, c.Lat, 0.001)
}

func TestLevenshteinRatio(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1.0, levenshteinRatio("accra", "accra"))
	assert.InDelta(t, 0.857, levenshteinRatio("kumasi", "kumassi"), 0.01)
}
