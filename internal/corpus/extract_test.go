package corpus

import (
	"testing"

	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestExtractRegion_PrefersLongestMatch(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Western North", ExtractRegion("facilities in Western North region"))
	assert.Equal(t, "Western", ExtractRegion("facilities in Western region"))
}

func TestExtractRegion_NoMatch(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", ExtractRegion("facilities near the coast"))
}

func TestExtractSpecialty_WordBoundary(t *testing.T) {
	t.Parallel()
	assert.Equal(t, domain.SpecialtyCardiology, ExtractSpecialty("hospitals with cardiology units"))
	assert.Equal(t, domain.Specialty(""), ExtractSpecialty("hospitals with cardiologyz units"))
}

func TestExtractSpecialty_PrefersLongerPhrase(t *testing.T) {
	t.Parallel()
	assert.Equal(t, domain.SpecialtyGeneralSurg, ExtractSpecialty("does it offer general surgery"))
}

func TestExtractFacilityType(t *testing.T) {
	t.Parallel()
	assert.Equal(t, domain.FacilityHealthCenter, ExtractFacilityType("the nearest health center"))
	assert.Equal(t, domain.FacilityHospital, ExtractFacilityType("the nearest hospital"))
}

func TestExtractEquipment(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "CT", ExtractEquipment("facilities with a CT scanner"))
	assert.Equal(t, "operating_theater", ExtractEquipment("has an operating theater"))
}

func TestIsNegated_WithinSixTokens(t *testing.T) {
	t.Parallel()
	assert.True(t, IsNegated("hospitals without cardiology services available", "cardiology"))
	assert.False(t, IsNegated("hospitals with cardiology services", "cardiology"))
}

func TestIsNegated_BeyondSixTokens(t *testing.T) {
	t.Parallel()
	text := "hospitals without one two three four five six seven cardiology"
	assert.False(t, IsNegated(text, "cardiology"))
}

func TestIsNegated_ContractionForms(t *testing.T) {
	t.Parallel()
	assert.True(t, IsNegated("this facility doesn't have dialysis", "dialysis"))
}
