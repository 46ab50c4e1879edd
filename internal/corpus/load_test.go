package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghfacilities/query-engine/internal/domain"
)

const sampleSnapshotJSON = `[
	{
		"id": "f1",
		"name": "Accra General Hospital",
		"city": "Accra",
		"region": "Greater Accra",
		"facility_type": "hospital",
		"organization_type": "government",
		"specialties": ["cardiology", "pediatrics"],
		"procedures": ["dialysis"],
		"equipment": ["CT", "MRI"],
		"capabilities": ["ICU", "operating_theater"],
		"capacity": 200,
		"doctors": 20,
		"latitude": 5.5364,
		"longitude": -0.2266,
		"description": "Full-service tertiary hospital."
	},
	{
		"id": "f2",
		"name": "Tamale Rural Clinic",
		"city": "Tamale",
		"region": "Northern",
		"facility_type": "clinic",
		"organization_type": "private",
		"specialties": ["general_practice"],
		"procedures": [],
		"equipment": [],
		"capabilities": [],
		"capacity": 10,
		"doctors": 1
	}
]`

func TestLoadSnapshotBytes_ParsesSpecialtiesAsSets(t *testing.T) {
	t.Parallel()
	store, err := LoadSnapshotBytes([]byte(sampleSnapshotJSON))
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	f1 := store.Get("f1")
	require.NotNil(t, f1)
	assert.True(t, f1.HasSpecialty(domain.SpecialtyCardiology))
	assert.True(t, f1.HasSpecialty(domain.SpecialtyPediatrics))
	assert.True(t, f1.HasEquipment("CT"))
	assert.True(t, f1.HasCapability("ICU"))
	assert.True(t, f1.HasCoordinates)
	assert.Equal(t, "Full-service tertiary hospital.", f1.Description)
}

func TestLoadSnapshotBytes_MissingCoordinatesLeavesHasCoordinatesFalse(t *testing.T) {
	t.Parallel()
	store, err := LoadSnapshotBytes([]byte(sampleSnapshotJSON))
	require.NoError(t, err)

	f2 := store.Get("f2")
	require.NotNil(t, f2)
	assert.False(t, f2.HasCoordinates)
}

func TestLoadSnapshotBytes_InvalidJSONFails(t *testing.T) {
	t.Parallel()
	_, err := LoadSnapshotBytes([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadSnapshot_MissingFileFails(t *testing.T) {
	t.Parallel()
	_, err := LoadSnapshot("/nonexistent/path/snapshot.json")
	assert.Error(t, err)
}
