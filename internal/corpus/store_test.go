package corpus

import (
	"testing"

	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFacilities() []*domain.Facility {
	return []*domain.Facility{
		{
			ID: "f1", Name: "Accra General", City: "Accra", Region: "Greater Accra",
			FacilityType: domain.FacilityHospital,
			Specialties:  map[domain.Specialty]struct{}{domain.SpecialtyCardiology: {}},
			Capacity:     200, Doctors: 20,
		},
		{
			ID: "f2", Name: "Kumasi Clinic", City: "Kumasi", Region: "Ashanti",
			FacilityType: domain.FacilityClinic,
			Specialties:  map[domain.Specialty]struct{}{domain.SpecialtyPediatrics: {}},
			Capacity:     50, Doctors: 5,
		},
		{
			ID: "f3", Name: "Accra Dialysis Center", City: "Accra", Region: "Greater Accra",
			FacilityType: domain.FacilityHospital,
			Specialties:  map[domain.Specialty]struct{}{domain.SpecialtyDialysis: {}},
			Capacity:     80, Doctors: 8,
		},
	}
}

func TestStore_GetAndAll(t *testing.T) {
	t.Parallel()
	s := New(sampleFacilities())
	require.Equal(t, 3, s.Len())

	f := s.Get("f2")
	require.NotNil(t, f)
	assert.Equal(t, "Kumasi Clinic", f.Name)

	assert.Nil(t, s.Get("missing"))
	assert.Len(t, s.All(), 3)
}

func TestStore_ByRegionAndSpecialty(t *testing.T) {
	t.Parallel()
	s := New(sampleFacilities())

	accra := s.ByRegion("Greater Accra")
	assert.Len(t, accra, 2)

	cardiology := s.BySpecialty(domain.SpecialtyCardiology)
	require.Len(t, cardiology, 1)
	assert.Equal(t, "f1", cardiology[0].ID)
}

func TestStore_ByType(t *testing.T) {
	t.Parallel()
	s := New(sampleFacilities())
	hospitals := s.ByType(domain.FacilityHospital)
	assert.Len(t, hospitals, 2)
}

func TestStore_Filter(t *testing.T) {
	t.Parallel()
	s := New(sampleFacilities())
	big := s.Filter(func(f *domain.Facility) bool { return f.Capacity >= 100 })
	require.Len(t, big, 1)
	assert.Equal(t, "f1", big[0].ID)
}

func TestStore_DuplicateIDIgnored(t *testing.T) {
	t.Parallel()
	facilities := sampleFacilities()
	facilities = append(facilities, &domain.Facility{ID: "f1", Name: "Duplicate"})
	s := New(facilities)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "Accra General", s.Get("f1").Name)
}

func TestStore_Regions(t *testing.T) {
	t.Parallel()
	s := New(sampleFacilities())
	assert.Equal(t, []string{"Ashanti", "Greater Accra"}, s.Regions())
}

func TestStore_CitiesAndByCity(t *testing.T) {
	t.Parallel()
	s := New(sampleFacilities())
	assert.Equal(t, []string{"Accra", "Kumasi"}, s.Cities())

	accra := s.ByCity("Accra")
	assert.Len(t, accra, 2)
}
