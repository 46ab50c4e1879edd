package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ghfacilities/query-engine/internal/domain"
)

// snapshotFacility is the on-disk JSON shape for one corpus record: the
// same attributes as domain.Facility, but with its sets as plain string
// arrays (maps don't round-trip through encoding/json as sets).
type snapshotFacility struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	City             string   `json:"city"`
	Region           string   `json:"region"`
	FacilityType     string   `json:"facility_type"`
	OrganizationType string   `json:"organization_type"`
	Specialties      []string `json:"specialties"`
	Procedures       []string `json:"procedures"`
	Equipment        []string `json:"equipment"`
	Capabilities     []string `json:"capabilities"`
	Capacity         int      `json:"capacity"`
	Doctors          int      `json:"doctors"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	Description      string   `json:"description"`
}

// LoadSnapshot reads a corpus snapshot JSON file (an array of facility
// records) and builds a Store from it.
func LoadSnapshot(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: reading snapshot %s: %w", path, err)
	}
	return LoadSnapshotBytes(raw)
}

// LoadSnapshotBytes builds a Store from raw snapshot JSON bytes.
func LoadSnapshotBytes(raw []byte) (*Store, error) {
	var records []snapshotFacility
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("corpus: parsing snapshot: %w", err)
	}

	facilities := make([]*domain.Facility, 0, len(records))
	for _, r := range records {
		facilities = append(facilities, r.toDomain())
	}
	return New(facilities), nil
}

func (r snapshotFacility) toDomain() *domain.Facility {
	f := &domain.Facility{
		ID: r.ID, Name: r.Name, City: r.City, Region: r.Region,
		FacilityType: domain.FacilityType(r.FacilityType), OrganizationType: r.OrganizationType,
		Specialties: make(map[domain.Specialty]struct{}, len(r.Specialties)),
		Procedures:  setOf(r.Procedures),
		Equipment:   setOf(r.Equipment),
		Capabilities: setOf(r.Capabilities),
		Capacity:    r.Capacity, Doctors: r.Doctors,
		Description: r.Description,
	}
	for _, s := range r.Specialties {
		f.Specialties[domain.Specialty(s)] = struct{}{}
	}
	if r.Latitude != nil && r.Longitude != nil {
		f.Latitude, f.Longitude = *r.Latitude, *r.Longitude
		f.HasCoordinates = true
	}
	return f
}

func setOf(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, i := range items {
		out[i] = struct{}{}
	}
	return out
}
