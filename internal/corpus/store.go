// Package corpus holds the read-only, in-memory collection of facility
// records the agents query against, plus the keyword extractors used to
// turn a natural-language query into structured filter parameters.
package corpus

import (
	"sort"
	"sync"

	"github.com/ghfacilities/query-engine/internal/domain"
)

// Store is an immutable, concurrency-safe collection of Facilities with
// cached secondary indexes built once at load time.
type Store struct {
	mu sync.RWMutex

	byID        map[string]*domain.Facility
	order       []string
	byRegion    map[string][]*domain.Facility
	bySpecialty map[domain.Specialty][]*domain.Facility
	byType      map[domain.FacilityType][]*domain.Facility
	byCity      map[string][]*domain.Facility
	byOrgType   map[string][]*domain.Facility
}

// New builds a Store from a slice of facilities, preserving iteration order
// and indexing by region, specialty, and facility type.
func New(facilities []*domain.Facility) *Store {
	s := &Store{
		byID:        make(map[string]*domain.Facility, len(facilities)),
		order:       make([]string, 0, len(facilities)),
		byRegion:    make(map[string][]*domain.Facility),
		bySpecialty: make(map[domain.Specialty][]*domain.Facility),
		byType:      make(map[domain.FacilityType][]*domain.Facility),
		byCity:      make(map[string][]*domain.Facility),
		byOrgType:   make(map[string][]*domain.Facility),
	}
	for _, f := range facilities {
		if _, exists := s.byID[f.ID]; exists {
			continue
		}
		s.byID[f.ID] = f
		s.order = append(s.order, f.ID)
		s.byRegion[f.Region] = append(s.byRegion[f.Region], f)
		for spec := range f.Specialties {
			s.bySpecialty[spec] = append(s.bySpecialty[spec], f)
		}
		s.byType[f.FacilityType] = append(s.byType[f.FacilityType], f)
		s.byCity[f.City] = append(s.byCity[f.City], f)
		if f.OrganizationType != "" {
			s.byOrgType[f.OrganizationType] = append(s.byOrgType[f.OrganizationType], f)
		}
	}
	return s
}

// Get returns the facility with the given id, or nil if absent.
func (s *Store) Get(id string) *domain.Facility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id]
}

// All returns every facility in load order. The returned slice is a copy of
// the internal index; callers may not mutate the underlying facilities.
func (s *Store) All() []*domain.Facility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Facility, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// ByRegion returns facilities whose region exactly matches name.
func (s *Store) ByRegion(name string) []*domain.Facility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.Facility(nil), s.byRegion[name]...)
}

// BySpecialty returns facilities offering the given specialty.
func (s *Store) BySpecialty(tag domain.Specialty) []*domain.Facility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.Facility(nil), s.bySpecialty[tag]...)
}

// ByType returns facilities of the given facility type.
func (s *Store) ByType(t domain.FacilityType) []*domain.Facility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.Facility(nil), s.byType[t]...)
}

// Len reports the number of facilities in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Filter returns the subset of facilities matching predicate, preserving
// load order.
func (s *Store) Filter(predicate func(*domain.Facility) bool) []*domain.Facility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Facility
	for _, id := range s.order {
		f := s.byID[id]
		if predicate(f) {
			out = append(out, f)
		}
	}
	return out
}

// ByCity returns facilities whose city exactly matches name.
func (s *Store) ByCity(name string) []*domain.Facility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.Facility(nil), s.byCity[name]...)
}

// Cities returns the distinct city names present in the store, sorted.
func (s *Store) Cities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byCity))
	for c := range s.byCity {
		if c != "" {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Regions returns the distinct region names present in the store, sorted.
func (s *Store) Regions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byRegion))
	for r := range s.byRegion {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// OrganizationTypes returns the distinct, non-empty organization type tags
// present in the store, sorted. organization_type is a free-form field (no
// fixed enum), so this is the candidate set matchers check a query against.
func (s *Store) OrganizationTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byOrgType))
	for t := range s.byOrgType {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
