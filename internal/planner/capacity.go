package planner

import (
	"sort"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
)

// CapacityPlan computes per-region beds-per-facility and doctors-per-facility
// and flags regions whose bed density is critical or warning-level thin.
func CapacityPlan(store *corpus.Store) domain.CapacityPlanResult {
	regions := store.Regions()
	rows := make([]domain.RegionCapacity, 0, len(regions))

	for _, region := range regions {
		facilities := store.ByRegion(region)
		n := len(facilities)
		var beds, doctors int
		for _, f := range facilities {
			beds += f.Capacity
			doctors += f.Doctors
		}
		var bedsPerFacility, doctorsPerFacility float64
		if n > 0 {
			bedsPerFacility = float64(beds) / float64(n)
			doctorsPerFacility = float64(doctors) / float64(n)
		}
		rows = append(rows, domain.RegionCapacity{
			Region:             region,
			BedsPerFacility:    bedsPerFacility,
			DoctorsPerFacility: doctorsPerFacility,
			TotalFacilities:    n,
			Status:             capacityStatus(bedsPerFacility, n),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].BedsPerFacility < rows[j].BedsPerFacility })
	return domain.CapacityPlanResult{Regions: rows}
}

func capacityStatus(bedsPerFacility float64, totalFacilities int) string {
	switch {
	case bedsPerFacility < 5 && totalFacilities > 3:
		return "critical"
	case bedsPerFacility < 15:
		return "warning"
	default:
		return "adequate"
	}
}
