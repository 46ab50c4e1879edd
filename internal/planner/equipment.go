package planner

import (
	"sort"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
)

const equipmentTopRegions = 5

// EquipmentDistribution ranks regions by how many facilities lack
// equipmentTag and, for the top 5, recommends placing the equipment at
// the highest-capacity facility in that region that doesn't already have
// it.
func EquipmentDistribution(store *corpus.Store, equipmentTag string) domain.EquipmentPlanResult {
	regions := store.Regions()
	type regionGap struct {
		region      string
		absentCount int
		haveCount   int
		best        *domain.Facility
	}
	gaps := make([]regionGap, 0, len(regions))

	for _, region := range regions {
		facilities := store.ByRegion(region)
		g := regionGap{region: region}
		for _, f := range facilities {
			if f.HasEquipment(equipmentTag) {
				g.haveCount++
				continue
			}
			g.absentCount++
			if g.best == nil || f.Capacity > g.best.Capacity {
				g.best = f
			}
		}
		gaps = append(gaps, g)
	}

	sort.Slice(gaps, func(i, j int) bool { return gaps[i].absentCount > gaps[j].absentCount })
	if len(gaps) > equipmentTopRegions {
		gaps = gaps[:equipmentTopRegions]
	}

	var suggestions []domain.EquipmentSuggestion
	for _, g := range gaps {
		if g.best == nil {
			continue
		}
		suggestions = append(suggestions, domain.EquipmentSuggestion{
			Region: g.region,
			Facility: domain.MapPoint{
				FacilityID: g.best.ID, Name: g.best.Name,
				Latitude: g.best.Latitude, Longitude: g.best.Longitude,
			},
			WouldServe:  g.absentCount - 1,
			AbsentCount: g.absentCount,
		})
	}

	return domain.EquipmentPlanResult{Equipment: equipmentTag, Suggestions: suggestions}
}
