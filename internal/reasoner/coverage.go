package reasoner

import (
	"sort"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
)

// CoverageGapsByRegion counts facilities offering specialty (or every
// facility, if specialty is "") per region and assigns a structural
// severity: critical when a region has none, high when it has exactly one,
// medium when it has at least two but fewer than the median across
// regions.
func CoverageGapsByRegion(store *corpus.Store, specialty domain.Specialty) domain.CoverageGapResult {
	regions := store.Regions()
	counts := make(map[string]int, len(regions))
	for _, region := range regions {
		facilities := store.ByRegion(region)
		if specialty == "" {
			counts[region] = len(facilities)
			continue
		}
		n := 0
		for _, f := range facilities {
			if f.HasSpecialty(specialty) {
				n++
			}
		}
		counts[region] = n
	}

	median := medianOf(counts)

	var deserts []domain.MedicalDesert
	for _, region := range regions {
		count := counts[region]
		severity := ""
		switch {
		case count == 0:
			severity = "critical"
		case count == 1:
			severity = "high"
		case count < median:
			severity = "medium"
		}
		if severity == "" {
			continue
		}
		deserts = append(deserts, domain.MedicalDesert{
			Region:        region,
			FacilityCount: count,
			Severity:      severity,
		})
	}
	sort.Slice(deserts, func(i, j int) bool { return deserts[i].FacilityCount < deserts[j].FacilityCount })

	return domain.CoverageGapResult{
		Deserts:   deserts,
		Specialty: string(specialty),
		Method:    "regional_count",
	}
}

func medianOf(counts map[string]int) int {
	vals := make([]int, 0, len(counts))
	for _, v := range counts {
		vals = append(vals, v)
	}
	sort.Ints(vals)
	if len(vals) == 0 {
		return 0
	}
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}
