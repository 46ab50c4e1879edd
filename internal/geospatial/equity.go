package geospatial

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
)

// equityFeatureDim is the per-region feature vector width: facility
// density, distinct specialty count, total doctors, total beds.
const equityFeatureDim = 4

// equityChiSquareThreshold is the inverse chi-square CDF at p=0.975 with 4
// degrees of freedom.
const equityChiSquareThreshold = 11.143

// RegionalEquity computes each region's (facility_density, specialty_count,
// doctor_total, bed_total) feature vector and its Mahalanobis distance from
// the corpus-wide regional centroid, flagging regions beyond the
// chi-square threshold as inequitable.
func RegionalEquity(store *corpus.Store) domain.RegionalEquityResult {
	regions := store.Regions()
	n := len(regions)
	if n == 0 {
		return domain.RegionalEquityResult{Threshold: equityChiSquareThreshold}
	}

	features := make([][equityFeatureDim]float64, n)
	for i, region := range regions {
		facilities := store.ByRegion(region)
		specialties := map[domain.Specialty]struct{}{}
		var doctors, beds int
		for _, f := range facilities {
			for s := range f.Specialties {
				specialties[s] = struct{}{}
			}
			doctors += f.Doctors
			beds += f.Capacity
		}
		features[i] = [equityFeatureDim]float64{
			float64(len(facilities)),
			float64(len(specialties)),
			float64(doctors),
			float64(beds),
		}
	}

	mean := [equityFeatureDim]float64{}
	for _, f := range features {
		for d := 0; d < equityFeatureDim; d++ {
			mean[d] += f[d]
		}
	}
	for d := range mean {
		mean[d] /= float64(n)
	}

	rows := domain.RegionalEquityResult{Threshold: equityChiSquareThreshold}
	if n < equityFeatureDim+2 {
		// Too few regions to invert a stable covariance matrix; report
		// the feature vectors with no Mahalanobis flag.
		for i, region := range regions {
			rows.Regions = append(rows.Regions, domain.RegionEquity{
				Region: region, FacilityDensity: features[i][0], SpecialtyCount: features[i][1],
				DoctorTotal: features[i][2], BedTotal: features[i][3],
			})
		}
		return rows
	}

	centered := mat.NewDense(n, equityFeatureDim, nil)
	for i, f := range features {
		for d := 0; d < equityFeatureDim; d++ {
			centered.Set(i, d, f[d]-mean[d])
		}
	}
	var covSym mat.SymDense
	covSym.SymOuterK(1, centered.T())
	covSym.ScaleSym(1/float64(n-1), &covSym)

	var chol mat.Cholesky
	invertible := chol.Factorize(&covSym)
	var inv mat.SymDense
	if invertible {
		if err := chol.InverseTo(&inv); err != nil {
			invertible = false
		}
	}

	for i, region := range regions {
		row := domain.RegionEquity{
			Region: region, FacilityDensity: features[i][0], SpecialtyCount: features[i][1],
			DoctorTotal: features[i][2], BedTotal: features[i][3],
		}
		if invertible {
			diff := mat.NewVecDense(equityFeatureDim, nil)
			for d := 0; d < equityFeatureDim; d++ {
				diff.SetVec(d, features[i][d]-mean[d])
			}
			var tmp mat.VecDense
			tmp.MulVec(&inv, diff)
			row.MahalanobisDist = mat.Dot(diff, &tmp)
			row.Flagged = row.MahalanobisDist > equityChiSquareThreshold
		}
		rows.Regions = append(rows.Regions, row)
	}
	sort.Slice(rows.Regions, func(i, j int) bool { return rows.Regions[i].MahalanobisDist > rows.Regions[j].MahalanobisDist })
	return rows
}
