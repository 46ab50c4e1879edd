package reasoner

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ghfacilities/query-engine/internal/apperr"
	"github.com/ghfacilities/query-engine/internal/domain"
)

// featureDim is the 6-feature vector every candidate facility contributes:
// |specialties|, |procedures|, |equipment|, |capabilities|, capacity, doctors.
const featureDim = 6

// minCompleteFeatures is the smallest sample size the Mahalanobis stage can
// run against; below it the sample covariance is too unreliable to invert.
const minCompleteFeatures = 6

// mahalanobisThreshold is the inverse chi-square CDF at p=0.975 with 6
// degrees of freedom.
const mahalanobisThreshold = 14.449

// contamination is the fraction of the sample the isolation-forest stage
// flags as outliers.
const contamination = 0.05

const (
	isolationTreeCount  = 100
	isolationSeed       = 20240601
	isolationSubsample  = 256
)

type featureRow struct {
	facility *domain.Facility
	features [featureDim]float64
}

func buildFeatureRows(facilities []*domain.Facility) []featureRow {
	rows := make([]featureRow, 0, len(facilities))
	for _, f := range facilities {
		if f.Capacity <= 0 || f.Doctors <= 0 {
			continue
		}
		rows = append(rows, featureRow{
			facility: f,
			features: [featureDim]float64{
				float64(len(f.Specialties)),
				float64(len(f.Procedures)),
				float64(len(f.Equipment)),
				float64(len(f.Capabilities)),
				float64(f.Capacity),
				float64(f.Doctors),
			},
		})
	}
	return rows
}

// DetectAnomalies runs the two-stage isolation-forest / Mahalanobis
// detector over facilities and returns the facilities flagged by both
// stages, or by stage 1 alone (with SkippedMahalanobis=true) if too few
// facilities carry complete feature vectors.
func DetectAnomalies(facilities []*domain.Facility) domain.ValidationResult {
	rows := buildFeatureRows(facilities)
	if len(rows) == 0 {
		return domain.ValidationResult{SkippedMahalanobis: true}
	}

	isolationFlagged := isolationForestOutliers(rows)

	if len(rows) < minCompleteFeatures {
		return domain.ValidationResult{
			Anomalies:          flagsFor(rows, isolationFlagged),
			SkippedMahalanobis: true,
		}
	}

	mahalanobisFlagged, err := mahalanobisOutliers(rows)
	if err != nil {
		return domain.ValidationResult{
			Anomalies:          flagsFor(rows, isolationFlagged),
			SkippedMahalanobis: true,
		}
	}

	intersection := map[int]bool{}
	for idx := range isolationFlagged {
		if mahalanobisFlagged[idx] {
			intersection[idx] = true
		}
	}

	return domain.ValidationResult{Anomalies: flagsFor(rows, intersection)}
}

func flagsFor(rows []featureRow, flagged map[int]bool) []domain.AnomalyFlag {
	var out []domain.AnomalyFlag
	for idx, ok := range flagged {
		if !ok {
			continue
		}
		row := rows[idx]
		ratio := row.features[4] / row.features[5]
		out = append(out, domain.AnomalyFlag{
			Facility: domain.Ref(row.facility),
			Ratio:    ratio,
			Reasons:  ruleBasedReasons(row),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Facility.ID < out[j].Facility.ID })
	return out
}

func ruleBasedReasons(row featureRow) []string {
	specialties, procedures, equipment, _, capacity, doctors := row.features[0], row.features[1], row.features[2], row.features[3], row.features[4], row.features[5]
	var reasons []string
	if procedures > 10 && equipment < 2 {
		reasons = append(reasons, "procedures > 10 and equipment < 2")
	}
	if doctors > 0 && capacity/doctors > 50 {
		reasons = append(reasons, "ratio > 50")
	}
	if specialties > 8 {
		reasons = append(reasons, "specialties > 8")
	}
	if procedures > 15 && capacity < 20 {
		reasons = append(reasons, "procedures > 15 and capacity < 20")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "flagged by isolation forest and mahalanobis distance")
	}
	return reasons
}

// isolationForestOutliers builds a small isolation forest and returns the
// indices of the top `contamination` fraction of rows by average path
// length (shorter average path = more anomalous).
func isolationForestOutliers(rows []featureRow) map[int]bool {
	n := len(rows)
	if n == 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(isolationSeed))

	data := make([][featureDim]float64, n)
	for i, r := range rows {
		data[i] = r.features
	}

	subsampleSize := isolationSubsample
	if subsampleSize > n {
		subsampleSize = n
	}
	maxDepth := int(math.Ceil(math.Log2(float64(subsampleSize))))
	if maxDepth < 1 {
		maxDepth = 1
	}

	pathSums := make([]float64, n)
	for t := 0; t < isolationTreeCount; t++ {
		sampleIdx := sampleIndices(rng, n, subsampleSize)
		tree := buildIsolationTree(rng, data, sampleIdx, 0, maxDepth)
		for i := 0; i < n; i++ {
			pathSums[i] += pathLength(tree, data[i], 0)
		}
	}

	c := averagePathNormalizer(subsampleSize)
	scores := make([]float64, n)
	for i := range scores {
		avgPath := pathSums[i] / float64(isolationTreeCount)
		scores[i] = math.Pow(2, -avgPath/c)
	}

	numFlagged := int(math.Ceil(contamination * float64(n)))
	if numFlagged < 1 {
		numFlagged = 1
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return scores[order[i]] > scores[order[j]] })

	flagged := make(map[int]bool, numFlagged)
	for i := 0; i < numFlagged && i < len(order); i++ {
		flagged[order[i]] = true
	}
	return flagged
}

func sampleIndices(rng *rand.Rand, n, size int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	if size > n {
		size = n
	}
	return idx[:size]
}

type isolationNode struct {
	isLeaf   bool
	splitDim int
	splitVal float64
	left     *isolationNode
	right    *isolationNode
	size     int
}

func buildIsolationTree(rng *rand.Rand, data [][featureDim]float64, idx []int, depth, maxDepth int) *isolationNode {
	if depth >= maxDepth || len(idx) <= 1 {
		return &isolationNode{isLeaf: true, size: len(idx)}
	}

	dim := rng.Intn(featureDim)
	lo, hi := data[idx[0]][dim], data[idx[0]][dim]
	for _, i := range idx {
		v := data[i][dim]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return &isolationNode{isLeaf: true, size: len(idx)}
	}
	splitVal := lo + rng.Float64()*(hi-lo)

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if data[i][dim] < splitVal {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	return &isolationNode{
		splitDim: dim,
		splitVal: splitVal,
		left:     buildIsolationTree(rng, data, leftIdx, depth+1, maxDepth),
		right:    buildIsolationTree(rng, data, rightIdx, depth+1, maxDepth),
	}
}

func pathLength(node *isolationNode, point [featureDim]float64, depth int) float64 {
	if node.isLeaf {
		return float64(depth) + averagePathNormalizer(node.size)
	}
	if point[node.splitDim] < node.splitVal {
		return pathLength(node.left, point, depth+1)
	}
	return pathLength(node.right, point, depth+1)
}

// averagePathNormalizer is the c(n) term from the isolation forest paper:
// the expected path length of an unsuccessful search in a binary search
// tree of n points.
func averagePathNormalizer(n int) float64 {
	if n <= 1 {
		return 0
	}
	const eulerGamma = 0.5772156649
	return 2*(math.Log(float64(n-1))+eulerGamma) - 2*float64(n-1)/float64(n)
}

// mahalanobisOutliers flags rows whose squared Mahalanobis distance from
// the sample mean exceeds mahalanobisThreshold.
func mahalanobisOutliers(rows []featureRow) (map[int]bool, error) {
	n := len(rows)
	mean := make([]float64, featureDim)
	for _, r := range rows {
		for d := 0; d < featureDim; d++ {
			mean[d] += r.features[d]
		}
	}
	for d := range mean {
		mean[d] /= float64(n)
	}

	centered := mat.NewDense(n, featureDim, nil)
	for i, r := range rows {
		for d := 0; d < featureDim; d++ {
			centered.Set(i, d, r.features[d]-mean[d])
		}
	}

	var covSym mat.SymDense
	covSym.SymOuterK(1, centered.T())
	covSym.ScaleSym(1/float64(n-1), &covSym)

	var chol mat.Cholesky
	if ok := chol.Factorize(&covSym); !ok {
		return nil, fmt.Errorf("%w: sample covariance is not positive definite", apperr.ErrDegenerateFeatures)
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrDegenerateFeatures, err)
	}

	flagged := make(map[int]bool)
	for i, r := range rows {
		diff := mat.NewVecDense(featureDim, nil)
		for d := 0; d < featureDim; d++ {
			diff.SetVec(d, r.features[d]-mean[d])
		}
		var tmp mat.VecDense
		tmp.MulVec(&inv, diff)
		dist2 := mat.Dot(diff, &tmp)
		if dist2 > mahalanobisThreshold {
			flagged[i] = true
		}
	}
	return flagged, nil
}
