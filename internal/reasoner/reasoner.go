package reasoner

import (
	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
)

// Reasoner is the medical-domain validator agent: constraint checking,
// anomaly detection, red-flag scanning, and structural coverage analysis.
type Reasoner struct {
	store *corpus.Store
}

// New builds a Reasoner over store.
func New(store *corpus.Store) *Reasoner {
	return &Reasoner{store: store}
}

// ValidateQuery dispatches on intent: VALIDATION checks candidates (the
// searcher's results) against the claimed procedure's constraint catalog
// entry; ANOMALY_DETECTION and SINGLE_POINT_FAILURE run the two-stage
// detector and red-flag scan over the full corpus; COVERAGE_GAP and
// MEDICAL_DESERT run the structural per-region analysis.
func (r *Reasoner) ValidateQuery(intent domain.Intent, query string, candidates []*domain.Facility) domain.AgentResult {
	switch intent {
	case domain.IntentValidation:
		return r.validateClaim(query, candidates)
	case domain.IntentAnomalyDetection, domain.IntentSinglePointFailure:
		return r.anomalyAndRedFlags()
	case domain.IntentCoverageGap, domain.IntentMedicalDesert:
		return r.coverageGap(query)
	default:
		return r.anomalyAndRedFlags()
	}
}

func (r *Reasoner) validateClaim(query string, candidates []*domain.Facility) domain.AgentResult {
	procedure := ExtractClaimedProcedure(query)
	subjects := candidates
	if len(subjects) == 0 {
		subjects = r.store.All()
	}
	flagged := ValidateClaim(subjects, procedure)
	return domain.AgentResult{
		Agent:  domain.AgentValidator,
		Action: "validate_constraints",
		Validation: &domain.ValidationResult{
			Flagged: flagged,
		},
	}
}

func (r *Reasoner) anomalyAndRedFlags() domain.AgentResult {
	facilities := r.store.All()
	result := DetectAnomalies(facilities)
	result.RedFlags = ScanRedFlags(facilities)
	return domain.AgentResult{
		Agent:      domain.AgentValidator,
		Action:     "medical_anomaly_detection",
		Validation: &result,
	}
}

func (r *Reasoner) coverageGap(query string) domain.AgentResult {
	specialty := corpus.ExtractSpecialty(query)
	cov := CoverageGapsByRegion(r.store, specialty)
	return domain.AgentResult{
		Agent:       domain.AgentValidator,
		Action:      "coverage_gap_structural",
		CoverageGap: &cov,
	}
}
