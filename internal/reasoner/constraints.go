// Package reasoner implements the medical-domain validator: constraint
// checking against a fixed advanced-procedure catalog, two-stage anomaly
// detection, red-flag language scanning, and structural coverage-gap
// analysis.
package reasoner

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/ghfacilities/query-engine/internal/domain"
)

// procedureRequirement is one entry in the closed constraint catalog.
type procedureRequirement struct {
	name     string
	equipment []string
	minBeds  int
}

// catalog is the closed set of 6 advanced procedures the validator checks
// claims against.
var catalog = []procedureRequirement{
	{name: "Neurosurgery", equipment: []string{"CT", "MRI", "ICU", "operating_theater"}, minBeds: 50},
	{name: "Cardiac surgery", equipment: []string{"cardiac_catheterization", "ICU", "ventilator"}, minBeds: 100},
	{name: "Cataract surgery", equipment: []string{"ophthalmoscope", "surgical_microscope"}, minBeds: 5},
	{name: "Dialysis", equipment: []string{"dialysis_machine"}, minBeds: 10},
	{name: "Orthopedic surgery", equipment: []string{"X-ray", "operating_theater"}, minBeds: 30},
	{name: "Oncology", equipment: []string{"CT", "radiation_therapy", "laboratory"}, minBeds: 50},
}

var procedureKeyword = map[string]*regexp.Regexp{
	"Neurosurgery":       regexp.MustCompile(`(?i)\bneurosurg`),
	"Cardiac surgery":    regexp.MustCompile(`(?i)\bcardiac surg|\bopen heart|\bcardiac catheter`),
	"Cataract surgery":   regexp.MustCompile(`(?i)\bcataract`),
	"Dialysis":           regexp.MustCompile(`(?i)\bdialysis`),
	"Orthopedic surgery": regexp.MustCompile(`(?i)\borthop`),
	"Oncology":           regexp.MustCompile(`(?i)\boncolog|\bcancer|\bradiation therapy`),
}

// ExtractClaimedProcedure returns the catalog procedure name the query text
// references, or "" if none match.
func ExtractClaimedProcedure(text string) string {
	for _, p := range catalog {
		if procedureKeyword[p.name].MatchString(text) {
			return p.name
		}
	}
	return ""
}

func findRequirement(procedure string) (procedureRequirement, bool) {
	for _, p := range catalog {
		if p.name == procedure {
			return p, true
		}
	}
	return procedureRequirement{}, false
}

// checkConstraints evaluates f against procedure's requirement, returning
// one ConstraintIssue per unmet requirement. Missing equipment is high
// severity; a bed-count shortfall is medium.
func checkConstraints(f *domain.Facility, procedure string) []domain.ConstraintIssue {
	req, ok := findRequirement(procedure)
	if !ok {
		return nil
	}
	var issues []domain.ConstraintIssue
	for _, eq := range req.equipment {
		if !f.HasEquipment(eq) {
			issues = append(issues, domain.ConstraintIssue{
				Kind:     "equipment",
				Detail:   fmt.Sprintf("missing %s", eq),
				Severity: "high",
			})
		}
	}
	if f.Capacity < req.minBeds {
		issues = append(issues, domain.ConstraintIssue{
			Kind:     "beds",
			Detail:   fmt.Sprintf("has %d beds, requires %d", f.Capacity, req.minBeds),
			Severity: "medium",
		})
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity == "high"
		}
		return issues[i].Detail < issues[j].Detail
	})
	return issues
}

// ValidateClaim checks every facility in facilities against procedure's
// catalog requirements, returning one ValidatedFacility each.
func ValidateClaim(facilities []*domain.Facility, procedure string) []domain.ValidatedFacility {
	out := make([]domain.ValidatedFacility, 0, len(facilities))
	for _, f := range facilities {
		issues := checkConstraints(f, procedure)
		out = append(out, domain.ValidatedFacility{
			Facility:   domain.Ref(f),
			Claimed:    procedure,
			Confidence: claimConfidence(len(f.Specialties), issues),
			Issues:     issues,
		})
	}
	return out
}
