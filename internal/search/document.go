package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghfacilities/query-engine/internal/domain"
)

// DocumentText builds the full_document vector's source text: the
// facility's identity, location, and free-text service description, the
// broadest of the three representations.
func DocumentText(f *domain.Facility) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is a %s in %s, %s region.", f.Name, strings.ReplaceAll(string(f.FacilityType), "_", " "), f.City, f.Region)
	if f.OrganizationType != "" {
		fmt.Fprintf(&b, " Operated by a %s organization.", f.OrganizationType)
	}
	if len(f.Specialties) > 0 {
		fmt.Fprintf(&b, " Specialties: %s.", strings.Join(sortedSpecialties(f.Specialties), ", "))
	}
	if f.Description != "" {
		b.WriteString(" ")
		b.WriteString(f.Description)
	}
	return b.String()
}

// ClinicalDetailText builds the clinical_detail vector's source text: the
// facility's procedures, equipment, and capabilities, matching the query
// side's clinical-keyword template.
func ClinicalDetailText(f *domain.Facility) string {
	return fmt.Sprintf(
		"Procedures: %s | Equipment: %s | Capabilities: %s",
		strings.Join(sortedKeys(f.Procedures), ", "),
		strings.Join(sortedKeys(f.Equipment), ", "),
		strings.Join(sortedKeys(f.Capabilities), ", "),
	)
}

// SpecialtiesContextText builds the specialties_context vector's source
// text: a specialty-forward sentence, matching the query side's
// specialty-keyword template.
func SpecialtiesContextText(f *domain.Facility) string {
	return fmt.Sprintf("facility with specialties: %s, capacity %d doctors %d", strings.Join(sortedSpecialties(f.Specialties), ", "), f.Capacity, f.Doctors)
}

func sortedSpecialties(set map[domain.Specialty]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
