// Package search implements the multi-vector Reciprocal Rank Fusion
// semantic searcher: three named-vector queries against the vector index,
// fused into one ranked facility list.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
)

const (
	VectorFullDocument       = "full_document"
	VectorClinicalDetail     = "clinical_detail"
	VectorSpecialtiesContext = "specialties_context"

	// rrfK is the RRF denominator constant.
	rrfK = 60
	// baseWeight is every named vector's starting weight before keyword
	// boosts, normalized so the three weights sum to 3.0.
	baseWeight = 1.0
	// maxKeywordBoost caps how much a single vector's raw weight can be
	// boosted by keyword hits before normalization.
	maxKeywordBoost = 3
)

// VectorNames lists the three named vectors in a stable order.
var VectorNames = []string{VectorFullDocument, VectorClinicalDetail, VectorSpecialtiesContext}

// clinicalKeywords flags a query as clinically detailed: recognized
// equipment tags and the procedure-like words the corpus tracks.
var clinicalKeywords = buildClinicalKeywords()

func buildClinicalKeywords() []string {
	out := make([]string, 0, len(domain.RecognizedEquipment)+2)
	for _, eq := range domain.RecognizedEquipment {
		out = append(out, strings.ToLower(strings.ReplaceAll(eq, "_", " ")))
	}
	out = append(out, "procedure", "surgery")
	return out
}

// specialtyKeywords flags a query as specialty-oriented.
var specialtyKeywords = buildSpecialtyKeywords()

func buildSpecialtyKeywords() []string {
	out := make([]string, 0, len(domain.AllSpecialties)+1)
	for _, s := range domain.AllSpecialties {
		out = append(out, strings.ToLower(strings.ReplaceAll(string(s), "_", " ")))
	}
	out = append(out, "specialist")
	return out
}

// buildQueryTexts returns the three vector-specific query texts built from
// the raw query.
func buildQueryTexts(query string) map[string]string {
	return map[string]string{
		VectorFullDocument:       query,
		VectorClinicalDetail:     fmt.Sprintf("Procedures: %s | Equipment: %s", query, query),
		VectorSpecialtiesContext: fmt.Sprintf("facility with specialties: %s", query),
	}
}

// computeWeights returns the per-vector RRF weight, normalized so the three
// weights sum to 3.0.
func computeWeights(query string) map[string]float64 {
	lower := strings.ToLower(query)
	clinicalHits := countHits(lower, clinicalKeywords)
	specialtyHits := countHits(lower, specialtyKeywords)

	raw := map[string]float64{
		VectorFullDocument:       baseWeight,
		VectorClinicalDetail:     baseWeight + float64(min(clinicalHits, maxKeywordBoost)),
		VectorSpecialtiesContext: baseWeight + float64(min(specialtyHits, maxKeywordBoost)),
	}
	sum := raw[VectorFullDocument] + raw[VectorClinicalDetail] + raw[VectorSpecialtiesContext]
	if sum == 0 {
		return raw
	}
	factor := 3.0 / sum
	for k := range raw {
		raw[k] *= factor
	}
	return raw
}

func countHits(lowerText string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lowerText, kw) {
			count++
		}
	}
	return count
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// buildFilter derives equality predicates from the query against the
// corpus's known cities/regions/types, plus any explicit override. City
// names are matched longest-first so "Cape Coast" wins over a bare "Coast".
func buildFilter(query string, store *corpus.Store) map[string]string {
	filter := map[string]string{}

	if city := matchLongestCity(query, store); city != "" {
		filter["address_city"] = city
	} else if region := corpus.ExtractRegion(query); region != "" {
		filter["address_stateOrRegion"] = region
	}

	if ft := corpus.ExtractFacilityType(query); ft != "" {
		filter["facilityTypeId"] = string(ft)
	}

	if orgType := matchLongestOrganizationType(query, store); orgType != "" {
		filter["organization_type"] = orgType
	}

	return filter
}

func matchLongestCity(query string, store *corpus.Store) string {
	if store == nil {
		return ""
	}
	cities := store.Cities()
	sort.Slice(cities, func(i, j int) bool { return len(cities[i]) > len(cities[j]) })
	lower := strings.ToLower(query)
	for _, c := range cities {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	return ""
}

// matchLongestOrganizationType matches the free-form organization_type tags
// present in the corpus against query, longest-name-first.
func matchLongestOrganizationType(query string, store *corpus.Store) string {
	if store == nil {
		return ""
	}
	orgTypes := store.OrganizationTypes()
	sort.Slice(orgTypes, func(i, j int) bool { return len(orgTypes[i]) > len(orgTypes[j]) })
	lower := strings.ToLower(query)
	for _, t := range orgTypes {
		if strings.Contains(lower, strings.ToLower(t)) {
			return t
		}
	}
	return ""
}
