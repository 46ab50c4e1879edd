package corpus

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ghfacilities/query-engine/internal/domain"
)

// GhanaRegions lists the 16 administrative regions extractors recognize,
// matched longest-name-first against free text.
var GhanaRegions = []string{
	"Greater Accra", "Western North", "Western", "Bono East", "Bono",
	"Ahafo", "Ashanti", "Central", "Eastern", "North East", "Northern",
	"Oti", "Savannah", "Upper East", "Upper West", "Volta",
}

var facilityTypePhrases = map[domain.FacilityType]string{
	domain.FacilityHospital:     "hospital",
	domain.FacilityClinic:       "clinic",
	domain.FacilityHealthCenter: "health center",
	domain.FacilityPharmacy:     "pharmacy",
	domain.FacilityNGO:          "ngo",
	domain.FacilityLaboratory:   "laboratory",
	domain.FacilityDentist:      "dentist",
}

var specialtyPhrases = map[domain.Specialty]string{
	domain.SpecialtyCardiology:    "cardiology",
	domain.SpecialtyNeurosurgery:  "neurosurgery",
	domain.SpecialtyOncology:      "oncology",
	domain.SpecialtyOrthopedics:   "orthopedics",
	domain.SpecialtyOphthalmology: "ophthalmology",
	domain.SpecialtyObstetrics:    "obstetrics",
	domain.SpecialtyPediatrics:    "pediatrics",
	domain.SpecialtyDialysis:      "dialysis",
	domain.SpecialtyGeneralSurg:   "general surgery",
	domain.SpecialtyEmergency:     "emergency",
	domain.SpecialtyDermatology:   "dermatology",
	domain.SpecialtyPsychiatry:    "psychiatry",
	domain.SpecialtyDentistry:     "dentistry",
	domain.SpecialtyENT:           "ent",
	domain.SpecialtyUrology:       "urology",
}

var negationTriggers = map[string]struct{}{
	"not": {}, "without": {}, "no": {}, "lacking": {}, "absence": {},
	"absent": {}, "missing": {}, "dont": {}, "doesnt": {},
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func wordBoundaryMatch(text, phrase string) bool {
	pattern := `(?i)\b` + regexp.QuoteMeta(phrase) + `\b`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// ExtractSpecialty returns the canonical specialty tag found in text, or ""
// if none matches. Longer phrases are tried first so "general surgery"
// wins over a bare "surgery" substring.
func ExtractSpecialty(text string) domain.Specialty {
	type candidate struct {
		tag    domain.Specialty
		phrase string
	}
	cands := make([]candidate, 0, len(specialtyPhrases))
	for tag, phrase := range specialtyPhrases {
		cands = append(cands, candidate{tag, phrase})
	}
	sort.Slice(cands, func(i, j int) bool { return len(cands[i].phrase) > len(cands[j].phrase) })
	for _, c := range cands {
		if wordBoundaryMatch(text, c.phrase) {
			return c.tag
		}
	}
	return ""
}

// ExtractRegion returns the Ghana region name found in text, preferring the
// longest matching region name so "Western North" wins over "Western".
func ExtractRegion(text string) string {
	regions := append([]string(nil), GhanaRegions...)
	sort.Slice(regions, func(i, j int) bool { return len(regions[i]) > len(regions[j]) })
	for _, r := range regions {
		if wordBoundaryMatch(text, r) {
			return r
		}
	}
	return ""
}

// ExtractFacilityType returns the canonical facility type found in text, or
// "" if none matches. Plural forms ("hospitals", "pharmacies") also match.
func ExtractFacilityType(text string) domain.FacilityType {
	type candidate struct {
		tag    domain.FacilityType
		phrase string
	}
	cands := make([]candidate, 0, len(facilityTypePhrases))
	for tag, phrase := range facilityTypePhrases {
		cands = append(cands, candidate{tag, phrase})
	}
	sort.Slice(cands, func(i, j int) bool { return len(cands[i].phrase) > len(cands[j].phrase) })
	for _, c := range cands {
		plural := c.phrase + "s"
		if strings.HasSuffix(c.phrase, "y") {
			plural = strings.TrimSuffix(c.phrase, "y") + "ies"
		}
		if wordBoundaryMatch(text, c.phrase) || wordBoundaryMatch(text, plural) {
			return c.tag
		}
	}
	return ""
}

// ExtractEquipment returns the recognized equipment tag found in text, or ""
// if none matches. Tags are tried in RecognizedEquipment order, so a specific
// tag such as "CT" wins over the generic "scanner" in "CT scanner".
func ExtractEquipment(text string) string {
	for _, tag := range domain.RecognizedEquipment {
		phrase := strings.ReplaceAll(tag, "_", " ")
		if wordBoundaryMatch(text, phrase) {
			return tag
		}
	}
	return ""
}

// IsNegated reports whether tag appears within 6 tokens after a negation
// trigger word ("not", "without", "no", "lacking", "absence", "absent",
// "missing", "don't", "doesn't") in text.
func IsNegated(text, tag string) bool {
	// Drop apostrophes so "don't"/"doesn't" tokenize to the "dont"/"doesnt"
	// trigger forms.
	tokens := tokenize(strings.NewReplacer("'", "", "’", "").Replace(text))
	tagTokens := tokenize(strings.ReplaceAll(tag, "_", " "))
	if len(tagTokens) == 0 {
		return false
	}

	var triggerIdx []int
	for i, t := range tokens {
		if _, ok := negationTriggers[t]; ok {
			triggerIdx = append(triggerIdx, i)
		}
	}
	if len(triggerIdx) == 0 {
		return false
	}

	tagStart := -1
	for i := 0; i+len(tagTokens) <= len(tokens); i++ {
		match := true
		for j, tt := range tagTokens {
			if tokens[i+j] != tt {
				match = false
				break
			}
		}
		if match {
			tagStart = i
			break
		}
	}
	if tagStart == -1 {
		return false
	}

	for _, t := range triggerIdx {
		if tagStart > t && tagStart-t <= 6 {
			return true
		}
	}
	return false
}
