package reasoner

import (
	"embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ghfacilities/query-engine/internal/domain"
)

//go:embed redflags.yaml
var embeddedRedFlags embed.FS

// specialtyAdjacencyThreshold is the minimum token-set ratio a specialty
// name must score against a visiting_specialist match's surrounding
// 5-word window to count it as describing that specialty's coverage.
const specialtyAdjacencyThreshold = 75.0

const adjacencyWindow = 5

type redFlagPatterns struct {
	category string
	res      []*regexp.Regexp
}

var compiledRedFlags = mustLoadRedFlags()

func mustLoadRedFlags() []redFlagPatterns {
	patterns, err := loadRedFlags()
	if err != nil {
		panic(err)
	}
	return patterns
}

func loadRedFlags() ([]redFlagPatterns, error) {
	raw, err := embeddedRedFlags.ReadFile("redflags.yaml")
	if err != nil {
		return nil, fmt.Errorf("reasoner: reading redflags.yaml: %w", err)
	}
	var parsed map[string][]string
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("reasoner: parsing redflags.yaml: %w", err)
	}
	// Stable category order for deterministic output.
	order := []string{"visiting_specialist", "temporary_service", "vague_claim"}
	out := make([]redFlagPatterns, 0, len(order))
	for _, category := range order {
		exprs, ok := parsed[category]
		if !ok {
			continue
		}
		compiled := make([]*regexp.Regexp, 0, len(exprs))
		for _, expr := range exprs {
			compiled = append(compiled, regexp.MustCompile("(?i)"+expr))
		}
		out = append(out, redFlagPatterns{category: category, res: compiled})
	}
	return out, nil
}

// ScanRedFlags scans every facility's Description against the three
// red-flag pattern categories. A visiting_specialist match is only kept if
// one of the facility's claimed specialties scores above
// specialtyAdjacencyThreshold against the match's surrounding 5-word
// window, attributing the flag to a specific specialty claim rather than
// firing on unrelated text.
func ScanRedFlags(facilities []*domain.Facility) []domain.RedFlag {
	var out []domain.RedFlag
	for _, f := range facilities {
		if f.Description == "" {
			continue
		}
		tokens := strings.Fields(f.Description)
		for _, group := range compiledRedFlags {
			for _, re := range group.res {
				loc := re.FindStringIndex(f.Description)
				if loc == nil {
					continue
				}
				excerpt := re.FindString(f.Description)
				if group.category == "visiting_specialist" && !adjacentToClaimedSpecialty(f, tokens, excerpt) {
					continue
				}
				out = append(out, domain.RedFlag{
					FacilityID: f.ID,
					Category:   group.category,
					Pattern:    re.String(),
					Excerpt:    excerpt,
				})
			}
		}
	}
	return out
}

func adjacentToClaimedSpecialty(f *domain.Facility, tokens []string, excerpt string) bool {
	if len(f.Specialties) == 0 {
		return false
	}
	matchIdx := indexOfSubstring(tokens, excerpt)
	window := windowAround(tokens, matchIdx, adjacencyWindow)
	for specialty := range f.Specialties {
		name := strings.ReplaceAll(string(specialty), "_", " ")
		if tokenSetRatio(name, window) >= specialtyAdjacencyThreshold {
			return true
		}
	}
	return false
}

func indexOfSubstring(tokens []string, excerpt string) int {
	first := strings.Fields(excerpt)
	if len(first) == 0 {
		return 0
	}
	target := strings.ToLower(first[0])
	for i, t := range tokens {
		if strings.ToLower(strings.Trim(t, ".,;:")) == target {
			return i
		}
	}
	return 0
}

func windowAround(tokens []string, idx, radius int) string {
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + radius + 1
	if end > len(tokens) {
		end = len(tokens)
	}
	return strings.Join(tokens[start:end], " ")
}
