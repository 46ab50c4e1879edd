// Package geocoder resolves Ghana place names to coordinates against a
// static gazetteer loaded at startup.
package geocoder

import (
	"embed"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed gazetteer.yaml
var embeddedGazetteer embed.FS

// Entry is a single gazetteer row: a place name and its coordinates.
type Entry struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// Coordinates is a resolved (lat, lng) pair with the matched gazetteer name
// and the match strategy that found it.
type Coordinates struct {
	Lat    float64
	Lng    float64
	Name   string
	Method string // "exact" | "word_boundary" | "fuzzy"
}

// Gazetteer is the loaded, normalized place-name lookup table.
type Gazetteer struct {
	entries    []Entry
	byNormName map[string]Entry
}

// Load reads the embedded gazetteer. Callers needing a custom data set can
// use LoadFrom with their own YAML bytes.
func Load() (*Gazetteer, error) {
	raw, err := embeddedGazetteer.ReadFile("gazetteer.yaml")
	if err != nil {
		return nil, err
	}
	return LoadFrom(raw)
}

// LoadFrom builds a Gazetteer from raw YAML bytes in the same shape as
// gazetteer.yaml.
func LoadFrom(raw []byte) (*Gazetteer, error) {
	var entries []Entry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	g := &Gazetteer{
		entries:    entries,
		byNormName: make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		g.byNormName[normalize(e.Name)] = e
	}
	return g, nil
}

var punctuationPattern = regexp.MustCompile(`[^a-z0-9\s]`)
var whitespacePattern = regexp.MustCompile(`\s+`)

func normalize(s string) string {
	s = strings.ToLower(s)
	s = punctuationPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

// Geocode resolves a place name to coordinates, or reports ok=false if no
// gazetteer entry matches under any strategy.
func (g *Gazetteer) Geocode(name string) (Coordinates, bool) {
	normalized := normalize(name)
	if normalized == "" {
		return Coordinates{}, false
	}

	if e, ok := g.byNormName[normalized]; ok {
		return Coordinates{Lat: e.Lat, Lng: e.Lng, Name: e.Name, Method: "exact"}, true
	}

	if c, ok := g.wordBoundaryMatch(normalized); ok {
		return c, true
	}

	if c, ok := g.fuzzyMatch(normalized); ok {
		return c, true
	}

	return Coordinates{}, false
}

// wordBoundaryMatch iterates gazetteer keys shortest-first so the most
// specific name that fits within token boundaries wins (prevents "wa"
// matching inside "nkawkaw").
func (g *Gazetteer) wordBoundaryMatch(normalized string) (Coordinates, bool) {
	keys := make([]string, 0, len(g.byNormName))
	for k := range g.byNormName {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		pattern := `(?i)\b` + regexp.QuoteMeta(key) + `\b`
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(normalized) {
			e := g.byNormName[key]
			return Coordinates{Lat: e.Lat, Lng: e.Lng, Name: e.Name, Method: "word_boundary"}, true
		}
	}
	return Coordinates{}, false
}

const fuzzyAcceptThreshold = 0.80

func (g *Gazetteer) fuzzyMatch(normalized string) (Coordinates, bool) {
	var best Entry
	bestRatio := 0.0
	for key, e := range g.byNormName {
		r := levenshteinRatio(normalized, key)
		if r > bestRatio {
			bestRatio = r
			best = e
		}
	}
	if bestRatio >= fuzzyAcceptThreshold {
		return Coordinates{Lat: best.Lat, Lng: best.Lng, Name: best.Name, Method: "fuzzy"}, true
	}
	return Coordinates{}, false
}

// levenshteinRatio computes 1 - (edit distance / max length), the standard
// similarity ratio derived from Levenshtein distance.
func levenshteinRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshteinDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Len reports the number of gazetteer entries loaded.
func (g *Gazetteer) Len() int {
	return len(g.entries)
}
