// Package classifier turns a natural-language query into a domain.Plan:
// an intent label, a confidence score, and the ordered agent set the
// orchestrator should run.
package classifier

import (
	"context"
	"embed"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ghfacilities/query-engine/internal/embedding"
	"github.com/ghfacilities/query-engine/internal/llm"

	"github.com/ghfacilities/query-engine/internal/domain"
)

//go:embed patterns.yaml
var embeddedPatterns embed.FS

const (
	// lowConfidenceThreshold below which the LLM fallback is consulted.
	lowConfidenceThreshold = 0.45
	// multiIntentThreshold is the minimum similarity score a non-winning
	// intent needs to have its agents folded into the plan.
	multiIntentThreshold = 0.40
	llmMinSelfConfidence = 0.5
	// minConfidenceFloor is the lowest confidence a plan may report; no
	// query ever fails classification outright, GENERAL absorbs the rest.
	minConfidenceFloor = 0.10
)

// Classifier classifies queries into a domain.Plan.
type Classifier struct {
	embedder    embedding.Embedder
	llmProvider llm.Provider // optional, may be nil

	exemplarVecs map[domain.Intent][][]float32
	patterns     map[domain.Intent][]*regexp.Regexp
}

// New builds a Classifier. llmProvider may be nil, in which case the LLM
// fallback pass is skipped and low-confidence queries keep the top-ranked
// intent.
func New(ctx context.Context, embedder embedding.Embedder, llmProvider llm.Provider) (*Classifier, error) {
	c := &Classifier{embedder: embedder, llmProvider: llmProvider}

	if embedder != nil {
		c.exemplarVecs = make(map[domain.Intent][][]float32, len(exemplars))
		for intent, sentences := range exemplars {
			vecs, err := embedder.EmbedBatch(ctx, sentences)
			if err != nil {
				return nil, fmt.Errorf("classifier: embedding exemplars for %s: %w", intent, err)
			}
			c.exemplarVecs[intent] = vecs
		}
	}

	patterns, err := loadPatterns()
	if err != nil {
		return nil, err
	}
	c.patterns = patterns

	return c, nil
}

func loadPatterns() (map[domain.Intent][]*regexp.Regexp, error) {
	raw, err := embeddedPatterns.ReadFile("patterns.yaml")
	if err != nil {
		return nil, fmt.Errorf("classifier: reading patterns.yaml: %w", err)
	}
	var parsed map[string][]string
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("classifier: parsing patterns.yaml: %w", err)
	}
	out := make(map[domain.Intent][]*regexp.Regexp, len(parsed))
	for key, exprs := range parsed {
		compiled := make([]*regexp.Regexp, 0, len(exprs))
		for _, expr := range exprs {
			re, err := regexp.Compile("(?i)" + expr)
			if err != nil {
				return nil, fmt.Errorf("classifier: compiling pattern %q for %s: %w", expr, key, err)
			}
			compiled = append(compiled, re)
		}
		out[domain.Intent(key)] = compiled
	}
	return out, nil
}

// scored pairs an intent with its classification-pass score, kept in
// domain.AllIntents order for deterministic tie-breaking.
type scored struct {
	intent domain.Intent
	score  float64
}

// Classify returns the execution plan for query.
func (c *Classifier) Classify(ctx context.Context, query string) (domain.Plan, error) {
	var ranked []scored
	var err error

	if c.embedder != nil {
		ranked, err = c.rankByEmbedding(ctx, query)
		if err != nil {
			return domain.Plan{}, err
		}
	}
	if ranked == nil {
		ranked = c.rankByPattern(query)
	}
	if len(ranked) == 0 {
		return c.buildPlan(domain.IntentGeneral, 0, ranked), nil
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	top := ranked[0]
	confidence := top.score
	if c.embedder != nil {
		gap := top.score
		if len(ranked) > 1 {
			gap = top.score - ranked[1].score
		}
		confidence = sigmoid(20 * (gap - 0.05))
	}

	winner := top.intent
	if confidence < lowConfidenceThreshold && c.llmProvider != nil {
		if intent, ok := c.classifyWithLLM(ctx, query); ok {
			winner = intent
			confidence = llmMinSelfConfidence
		}
	}

	return c.buildPlan(winner, confidence, ranked), nil
}

func (c *Classifier) rankByEmbedding(ctx context.Context, query string) ([]scored, error) {
	qvec, err := embedding.Embed(ctx, c.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("classifier: embedding query: %w", err)
	}
	out := make([]scored, 0, len(domain.AllIntents))
	for _, intent := range domain.AllIntents {
		vecs := c.exemplarVecs[intent]
		out = append(out, scored{intent: intent, score: meanTopTwoCosine(qvec, vecs)})
	}
	return out, nil
}

// meanTopTwoCosine returns the mean of the two highest cosine similarities
// between query and the exemplar vectors, or the single similarity if only
// one exemplar is available.
func meanTopTwoCosine(query []float32, exemplarVecs [][]float32) float64 {
	if len(exemplarVecs) == 0 {
		return 0
	}
	sims := make([]float64, len(exemplarVecs))
	for i, v := range exemplarVecs {
		sims[i] = cosine(query, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sims)))
	if len(sims) == 1 {
		return sims[0]
	}
	return (sims[0] + sims[1]) / 2
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// rankByPattern scores every intent by its regex fallback pattern match
// count against query. Ties keep domain.AllIntents order. It returns nil when
// no pattern matches at all, so Classify falls back to GENERAL.
func (c *Classifier) rankByPattern(query string) []scored {
	lower := strings.ToLower(query)
	out := make([]scored, 0, len(domain.AllIntents))
	total := 0
	for _, intent := range domain.AllIntents {
		count := 0
		for _, re := range c.patterns[intent] {
			if re.MatchString(lower) {
				count++
			}
		}
		total += count
		out = append(out, scored{intent: intent, score: float64(count)})
	}
	if total == 0 {
		return nil
	}
	return out
}

const llmClassifyPrompt = `You are classifying a healthcare-facility query into exactly one of these intents:
COUNT, AGGREGATE, ANOMALY_DETECTION, VALIDATION, DISTANCE_QUERY, COVERAGE_GAP,
MEDICAL_DESERT, SINGLE_POINT_FAILURE, FACILITY_LOOKUP, SERVICE_SEARCH,
SPECIALTY_SEARCH, COMPARISON, PLANNING, GENERAL.

Respond with exactly two lines:
INTENT: <one of the labels above>
CONFIDENCE: <a number between 0 and 1>`

// classifyWithLLM asks the LLM provider to break a low-confidence tie. It
// only accepts the answer if the label is one of the 14 valid intents and
// the model's self-reported confidence clears llmMinSelfConfidence.
func (c *Classifier) classifyWithLLM(ctx context.Context, query string) (domain.Intent, bool) {
	messages := []llm.Message{
		{Role: "system", Content: llmClassifyPrompt},
		{Role: "user", Content: query},
	}
	resp, err := c.llmProvider.Chat(ctx, messages, 64, 0)
	if err != nil {
		return "", false
	}
	intent, conf, ok := parseLLMClassification(resp)
	if !ok || conf < llmMinSelfConfidence {
		return "", false
	}
	return intent, true
}

var (
	llmIntentLine     = regexp.MustCompile(`(?i)INTENT:\s*([A-Z_]+)`)
	llmConfidenceLine = regexp.MustCompile(`(?i)CONFIDENCE:\s*([0-9.]+)`)
)

func parseLLMClassification(resp string) (domain.Intent, float64, bool) {
	im := llmIntentLine.FindStringSubmatch(resp)
	if im == nil {
		return "", 0, false
	}
	candidate := domain.Intent(strings.ToUpper(strings.TrimSpace(im[1])))
	if !isValidIntent(candidate) {
		return "", 0, false
	}
	conf := 1.0
	if cm := llmConfidenceLine.FindStringSubmatch(resp); cm != nil {
		var parsed float64
		if _, err := fmt.Sscanf(cm[1], "%f", &parsed); err == nil {
			conf = parsed
		}
	}
	return candidate, conf, true
}

func isValidIntent(i domain.Intent) bool {
	for _, v := range domain.AllIntents {
		if v == i {
			return true
		}
	}
	return false
}

// buildPlan resolves the routing table for winner, then folds in the agent
// sets of any other intent that scored at or above multiIntentThreshold and
// whose agents are disjoint from what's already in the plan, upgrading the
// flow to sequential (or keeping parallel for COMPARISON/GENERAL).
func (c *Classifier) buildPlan(winner domain.Intent, confidence float64, ranked []scored) domain.Plan {
	base, ok := routingTable[winner]
	if !ok {
		base = routingTable[domain.IntentGeneral]
		winner = domain.IntentGeneral
	}

	if confidence < minConfidenceFloor {
		confidence = minConfidenceFloor
	}

	agents := append([]domain.AgentName(nil), base.agents...)
	flow := base.flow

	for _, s := range ranked {
		if s.intent == winner || s.score < multiIntentThreshold {
			continue
		}
		extra, ok := routingTable[s.intent]
		if !ok || !disjoint(agents, extra.agents) {
			continue
		}
		agents = append(agents, extra.agents...)
		if flow == domain.FlowSingle {
			flow = domain.FlowSequential
		}
	}

	return domain.Plan{
		Intent:              winner,
		Confidence:          confidence,
		Agents:              agents,
		Flow:                flow,
		ExtractedParameters: map[string]string{},
	}
}
